// Package engine implements the Snakes and Ladders turn state machine.
//
// A turn runs through the phases
//
//	WaitingForRoll -> Animating -> ResolvingTransition -> TurnComplete
//
// and ends either back in WaitingForRoll for the next player or in GameOver.
// RequestRoll starts a turn; each Advance call performs exactly one visible
// step (one cell of movement, the snake/ladder jump, or the turn hand-off), so
// a UI can pace the animation with its own timer. Settle runs a turn to
// completion for callers that do not animate.
package engine

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-ladders/internal/board"
)

// ErrPlayerCount is returned when a game is created with too few or too many players.
var ErrPlayerCount = errors.New("unsupported number of players")

// Phase is a state of the turn machine.
type Phase int

const (
	WaitingForRoll Phase = iota
	Animating
	ResolvingTransition
	TurnComplete
	GameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case WaitingForRoll:
		return "waiting_for_roll"
	case Animating:
		return "animating"
	case ResolvingTransition:
		return "resolving_transition"
	case TurnComplete:
		return "turn_complete"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Renderer redraws the board. It is called after every position change.
type Renderer interface {
	Render(players []Player, transitions []board.Transition)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(players []Player, transitions []board.Transition)

// Render calls f.
func (f RendererFunc) Render(players []Player, transitions []board.Transition) {
	f(players, transitions)
}

// Option configures an Engine.
type Option func(*Engine)

// WithDice replaces the default die, a RandomDice with seed 1.
func WithDice(d Dice) Option {
	return func(e *Engine) {
		e.dice = d
	}
}

// WithRenderer installs the redraw hook.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithEventSink receives every engine event in order.
func WithEventSink(fn func(Event)) Option {
	return func(e *Engine) {
		e.sink = fn
	}
}

// Engine owns the players and the turn state of one game.
type Engine struct {
	table   *board.Table
	final   int
	players []Player
	current int
	phase   Phase

	target  int
	pending board.Transition // Snake or ladder at the landing cell, zero if none
	die     int
	message string
	winner  int
	turns   int
	rolls   int

	dice     Dice
	renderer Renderer
	sink     func(Event)
}

// New creates an engine for the given board and players and puts every token
// on cell 1 with the first player to move.
func New(table *board.Table, players []Player, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, fmt.Errorf("engine: nil transition table")
	}

	ps, err := normalizePlayers(players)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		table:   table,
		final:   board.FinalCell(table.Size()),
		players: ps,
		dice:    NewRandomDice(1),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.Reset()
	return e, nil
}

// RequestRoll throws the die for the current player and starts the move.
// It is ignored (returns false) unless the engine is waiting for a roll.
func (e *Engine) RequestRoll() bool {
	if e.phase != WaitingForRoll {
		return false
	}

	p := &e.players[e.current]
	e.die = clampFace(e.dice.Roll())
	e.rolls++
	e.target = min(p.Position+e.die, e.final)
	e.message = fmt.Sprintf("%s rolled a %d and is moving...", p.Name, e.die)
	e.emit(Event{Kind: EventRolled, Player: p.ID, Name: p.Name, Die: e.die, From: p.Position, To: e.target})

	e.phase = Animating
	if p.Position >= e.target {
		e.land()
	}
	return true
}

// Advance performs one step of the move in flight.
// Returns false when there is nothing to advance.
func (e *Engine) Advance() bool {
	switch e.phase {
	case Animating:
		e.step()
	case ResolvingTransition:
		e.resolve()
	case TurnComplete:
		e.finishTurn()
	default:
		return false
	}
	return true
}

// step moves the current token one cell toward the target.
func (e *Engine) step() {
	p := &e.players[e.current]
	from := p.Position
	p.Position++
	e.emit(Event{Kind: EventMoved, Player: p.ID, Name: p.Name, From: from, To: p.Position})
	e.render()

	if p.Position >= e.target {
		e.land()
	}
}

// land enters ResolvingTransition and announces the snake or ladder at the
// landing cell, if any. The jump itself happens on the next Advance.
func (e *Engine) land() {
	e.phase = ResolvingTransition
	e.pending = board.Transition{}

	p := e.players[e.current]
	tr, ok := e.table.Lookup(p.Position)
	if !ok {
		return
	}
	e.pending = tr

	if tr.Kind() == board.Setback {
		e.message = fmt.Sprintf("%s landed on a snake! Moving from %d to %d", p.Name, tr.From, tr.To)
	} else {
		e.message = fmt.Sprintf("%s found a ladder! Climbing from %d to %d", p.Name, tr.From, tr.To)
	}
	e.emit(Event{Kind: EventLanded, Player: p.ID, Name: p.Name, From: tr.From, To: tr.To, Transition: tr})
}

// resolve applies the announced snake or ladder, if any.
// Only the landing cell is checked; the destination is never looked up again.
func (e *Engine) resolve() {
	e.phase = TurnComplete

	tr, ok := e.Pending()
	if !ok {
		return
	}
	e.pending = board.Transition{}

	p := &e.players[e.current]
	p.Position = tr.To
	e.emit(Event{Kind: EventTransition, Player: p.ID, Name: p.Name, From: tr.From, To: tr.To, Transition: tr})
	e.render()
}

// finishTurn checks for a win and otherwise hands the die to the next player.
func (e *Engine) finishTurn() {
	p := e.players[e.current]
	e.turns++

	if p.Position == e.final {
		e.phase = GameOver
		e.winner = p.ID
		e.message = fmt.Sprintf("%s wins!", p.Name)
		e.emit(Event{Kind: EventWon, Player: p.ID, Name: p.Name, From: p.Position, To: p.Position})
		return
	}

	e.current = (e.current + 1) % len(e.players)
	next := e.players[e.current]
	e.message = fmt.Sprintf("%s's turn", next.Name)
	e.phase = WaitingForRoll
	e.emit(Event{Kind: EventTurnPassed, Player: next.ID, Name: next.Name, From: next.Position, To: next.Position})
}

// Settle advances until the turn in flight is over.
// Returns the number of steps taken.
func (e *Engine) Settle() int {
	steps := 0
	for e.Advance() {
		steps++
	}
	return steps
}

// PlayTurn rolls and settles in one call. Returns false if no roll was allowed.
func (e *Engine) PlayTurn() bool {
	if !e.RequestRoll() {
		return false
	}
	e.Settle()
	return true
}

// RequestReset starts a new game after a win. Ignored while a game is running.
func (e *Engine) RequestReset() bool {
	if e.phase != GameOver {
		return false
	}
	e.Reset()
	return true
}

// Reset unconditionally puts every token back on cell 1 and gives the die to
// the first player.
func (e *Engine) Reset() {
	for i := range e.players {
		e.players[i].Position = 1
	}
	e.current = 0
	e.phase = WaitingForRoll
	e.target = 0
	e.pending = board.Transition{}
	e.die = 1
	e.winner = 0
	e.turns = 0
	e.rolls = 0

	first := e.players[0]
	e.message = fmt.Sprintf("%s's turn. Roll the die to start.", first.Name)
	e.emit(Event{Kind: EventReset, Player: first.ID, Name: first.Name, From: 1, To: 1})
	e.render()
}

func (e *Engine) emit(ev Event) {
	if e.sink != nil {
		e.sink(ev)
	}
}

func (e *Engine) render() {
	if e.renderer != nil {
		e.renderer.Render(e.Players(), e.table.All())
	}
}

// Players returns a copy of the players in seat order.
func (e *Engine) Players() []Player {
	return append([]Player(nil), e.players...)
}

// Current returns the player whose turn it is (or who won).
func (e *Engine) Current() Player {
	return e.players[e.current]
}

// CurrentIndex returns the 0-based seat index of the current player.
func (e *Engine) CurrentIndex() int {
	return e.current
}

// Phase returns the state of the turn machine.
func (e *Engine) Phase() Phase {
	return e.phase
}

// DieValue returns the last rolled value (1 before the first roll).
func (e *Engine) DieValue() int {
	return e.die
}

// Target returns the landing cell of the move in flight.
func (e *Engine) Target() int {
	return e.target
}

// Pending returns the snake or ladder announced at the landing cell that the
// next Advance will apply.
func (e *Engine) Pending() (board.Transition, bool) {
	if e.phase != ResolvingTransition || e.pending.From == 0 {
		return board.Transition{}, false
	}
	return e.pending, true
}

// Message returns the status line for display.
func (e *Engine) Message() string {
	return e.message
}

// CanRoll reports whether RequestRoll would be accepted.
func (e *Engine) CanRoll() bool {
	return e.phase == WaitingForRoll
}

// CanReset reports whether RequestReset would be accepted.
func (e *Engine) CanReset() bool {
	return e.phase == GameOver
}

// Moving reports whether a move is in flight.
func (e *Engine) Moving() bool {
	return e.phase == Animating || e.phase == ResolvingTransition || e.phase == TurnComplete
}

// Winner returns the winning player once the game is over.
func (e *Engine) Winner() (Player, bool) {
	if e.winner == 0 {
		return Player{}, false
	}
	return e.players[e.winner-1], true
}

// Turns returns the number of completed turns in this game.
func (e *Engine) Turns() int {
	return e.turns
}

// Rolls returns the number of dice thrown in this game.
func (e *Engine) Rolls() int {
	return e.rolls
}

// Table returns the transition table the game is played on.
func (e *Engine) Table() *board.Table {
	return e.table
}

// FinalCell returns the winning cell.
func (e *Engine) FinalCell() int {
	return e.final
}
