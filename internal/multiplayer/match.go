package multiplayer

import (
	"sync"
	"time"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/registry"
)

// OnlineGame is a game that several sessions can share.
type OnlineGame interface {
	registry.Game

	// CurrentSeat returns the 1-based seat whose turn it is.
	CurrentSeat() int

	// MinSize returns the smallest screen the game renders on.
	MinSize() (w, h int)
}

// MatchResult describes how a match stopped.
type MatchResult struct {
	MatchID MatchID
	Reason  EndReason
	Who     string // Name of the player who left
	Games   int    // Games won during the match
	Ticks   uint64
}

type seatInput struct {
	seat    int
	actions []core.Action
}

// OnlineMatch is the authoritative game loop shared by the sessions of a room.
// Sessions send input with SendInput and draw the board with Render.
type OnlineMatch struct {
	id      MatchID
	code    string
	variant string
	members []Member // Seat i+1 is members[i]

	// Guarded by mu; Render runs on session goroutines
	mu       sync.Mutex
	game     OnlineGame
	canvas   *core.Screen
	gameOver bool
	started  time.Time
	games    int

	inputs   chan seatInput
	leaves   chan SessionID
	tick     uint64
	tickRate int
	done     chan struct{}
	doneOnce sync.Once
}

// NewOnlineMatch creates a match and resets its game with the seed.
// The game is drawn at its minimum size so every session sees the same board.
func NewOnlineMatch(id MatchID, code, variant string, game OnlineGame, members []Member, tickRate int, seed int64) *OnlineMatch {
	if tickRate <= 0 {
		tickRate = core.DefaultConfig().TickRate
	}

	w, h := game.MinSize()
	game.Reset(core.RuntimeConfig{
		ScreenW:  w,
		ScreenH:  h,
		TickRate: tickRate,
		Seed:     seed,
	})

	return &OnlineMatch{
		id:       id,
		code:     code,
		variant:  variant,
		members:  append([]Member(nil), members...),
		game:     game,
		canvas:   core.NewScreen(w, h),
		started:  time.Now(),
		inputs:   make(chan seatInput, 64),
		leaves:   make(chan SessionID, len(members)),
		tickRate: tickRate,
		done:     make(chan struct{}),
	}
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the join code of the room the match came from.
func (m *OnlineMatch) Code() string {
	return m.code
}

// Variant returns the board variant.
func (m *OnlineMatch) Variant() string {
	return m.variant
}

// Players returns the names in seat order.
func (m *OnlineMatch) Players() []string {
	names := make([]string, len(m.members))
	for i, mem := range m.members {
		names[i] = mem.Name
	}
	return names
}

// Seat returns the 1-based seat of a session, or 0 if it is not seated.
func (m *OnlineMatch) Seat(id SessionID) int {
	for i, mem := range m.members {
		if mem.Session.ID() == id {
			return i + 1
		}
	}
	return 0
}

// CurrentSeat returns the seat that may roll next.
func (m *OnlineMatch) CurrentSeat() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.CurrentSeat()
}

// SendInput queues the actions of one seat for the next tick.
// Input is dropped when the queue is full.
func (m *OnlineMatch) SendInput(seat int, in core.InputFrame) {
	var actions []core.Action
	for a, on := range in.Actions {
		if on {
			actions = append(actions, a)
		}
	}
	if len(actions) == 0 {
		return
	}

	select {
	case m.inputs <- seatInput{seat: seat, actions: actions}:
	default:
	}
}

// PlayerLeft ends the match on behalf of a session.
func (m *OnlineMatch) PlayerLeft(id SessionID) {
	select {
	case m.leaves <- id:
	default:
	}
}

// Render draws the shared board centered on dst.
func (m *OnlineMatch) Render(dst *core.Screen) {
	m.mu.Lock()
	m.game.Render(m.canvas)
	m.mu.Unlock()

	dst.Clear()
	x := max(0, (dst.Width()-m.canvas.Width())/2)
	dst.Blit(m.canvas, x, 0)
}

// State returns the state of the current game.
func (m *OnlineMatch) State() core.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.State()
}

// Run drives the match until a player leaves or Stop is called.
// onFinish is called after every won game, onEnd once when the match stops.
func (m *OnlineMatch) Run(onFinish func(GameResult), onEnd func(MatchResult)) {
	defer m.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	defer ticker.Stop()

	go m.monitorSessions()

	for {
		select {
		case <-ticker.C:
			if res, ok := m.step(); ok && onFinish != nil {
				onFinish(res)
			}

		case id := <-m.leaves:
			if onEnd != nil {
				onEnd(m.result(EndReasonPlayerLeft, m.name(id)))
			}
			return

		case <-m.done:
			if onEnd != nil {
				onEnd(m.result(EndReasonShutdown, ""))
			}
			return
		}
	}
}

// step runs one tick. It returns the result of a game won during this tick.
func (m *OnlineMatch) step() (GameResult, bool) {
	pending := m.drainInputs()

	m.mu.Lock()
	defer m.mu.Unlock()

	frame := core.NewInputFrame()
	current := m.game.CurrentSeat()
	over := m.game.State().GameOver
	for _, in := range pending {
		for _, a := range in.actions {
			if Allowed(a, in.seat, current, over) {
				frame.Set(a)
			}
		}
	}

	res := m.game.Step(frame)
	m.tick++

	if m.gameOver && !res.State.GameOver {
		m.started = time.Now()
	}
	finished := res.State.GameOver && !m.gameOver
	m.gameOver = res.State.GameOver
	if !finished {
		return GameResult{}, false
	}

	m.games++
	return GameResult{
		MatchID:  m.id,
		Code:     m.code,
		Outcome:  m.game.Outcome(),
		Duration: time.Since(m.started),
	}, true
}

func (m *OnlineMatch) drainInputs() []seatInput {
	var pending []seatInput
	for {
		select {
		case in := <-m.inputs:
			pending = append(pending, in)
		default:
			return pending
		}
	}
}

// Allowed reports whether a seat may trigger an action. Only the seat whose
// turn it is may roll; after a win anyone may start the next game.
func Allowed(a core.Action, seat, current int, gameOver bool) bool {
	switch a {
	case core.ActionRoll:
		return gameOver || seat == current
	case core.ActionNewGame:
		return gameOver
	case core.ActionPause:
		return true
	default:
		return false
	}
}

func (m *OnlineMatch) result(reason EndReason, who string) MatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MatchResult{
		MatchID: m.id,
		Reason:  reason,
		Who:     who,
		Games:   m.games,
		Ticks:   m.tick,
	}
}

func (m *OnlineMatch) name(id SessionID) string {
	if seat := m.Seat(id); seat > 0 {
		return m.members[seat-1].Name
	}
	return ""
}

// monitorSessions ends the match when any seated session goes away.
func (m *OnlineMatch) monitorSessions() {
	cases := make(chan SessionID, len(m.members))
	for _, mem := range m.members {
		go func(s SessionHandle) {
			select {
			case <-s.Done():
				cases <- s.ID()
			case <-m.done:
			}
		}(mem.Session)
	}

	select {
	case id := <-cases:
		m.PlayerLeft(id)
	case <-m.done:
	}
}

// Stop ends the match loop. Safe to call more than once.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}

// Done is closed when the match has stopped.
func (m *OnlineMatch) Done() <-chan struct{} {
	return m.done
}
