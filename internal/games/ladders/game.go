// Package ladders drives the Snakes and Ladders engine from the platform's
// fixed-rate tick loop. Movement is paced so every cell of a move is visible,
// and a snake or ladder pauses the token before the jump.
package ladders

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-ladders/internal/board"
	"github.com/vovakirdan/tui-ladders/internal/config"
	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
	"github.com/vovakirdan/tui-ladders/internal/registry"
)

// Layout constants.
const (
	hudTop    = 2 // Title and turn lines above the board
	hudBottom = 4 // Message, positions, status and legend below it
)

var titles = map[string]string{
	config.VariantClassic: "Snakes & Ladders",
	config.VariantQuick:   "Snakes & Ladders (Quick)",
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sends engine events to the logger at debug level.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithEventHook forwards every engine event to fn.
func WithEventHook(fn func(engine.Event)) Option {
	return func(g *Game) {
		g.hook = fn
	}
}

// WithDice replaces the seeded die. A die without a Seed method ignores the
// runtime seed.
func WithDice(d engine.Dice) Option {
	return func(g *Game) {
		if d != nil {
			g.dice = d
		}
	}
}

// seeder is a die that can restart from a seed.
type seeder interface {
	Seed(seed int64)
}

// Game implements registry.Game for a Snakes and Ladders board.
type Game struct {
	variant string
	cfg     config.LaddersConfig
	eng     *engine.Engine
	dice    engine.Dice
	log     *log.Logger
	hook    func(engine.Event)

	// Animation pacing, in ticks
	tick            uint64
	stepTicks       int
	transitionTicks int
	wait            int

	// Last positions handed to the renderer hook
	tokens  []engine.Player
	redraws int

	shortcuts int
	setbacks  int

	screenW  int
	screenH  int
	paused   bool
	tooSmall bool
	ready    bool // Construction finished; events reach the hook
}

// New creates a game for a variant from a loaded configuration.
// It fails when the board or the players are invalid.
func New(variant string, cfg config.LaddersConfig, opts ...Option) (*Game, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, fmt.Errorf("ladders: %w", err)
	}
	players, err := cfg.EnginePlayers()
	if err != nil {
		return nil, fmt.Errorf("ladders: %w", err)
	}

	g := &Game{
		variant: variant,
		cfg:     cfg,
		dice:    engine.NewRandomDice(1),
		log:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.eng, err = engine.New(table, players,
		engine.WithDice(g.dice),
		engine.WithRenderer(engine.RendererFunc(g.capture)),
		engine.WithEventSink(g.onEvent),
	)
	if err != nil {
		return nil, fmt.Errorf("ladders: %w", err)
	}

	g.Reset(core.DefaultConfig())
	g.ready = true
	return g, nil
}

func init() {
	register(config.VariantClassic, "Classic 10x10 board with 9 ladders and 10 snakes")
	register(config.VariantQuick, "Small 6x6 board for a short game")
}

func register(variant, description string) {
	registry.Register(registry.Info{
		ID:          variant,
		Title:       titles[variant],
		Description: description,
	}, func(opts registry.Options) (registry.Game, error) {
		cfg, err := config.Load(variant, opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if !config.IsValidSpeed(opts.Speed) {
			return nil, fmt.Errorf("ladders: unknown speed %q", opts.Speed)
		}
		config.ApplySpeedPreset(&cfg, config.SpeedPreset(opts.Speed))
		cfg.SetPlayerNames(opts.PlayerNames)

		return New(variant, cfg, WithLogger(opts.Logger), WithEventHook(opts.OnEvent))
	})
}

// ID returns the variant identifier.
func (g *Game) ID() string {
	return g.variant
}

// Title returns the display name.
func (g *Game) Title() string {
	if t, ok := titles[g.variant]; ok {
		return t
	}
	return "Snakes & Ladders"
}

// Engine exposes the underlying turn engine.
func (g *Game) Engine() *engine.Engine {
	return g.eng
}

// Reset starts a new game. The seed drives the dice, so equal seeds and
// equal inputs replay the same game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	rate := cfg.TickRate
	if rate <= 0 {
		rate = core.DefaultConfig().TickRate
	}
	g.stepTicks = durationToTicks(g.cfg.Timing.Step(), rate)
	g.transitionTicks = durationToTicks(g.cfg.Timing.Transition(), rate)

	g.tick = 0
	g.wait = 0
	g.redraws = 0
	g.paused = false
	g.resize(cfg.ScreenW, cfg.ScreenH)

	if d, ok := g.dice.(seeder); ok {
		d.Seed(cfg.Seed)
	}
	g.eng.Reset()
}

// resize updates the screen size and checks that the board fits.
func (g *Game) resize(w, h int) {
	g.screenW = w
	g.screenH = h

	needW, needH := g.MinSize()
	g.tooSmall = w < needW || h < needH
}

// MinSize returns the smallest screen the board and its HUD fit on.
func (g *Game) MinSize() (w, h int) {
	size := g.eng.Table().Size()
	w = size*g.cellWidth() + 3
	h = hudTop + size + 2 + hudBottom
	return max(w, utf8.RuneCountInString(g.legend())), h
}

// CurrentSeat returns the 1-based seat whose turn it is, or the winner's.
func (g *Game) CurrentSeat() int {
	return g.eng.Current().ID
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.eng.CanReset() {
		if in.Has(core.ActionNewGame) || in.Has(core.ActionRoll) {
			g.eng.RequestReset()
			g.wait = 0
		}
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused || g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionRoll) && g.eng.RequestRoll() {
		g.wait = g.stepTicks
		return core.StepResult{State: g.State()}
	}

	if g.eng.Moving() {
		g.wait--
		if g.wait <= 0 {
			g.eng.Advance()
			g.wait = g.delay()
		}
	}

	return core.StepResult{State: g.State()}
}

// delay returns the ticks to wait before the next engine step.
func (g *Game) delay() int {
	switch g.eng.Phase() {
	case engine.Animating:
		return g.stepTicks
	case engine.ResolvingTransition:
		if _, ok := g.eng.Pending(); ok {
			return g.transitionTicks
		}
	}
	return 0
}

// capture is the engine's renderer hook. Render draws the tokens it recorded.
func (g *Game) capture(players []engine.Player, _ []board.Transition) {
	g.tokens = players
	g.redraws++
}

func (g *Game) onEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventReset:
		g.shortcuts = 0
		g.setbacks = 0
		g.log.Debug("new game", "variant", g.variant, "first", ev.Name)
	case engine.EventRolled:
		g.log.Debug("roll", "player", ev.Name, "die", ev.Die, "from", ev.From, "target", ev.To)
	case engine.EventTransition:
		if ev.Transition.Kind() == board.Shortcut {
			g.shortcuts++
		} else {
			g.setbacks++
		}
		g.log.Debug(ev.Transition.Kind().String(), "player", ev.Name, "from", ev.From, "to", ev.To)
	case engine.EventWon:
		g.log.Info("game over", "variant", g.variant, "winner", ev.Name,
			"turns", g.eng.Turns(), "rolls", g.eng.Rolls())
	}

	if g.ready && g.hook != nil {
		g.hook(ev)
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	w, _ := g.eng.Winner()
	return core.GameState{
		Turns:    g.eng.Turns(),
		Winner:   w.ID,
		GameOver: g.eng.Phase() == engine.GameOver,
		Paused:   g.paused,
		Busy:     g.eng.Moving(),
	}
}

// Outcome summarizes the finished game.
func (g *Game) Outcome() core.Outcome {
	players := g.eng.Players()
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}

	out := core.Outcome{
		Variant:   g.variant,
		Players:   names,
		Turns:     g.eng.Turns(),
		Rolls:     g.eng.Rolls(),
		Shortcuts: g.shortcuts,
		Setbacks:  g.setbacks,
	}
	if w, ok := g.eng.Winner(); ok {
		out.Winner = w.Name
		out.WinnerSeat = w.ID
	}
	return out
}

// durationToTicks converts a delay to a whole number of ticks, rounding up.
func durationToTicks(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	return core.CeilDiv(int(d.Milliseconds())*rate, 1000)
}
