package ladders

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-ladders/internal/board"
	"github.com/vovakirdan/tui-ladders/internal/config"
	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
	"github.com/vovakirdan/tui-ladders/internal/registry"
)

func newTestGame(t *testing.T, stepMs, transitionMs int) *Game {
	t.Helper()
	cfg := config.DefaultClassicConfig()
	cfg.Timing.StepMillis = stepMs
	cfg.Timing.TransitionMillis = transitionMs

	g, err := New(config.VariantClassic, cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	g.Reset(core.RuntimeConfig{Seed: 7, ScreenW: 80, ScreenH: 24, TickRate: 10})
	return g
}

func rollInput() core.InputFrame {
	in := core.NewInputFrame()
	in.Set(core.ActionRoll)
	return in
}

func TestDeterminism(t *testing.T) {
	cfg := core.RuntimeConfig{Seed: 12345, ScreenW: 80, ScreenH: 24, TickRate: 60}

	g1, err := New(config.VariantClassic, config.DefaultClassicConfig())
	if err != nil {
		t.Fatal(err)
	}
	g2, err := New(config.VariantClassic, config.DefaultClassicConfig())
	if err != nil {
		t.Fatal(err)
	}
	g1.Reset(cfg)
	g2.Reset(cfg)

	empty := core.NewInputFrame()
	for i := range 5000 {
		in := empty
		if i%40 == 0 {
			in = rollInput()
		}
		g1.Step(in)
		g2.Step(in)
	}

	s1, s2 := g1.Snapshot(), g2.Snapshot()
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("snapshots differ:\n%+v\n%+v", s1, s2)
	}
	if s1.Rolls == 0 {
		t.Error("no roll was taken")
	}
}

func TestAnimationOneCellPerStep(t *testing.T) {
	g := newTestGame(t, 0, 0)

	start := g.eng.Current().Position
	seat := g.eng.CurrentIndex()
	g.Step(rollInput())

	target := g.eng.Target()
	if target != start+g.eng.DieValue() {
		t.Fatalf("target = %d, want %d", target, start+g.eng.DieValue())
	}

	empty := core.NewInputFrame()
	for want := start + 1; want <= target; want++ {
		g.Step(empty)
		if got := g.eng.Players()[seat].Position; got != want {
			t.Fatalf("after step position = %d, want %d", got, want)
		}
	}
}

func TestStepPacing(t *testing.T) {
	// 500ms at 10 ticks per second is 5 ticks per cell.
	g := newTestGame(t, 500, 0)
	seat := g.eng.CurrentIndex()
	g.Step(rollInput())

	empty := core.NewInputFrame()
	for i := range 4 {
		g.Step(empty)
		if got := g.eng.Players()[seat].Position; got != 1 {
			t.Fatalf("tick %d: token moved early to %d", i+1, got)
		}
	}
	g.Step(empty)
	if got := g.eng.Players()[seat].Position; got != 2 {
		t.Errorf("after 5 ticks position = %d, want 2", got)
	}
}

func TestLadderAnnouncedDuringPause(t *testing.T) {
	cfg := config.DefaultClassicConfig()
	cfg.Timing = config.TimingConfig{StepMillis: 100, TransitionMillis: 1000}

	g, err := New(config.VariantClassic, cfg, WithDice(engine.NewSequenceDice(3)))
	if err != nil {
		t.Fatal(err)
	}
	// One tick per cell, ten ticks of pause before the jump.
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 10})

	g.Step(rollInput())
	empty := core.NewInputFrame()
	for range 3 {
		g.Step(empty)
	}

	want := "Player 1 found a ladder! Climbing from 4 to 14"
	for i := range 9 {
		snap := g.Snapshot()
		if snap.Positions[0] != 4 {
			t.Fatalf("pause tick %d: token at %d, want 4", i, snap.Positions[0])
		}
		if snap.Message != want {
			t.Fatalf("pause tick %d: message = %q, want %q", i, snap.Message, want)
		}
		g.Step(empty)
	}

	g.Step(empty)
	if got := g.Snapshot().Positions[0]; got != 14 {
		t.Errorf("after the pause token at %d, want 14", got)
	}
}

func TestTimingFromConfig(t *testing.T) {
	g := newTestGame(t, 250, 1000)
	// 250ms and 1s at 10 ticks per second
	if g.stepTicks != 3 || g.transitionTicks != 10 {
		t.Errorf("ticks = %d/%d, want 3/10", g.stepTicks, g.transitionTicks)
	}
}

func TestRollIgnoredWhileMoving(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	g.Step(rollInput())

	for range 5 {
		g.Step(rollInput())
	}
	if g.eng.Rolls() != 1 {
		t.Errorf("Rolls() = %d, want 1", g.eng.Rolls())
	}
	if !g.State().Busy {
		t.Error("State().Busy = false while moving")
	}
}

func TestPauseStopsAnimation(t *testing.T) {
	g := newTestGame(t, 0, 0)
	g.Step(rollInput())

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	g.Step(pause)
	if !g.State().Paused {
		t.Fatal("game should be paused")
	}

	before := g.Snapshot().Positions
	empty := core.NewInputFrame()
	for range 10 {
		g.Step(empty)
	}
	if after := g.Snapshot().Positions; !reflect.DeepEqual(before, after) {
		t.Errorf("positions changed while paused: %v -> %v", before, after)
	}

	g.Step(pause)
	if g.State().Paused {
		t.Error("second pause should resume")
	}
}

func TestFullGameAndNewGame(t *testing.T) {
	g := newTestGame(t, 0, 0)

	for range 100000 {
		if g.State().GameOver {
			break
		}
		g.Step(rollInput())
	}
	st := g.State()
	if !st.GameOver {
		t.Fatal("game did not finish")
	}

	out := g.Outcome()
	if out.Winner == "" || out.WinnerSeat != st.Winner {
		t.Errorf("Outcome() = %+v, state winner %d", out, st.Winner)
	}
	if out.Variant != config.VariantClassic || len(out.Players) != 2 {
		t.Errorf("Outcome() = %+v", out)
	}
	if out.Rolls < 1 || out.Turns < 1 {
		t.Errorf("Outcome() counters = %+v", out)
	}

	w, _ := g.eng.Winner()
	if w.Position != 100 {
		t.Errorf("winner position = %d, want 100", w.Position)
	}

	newGame := core.NewInputFrame()
	newGame.Set(core.ActionNewGame)
	g.Step(newGame)

	snap := g.Snapshot()
	if snap.Phase != engine.WaitingForRoll.String() || snap.Current != 1 {
		t.Errorf("after new game: %+v", snap)
	}
	for i, p := range snap.Positions {
		if p != 1 {
			t.Errorf("player %d at %d after new game", i+1, p)
		}
	}
	if snap.Shortcuts != 0 || snap.Setbacks != 0 {
		t.Errorf("transition counters not reset: %+v", snap)
	}
}

func TestEventHook(t *testing.T) {
	cfg := config.DefaultClassicConfig()
	cfg.Timing = config.TimingConfig{}

	var kinds []engine.EventKind
	g, err := New(config.VariantClassic, cfg, WithEventHook(func(ev engine.Event) {
		kinds = append(kinds, ev.Kind)
	}))
	if err != nil {
		t.Fatal(err)
	}
	kinds = nil

	g.Step(rollInput())
	if len(kinds) != 1 || kinds[0] != engine.EventRolled {
		t.Errorf("events after roll = %v", kinds)
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(t, 0, 0)
	scr := core.NewScreen(80, 24)
	g.Render(scr)

	out := scr.String()
	for _, want := range []string{"Snakes & Ladders", "100", "press SPACE to roll", "Player 1: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBoardLayout(t *testing.T) {
	g := newTestGame(t, 0, 0)
	scr := core.NewScreen(80, 24)
	g.Render(scr)

	// First board line holds 100..91, last one 1..10.
	top := scr.Row(hudTop + 1)
	bottom := scr.Row(hudTop + 10)
	if strings.Index(top, "100") > strings.Index(top, " 91") {
		t.Errorf("top row not right-to-left from 100: %q", top)
	}
	if strings.Index(bottom, "  1") > strings.Index(bottom, " 10") {
		t.Errorf("bottom row not left-to-right from 1: %q", bottom)
	}
}

func TestRenderTooSmall(t *testing.T) {
	g := newTestGame(t, 0, 0)
	scr := core.NewScreen(30, 10)
	g.Render(scr)

	if !strings.Contains(scr.String(), "Window too small") {
		t.Error("expected too-small message")
	}
	before := g.eng.Rolls()
	g.Step(rollInput())
	if g.eng.Rolls() != before {
		t.Error("roll accepted on a too small screen")
	}
}

func TestMinSizeAndCurrentSeat(t *testing.T) {
	g := newTestGame(t, 0, 0)

	// Ten cells of "100", a marker, two token slots and a gap, plus the frame
	w, h := g.MinSize()
	if w != 73 || h != 18 {
		t.Errorf("MinSize() = %dx%d, want 73x18", w, h)
	}

	scr := core.NewScreen(w, h)
	g.Render(scr)
	if strings.Contains(scr.String(), "Window too small") {
		t.Error("board does not fit its own minimum size")
	}

	if got := g.CurrentSeat(); got != 1 {
		t.Errorf("CurrentSeat() = %d, want 1", got)
	}
	g.Step(rollInput())
	g.eng.Settle()
	if g.eng.Phase() != engine.GameOver {
		if got := g.CurrentSeat(); got != 2 {
			t.Errorf("CurrentSeat() after one turn = %d, want 2", got)
		}
	}
}

func TestRegistryFactory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	g, err := registry.Create(config.VariantQuick, registry.Options{
		PlayerNames: []string{"Alice", "Bob", "Cleo"},
		Speed:       "fast",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	lg := g.(*Game)
	if lg.eng.FinalCell() != 36 {
		t.Errorf("FinalCell() = %d, want 36", lg.eng.FinalCell())
	}
	players := lg.eng.Players()
	if len(players) != 3 || players[2].Name != "Cleo" {
		t.Errorf("players = %+v", players)
	}

	if _, err := registry.Create(config.VariantClassic, registry.Options{Speed: "warp"}); err == nil {
		t.Error("unknown speed should fail")
	}
}

func TestRenderBoardPlain(t *testing.T) {
	players := []engine.Player{
		{ID: 1, Position: 1, Color: core.ColorRed},
		{ID: 2, Position: 1, Color: core.ColorBlue},
	}
	lines := strings.Split(RenderBoard(board.Classic(), players), "\n")

	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if !strings.HasPrefix(lines[0], "100") {
		t.Errorf("first line = %q, want it to start at 100", lines[0])
	}
	if !strings.HasPrefix(lines[9], "  1▲12") {
		t.Errorf("last line = %q, want cell 1 with ladder and both tokens", lines[9])
	}
	if !strings.Contains(lines[9], " 4▲") || !strings.Contains(lines[8], " 16▼") {
		t.Errorf("markers missing:\n%s\n%s", lines[8], lines[9])
	}
}
