package engine

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-ladders/internal/board"
)

func newClassic(t *testing.T, rolls ...int) *Engine {
	t.Helper()
	e, err := New(board.Classic(), DefaultPlayers(), WithDice(NewSequenceDice(rolls...)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

func TestNewGameState(t *testing.T) {
	e := newClassic(t)

	if e.Phase() != WaitingForRoll {
		t.Errorf("Phase() = %v, want WaitingForRoll", e.Phase())
	}
	if !e.CanRoll() || e.CanReset() {
		t.Error("new game should allow roll and refuse reset")
	}
	if e.CurrentIndex() != 0 || e.Current().ID != 1 {
		t.Errorf("Current() = %+v, want player 1", e.Current())
	}
	if e.DieValue() != 1 {
		t.Errorf("DieValue() = %d, want 1", e.DieValue())
	}
	for _, p := range e.Players() {
		if p.Position != 1 {
			t.Errorf("%s starts at %d, want 1", p.Name, p.Position)
		}
	}
	if e.Message() != "Player 1's turn. Roll the die to start." {
		t.Errorf("Message() = %q", e.Message())
	}
}

func TestLadderScenario(t *testing.T) {
	// 1 + 3 lands on 4, ladder to 14, turn passes.
	e := newClassic(t, 3)

	if !e.PlayTurn() {
		t.Fatal("PlayTurn() refused")
	}

	p1 := e.Players()[0]
	if p1.Position != 14 {
		t.Errorf("player 1 at %d, want 14", p1.Position)
	}
	if e.DieValue() != 3 {
		t.Errorf("DieValue() = %d, want 3", e.DieValue())
	}
	if e.CurrentIndex() != 1 {
		t.Errorf("turn should pass to player 2, current index %d", e.CurrentIndex())
	}
	if e.Message() != "Player 2's turn" {
		t.Errorf("Message() = %q", e.Message())
	}
}

func TestSnakeScenario(t *testing.T) {
	// 10 + 6 lands on 16, snake to 6.
	e := newClassic(t, 6)
	e.players[0].Position = 10

	e.PlayTurn()

	if got := e.Players()[0].Position; got != 6 {
		t.Errorf("player 1 at %d, want 6", got)
	}
}

func TestWinScenario(t *testing.T) {
	// 95 + 6 is capped at 100 and wins.
	e := newClassic(t, 6)
	e.players[0].Position = 95

	e.PlayTurn()

	if e.Phase() != GameOver {
		t.Fatalf("Phase() = %v, want GameOver", e.Phase())
	}
	w, ok := e.Winner()
	if !ok || w.ID != 1 || w.Position != 100 {
		t.Errorf("Winner() = %+v, %v", w, ok)
	}
	if e.Message() != "Player 1 wins!" {
		t.Errorf("Message() = %q", e.Message())
	}
	if e.CanRoll() || !e.CanReset() {
		t.Error("game over should refuse roll and allow reset")
	}
	if e.RequestRoll() {
		t.Error("RequestRoll() accepted after game over")
	}
	if e.CurrentIndex() != 0 {
		t.Error("turn must not pass after a win")
	}
}

func TestOvershootClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		roll   int
		target int
	}{
		{"exact", 97, 3, 100},
		{"six from 97", 97, 6, 100},
		{"six from 98 capped", 98, 6, 100},
		{"normal", 40, 5, 45},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newClassic(t, tc.roll)
			e.players[0].Position = tc.start
			e.RequestRoll()
			if e.Target() != tc.target {
				t.Errorf("Target() = %d, want %d", e.Target(), tc.target)
			}
		})
	}
}

func TestLadderToFinalCellWins(t *testing.T) {
	e := newClassic(t, 2)
	e.players[0].Position = 78

	e.PlayTurn()

	if w, ok := e.Winner(); !ok || w.ID != 1 {
		t.Errorf("landing on 80 should climb to 100 and win, winner=%+v ok=%v", w, ok)
	}
}

func TestRollIgnoredWhileMoving(t *testing.T) {
	e := newClassic(t, 5, 2)

	if !e.RequestRoll() {
		t.Fatal("first roll refused")
	}
	if e.Phase() != Animating {
		t.Fatalf("Phase() = %v, want Animating", e.Phase())
	}
	if e.RequestRoll() {
		t.Error("second roll accepted while animating")
	}
	if e.Rolls() != 1 {
		t.Errorf("Rolls() = %d, want 1", e.Rolls())
	}

	for e.Phase() == Animating {
		e.Advance()
	}
	if e.Phase() != ResolvingTransition {
		t.Fatalf("Phase() = %v, want ResolvingTransition", e.Phase())
	}
	if e.RequestRoll() {
		t.Error("roll accepted while resolving transition")
	}
	if e.RequestReset() {
		t.Error("reset accepted while a game is running")
	}
}

func TestAnimationIsMonotonic(t *testing.T) {
	var positions []int
	e := newClassic(t, 6)
	e.sink = func(ev Event) {
		if ev.Kind == EventMoved {
			positions = append(positions, ev.To)
		}
	}
	e.players[0].Position = 30

	e.RequestRoll()
	steps := e.Settle()

	want := []int{31, 32, 33, 34, 35, 36}
	if len(positions) != len(want) {
		t.Fatalf("moves = %v, want %v", positions, want)
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("moves = %v, want %v", positions, want)
		}
	}

	// 6 moves + transition (36→44) + hand-off
	if steps != 8 {
		t.Errorf("Settle() = %d steps, want 8", steps)
	}
	if got := e.Players()[0].Position; got != 44 {
		t.Errorf("player 1 at %d, want 44", got)
	}
}

func TestPhaseSequence(t *testing.T) {
	e := newClassic(t, 3)
	e.RequestRoll()

	var phases []Phase
	for e.Advance() {
		phases = append(phases, e.Phase())
	}

	want := []Phase{Animating, Animating, ResolvingTransition, TurnComplete, WaitingForRoll}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phases = %v, want %v", phases, want)
		}
	}
}

func TestRendererCalledPerMutation(t *testing.T) {
	calls := 0
	var last []Player
	r := RendererFunc(func(players []Player, transitions []board.Transition) {
		calls++
		last = players
		if len(transitions) != 19 {
			t.Errorf("renderer got %d transitions", len(transitions))
		}
	})

	e, err := New(board.Classic(), DefaultPlayers(), WithDice(NewSequenceDice(3)), WithRenderer(r))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("initial reset should render once, got %d", calls)
	}

	e.PlayTurn()

	// 3 steps + ladder 4→14
	if calls != 5 {
		t.Errorf("renderer called %d times, want 5", calls)
	}
	if last[0].Position != 14 {
		t.Errorf("last frame shows player 1 at %d", last[0].Position)
	}
}

func TestNoChainedTransitions(t *testing.T) {
	tbl, err := board.NewTable(10,
		[]board.Transition{{From: 5, To: 20}, {From: 20, To: 60}},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(tbl, DefaultPlayers(), WithDice(NewSequenceDice(4)))
	if err != nil {
		t.Fatal(err)
	}

	e.PlayTurn()

	if got := e.Players()[0].Position; got != 20 {
		t.Errorf("player 1 at %d, want 20 (no chaining)", got)
	}
}

func TestTurnOrderCycles(t *testing.T) {
	players := []Player{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	e, err := New(board.Classic(), players, WithDice(NewSequenceDice(2)))
	if err != nil {
		t.Fatal(err)
	}

	var order []int
	for i := 0; i < 6; i++ {
		order = append(order, e.CurrentIndex())
		e.PlayTurn()
	}

	want := []int{0, 1, 2, 0, 1, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("turn order = %v, want %v", order, want)
		}
	}
	if e.Turns() != 6 {
		t.Errorf("Turns() = %d, want 6", e.Turns())
	}
}

func TestReset(t *testing.T) {
	e := newClassic(t, 6, 4)
	e.players[0].Position = 95
	e.players[1].Position = 50
	e.PlayTurn()
	if e.Phase() != GameOver {
		t.Fatal("expected game over")
	}

	if !e.RequestReset() {
		t.Fatal("RequestReset() refused after game over")
	}

	if e.Phase() != WaitingForRoll || e.CurrentIndex() != 0 {
		t.Errorf("after reset phase=%v current=%d", e.Phase(), e.CurrentIndex())
	}
	if _, ok := e.Winner(); ok {
		t.Error("winner should be cleared")
	}
	for _, p := range e.Players() {
		if p.Position != 1 {
			t.Errorf("%s at %d after reset", p.Name, p.Position)
		}
	}
	if e.Turns() != 0 || e.Rolls() != 0 {
		t.Errorf("counters not cleared: turns=%d rolls=%d", e.Turns(), e.Rolls())
	}
	if !e.PlayTurn() {
		t.Error("roll refused after reset")
	}
}

func TestEventOrder(t *testing.T) {
	var kinds []EventKind
	e, err := New(board.Classic(), DefaultPlayers(),
		WithDice(NewSequenceDice(3)),
		WithEventSink(func(ev Event) { kinds = append(kinds, ev.Kind) }),
	)
	if err != nil {
		t.Fatal(err)
	}

	e.PlayTurn()

	want := []EventKind{EventReset, EventRolled, EventMoved, EventMoved, EventMoved, EventLanded, EventTransition, EventTurnPassed}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
}

func TestTransitionAnnouncedBeforeJump(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		roll    int
		landing int
		dest    int
		message string
	}{
		{"ladder", 1, 3, 4, 14, "Player 1 found a ladder! Climbing from 4 to 14"},
		{"snake", 10, 6, 16, 6, "Player 1 landed on a snake! Moving from 16 to 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newClassic(t, tt.roll)
			e.players[0].Position = tt.start

			e.RequestRoll()
			for e.Phase() == Animating {
				e.Advance()
			}

			tr, ok := e.Pending()
			if !ok || tr.From != tt.landing || tr.To != tt.dest {
				t.Fatalf("Pending() = %v, %v; want %d->%d", tr, ok, tt.landing, tt.dest)
			}
			if got := e.Players()[0].Position; got != tt.landing {
				t.Errorf("token at %d before the jump, want %d", got, tt.landing)
			}
			if e.Message() != tt.message {
				t.Errorf("Message() = %q, want %q", e.Message(), tt.message)
			}

			e.Advance()
			if got := e.Players()[0].Position; got != tt.dest {
				t.Errorf("token at %d after the jump, want %d", got, tt.dest)
			}
			if _, ok := e.Pending(); ok {
				t.Error("transition still pending after the jump")
			}
			if e.Message() != tt.message {
				t.Errorf("Message() after jump = %q", e.Message())
			}
		})
	}
}

func TestNoPendingOnPlainCell(t *testing.T) {
	e := newClassic(t, 1)
	e.RequestRoll()
	e.Advance()

	if e.Phase() != ResolvingTransition {
		t.Fatalf("Phase() = %v, want ResolvingTransition", e.Phase())
	}
	if _, ok := e.Pending(); ok {
		t.Error("cell 2 has no snake or ladder")
	}
	if e.Message() != "Player 1 rolled a 1 and is moving..." {
		t.Errorf("Message() = %q", e.Message())
	}
}

func TestPlayerCount(t *testing.T) {
	if _, err := New(board.Classic(), []Player{{Name: "solo"}}); !errors.Is(err, ErrPlayerCount) {
		t.Errorf("one player: err = %v", err)
	}
	five := make([]Player, 5)
	if _, err := New(board.Classic(), five); !errors.Is(err, ErrPlayerCount) {
		t.Errorf("five players: err = %v", err)
	}
	if _, err := New(nil, DefaultPlayers()); err == nil {
		t.Error("nil table should fail")
	}
}

func TestDefaultNames(t *testing.T) {
	e, err := New(board.Classic(), []Player{{}, {Name: "Bob"}})
	if err != nil {
		t.Fatal(err)
	}
	ps := e.Players()
	if ps[0].Name != "Player 1" || ps[1].Name != "Bob" || ps[1].ID != 2 {
		t.Errorf("players = %+v", ps)
	}
}

func TestFullGameTerminates(t *testing.T) {
	e, err := New(board.Classic(), DefaultPlayers(), WithDice(NewRandomDice(7)))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10000 && e.Phase() != GameOver; i++ {
		e.PlayTurn()
		for _, p := range e.Players() {
			if p.Position < 1 || p.Position > 100 {
				t.Fatalf("%s off the board at %d", p.Name, p.Position)
			}
		}
	}

	if e.Phase() != GameOver {
		t.Fatal("game did not finish")
	}
	w, _ := e.Winner()
	if w.Position != 100 {
		t.Errorf("winner at %d", w.Position)
	}
}

func TestDeterminism(t *testing.T) {
	play := func() (int, int) {
		e, err := New(board.Classic(), DefaultPlayers(), WithDice(NewRandomDice(12345)))
		if err != nil {
			t.Fatal(err)
		}
		for e.Phase() != GameOver {
			e.PlayTurn()
		}
		w, _ := e.Winner()
		return w.ID, e.Turns()
	}

	w1, t1 := play()
	w2, t2 := play()
	if w1 != w2 || t1 != t2 {
		t.Errorf("same seed diverged: winner %d/%d turns %d/%d", w1, w2, t1, t2)
	}
}
