package multiplayer

import (
	"testing"
	"time"

	"github.com/vovakirdan/tui-ladders/internal/config"
	"github.com/vovakirdan/tui-ladders/internal/core"
	_ "github.com/vovakirdan/tui-ladders/internal/games/ladders"
	"github.com/vovakirdan/tui-ladders/internal/registry"
)

func newQuickGame(t *testing.T, names ...string) OnlineGame {
	t.Helper()
	g, err := registry.Create(config.VariantQuick, registry.Options{
		PlayerNames: names,
		Speed:       string(config.SpeedInstant),
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	og, ok := g.(OnlineGame)
	if !ok {
		t.Fatalf("%T does not implement OnlineGame", g)
	}
	return og
}

func newTestMatch(t *testing.T) (*OnlineMatch, []*ChannelSession) {
	t.Helper()
	alice := NewChannelSession("alice", 16)
	bob := NewChannelSession("bob", 16)
	members := []Member{{Session: alice, Name: "Alice"}, {Session: bob, Name: "Bob"}}

	m := NewOnlineMatch("m1", "ABCDEF", config.VariantQuick, newQuickGame(t, "Alice", "Bob"), members, 60, 7)
	return m, []*ChannelSession{alice, bob}
}

func rollFrame() core.InputFrame {
	f := core.NewInputFrame()
	f.Set(core.ActionRoll)
	return f
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		action   core.Action
		seat     int
		current  int
		gameOver bool
		want     bool
	}{
		{"own turn roll", core.ActionRoll, 1, 1, false, true},
		{"other turn roll", core.ActionRoll, 2, 1, false, false},
		{"roll after win starts new game", core.ActionRoll, 2, 1, true, true},
		{"new game while playing", core.ActionNewGame, 1, 1, false, false},
		{"new game after win", core.ActionNewGame, 2, 1, true, true},
		{"anyone pauses", core.ActionPause, 2, 1, false, true},
		{"back is local", core.ActionBack, 1, 1, false, false},
		{"quit is local", core.ActionQuit, 1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.action, tt.seat, tt.current, tt.gameOver); got != tt.want {
				t.Errorf("Allowed(%v, %d, %d, %v) = %v, want %v",
					tt.action, tt.seat, tt.current, tt.gameOver, got, tt.want)
			}
		})
	}
}

func TestMatchOnlyCurrentSeatRolls(t *testing.T) {
	m, _ := newTestMatch(t)

	m.SendInput(2, rollFrame())
	m.step()
	if got := m.game.Outcome().Rolls; got != 0 {
		t.Fatalf("seat 2 rolled out of turn: rolls = %d", got)
	}

	m.SendInput(1, rollFrame())
	m.step()
	if got := m.game.Outcome().Rolls; got != 1 {
		t.Fatalf("rolls = %d after seat 1 rolled, want 1", got)
	}
}

func TestMatchPlaysToFinish(t *testing.T) {
	m, _ := newTestMatch(t)

	var res GameResult
	finished := false
	for i := 0; i < 100000 && !finished; i++ {
		if !m.State().Busy {
			m.SendInput(m.CurrentSeat(), rollFrame())
		}
		res, finished = m.step()
	}
	if !finished {
		t.Fatal("game did not finish")
	}

	if res.MatchID != "m1" || res.Code != "ABCDEF" {
		t.Errorf("result ids = %q/%q", res.MatchID, res.Code)
	}
	if res.Outcome.Winner != "Alice" && res.Outcome.Winner != "Bob" {
		t.Errorf("winner = %q", res.Outcome.Winner)
	}
	if res.Outcome.Variant != config.VariantQuick {
		t.Errorf("variant = %q", res.Outcome.Variant)
	}
	if m.games != 1 {
		t.Errorf("games = %d, want 1", m.games)
	}

	// Reported once per win
	if _, again := m.step(); again {
		t.Error("finished game reported twice")
	}

	// Anyone may start the next game
	m.SendInput(2, rollFrame())
	m.step()
	if m.State().GameOver {
		t.Error("roll after the win did not start a new game")
	}
}

func TestMatchRender(t *testing.T) {
	m, _ := newTestMatch(t)
	w, h := m.canvas.Width(), m.canvas.Height()

	dst := core.NewScreen(w+10, h+2)
	m.Render(dst)

	if got := dst.Row(0); got == "" || got[0] != ' ' {
		t.Errorf("board not centered: %q", got)
	}
	found := false
	for y := range dst.Height() {
		if containsRune(dst.Row(y), '▲') {
			found = true
		}
	}
	if !found {
		t.Error("no ladder drawn on the shared board")
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func TestMatchEndsWhenPlayerLeaves(t *testing.T) {
	m, _ := newTestMatch(t)

	ended := make(chan MatchResult, 1)
	go m.Run(nil, func(r MatchResult) { ended <- r })

	m.PlayerLeft("bob")

	select {
	case r := <-ended:
		if r.Reason != EndReasonPlayerLeft {
			t.Errorf("reason = %v, want player left", r.Reason)
		}
		if r.Who != "Bob" {
			t.Errorf("who = %q, want Bob", r.Who)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("match did not end")
	}
}

func TestMatchEndsWhenSessionCloses(t *testing.T) {
	m, sessions := newTestMatch(t)

	ended := make(chan MatchResult, 1)
	go m.Run(nil, func(r MatchResult) { ended <- r })

	sessions[0].Close()

	select {
	case r := <-ended:
		if r.Who != "Alice" {
			t.Errorf("who = %q, want Alice", r.Who)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("match did not end")
	}
}

func TestMatchStop(t *testing.T) {
	m, _ := newTestMatch(t)

	ended := make(chan MatchResult, 1)
	go m.Run(nil, func(r MatchResult) { ended <- r })

	m.Stop()
	m.Stop()

	select {
	case r := <-ended:
		if r.Reason != EndReasonShutdown {
			t.Errorf("reason = %v, want shutdown", r.Reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("match did not stop")
	}
}

func TestMatchSeat(t *testing.T) {
	m, _ := newTestMatch(t)

	if got := m.Seat("alice"); got != 1 {
		t.Errorf("Seat(alice) = %d, want 1", got)
	}
	if got := m.Seat("bob"); got != 2 {
		t.Errorf("Seat(bob) = %d, want 2", got)
	}
	if got := m.Seat("eve"); got != 0 {
		t.Errorf("Seat(eve) = %d, want 0", got)
	}
	if got := m.Players(); len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Errorf("Players() = %v", got)
	}
}
