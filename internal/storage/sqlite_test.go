package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveMatch(Match{
		Variant:    "ladders",
		Players:    []string{"Alice", "Bob"},
		Winner:     "Bob",
		WinnerSeat: 2,
		Turns:      41,
		Rolls:      41,
		Shortcuts:  3,
		Setbacks:   5,
		Duration:   95,
	})
	if err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("generated match ID %q is not a UUID", id)
	}

	m, err := store.MatchByID(id)
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if m == nil {
		t.Fatal("MatchByID() returned nil")
	}
	if m.Winner != "Bob" || m.WinnerSeat != 2 || m.Turns != 41 || m.Setbacks != 5 || m.Duration != 95 {
		t.Errorf("match = %+v", m)
	}
	if len(m.Players) != 2 || m.Players[0] != "Alice" || m.Players[1] != "Bob" {
		t.Errorf("players = %v, want [Alice Bob]", m.Players)
	}
}

func TestStoreMatchByIDMissing(t *testing.T) {
	store := openTestStore(t)

	m, err := store.MatchByID("does-not-exist")
	if err != nil {
		t.Fatalf("MatchByID() failed: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil match, got %+v", m)
	}
}

func TestStoreRejectsBadWinnerSeat(t *testing.T) {
	store := openTestStore(t)

	_, err := store.SaveMatch(Match{Variant: "ladders", Players: []string{"A", "B"}, WinnerSeat: 3})
	if err == nil {
		t.Error("SaveMatch() should reject a winner seat outside the players")
	}
}

func TestStoreRecentMatches(t *testing.T) {
	store := openTestStore(t)

	for i, variant := range []string{"ladders", "ladders_quick", "ladders", "ladders"} {
		_, err := store.SaveMatch(Match{
			Variant:    variant,
			Players:    []string{"A", "B"},
			Winner:     "A",
			WinnerSeat: 1,
			Turns:      i + 1,
		})
		if err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
	}

	all, err := store.RecentMatches("", 10)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(all))
	}
	// Newest first
	if all[0].Turns != 4 || all[3].Turns != 1 {
		t.Errorf("matches not newest first: %d ... %d", all[0].Turns, all[3].Turns)
	}

	classic, err := store.RecentMatches("ladders", 2)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(classic) != 2 {
		t.Errorf("expected 2 matches with limit, got %d", len(classic))
	}
	for _, m := range classic {
		if m.Variant != "ladders" {
			t.Errorf("variant filter leaked %q", m.Variant)
		}
	}
}

func TestStoreWinCounts(t *testing.T) {
	store := openTestStore(t)

	results := []struct {
		players []string
		seat    int
	}{
		{[]string{"Alice", "Bob"}, 1},
		{[]string{"Bob", "Alice"}, 2},
		{[]string{"Alice", "Cleo"}, 2},
		{[]string{"Bob", "Cleo", "Dan"}, 1},
	}
	for _, r := range results {
		_, err := store.SaveMatch(Match{
			Variant:    "ladders",
			Players:    r.players,
			Winner:     r.players[r.seat-1],
			WinnerSeat: r.seat,
		})
		if err != nil {
			t.Fatalf("SaveMatch() failed: %v", err)
		}
	}

	records, err := store.WinCounts()
	if err != nil {
		t.Fatalf("WinCounts() failed: %v", err)
	}

	want := []PlayerRecord{
		{Name: "Alice", Games: 3, Wins: 2},
		{Name: "Bob", Games: 3, Wins: 1},
		{Name: "Cleo", Games: 2, Wins: 1},
		{Name: "Dan", Games: 1, Wins: 0},
	}
	if len(records) != len(want) {
		t.Fatalf("WinCounts() = %+v", records)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestStoreVariantStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.VariantStatsFor("ladders")
	if err != nil {
		t.Fatalf("VariantStatsFor() failed: %v", err)
	}
	if empty.Games != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", empty)
	}

	store.SaveMatch(Match{Variant: "ladders", Players: []string{"A", "B"}, WinnerSeat: 1, Turns: 30, Shortcuts: 2, Setbacks: 1})
	store.SaveMatch(Match{Variant: "ladders", Players: []string{"A", "B"}, WinnerSeat: 2, Turns: 50, Shortcuts: 1, Setbacks: 4})
	store.SaveMatch(Match{Variant: "ladders_quick", Players: []string{"A", "B"}, WinnerSeat: 1, Turns: 8})

	stats, err := store.VariantStatsFor("ladders")
	if err != nil {
		t.Fatalf("VariantStatsFor() failed: %v", err)
	}
	if stats.Games != 2 || stats.AvgTurns != 40 || stats.Shortcuts != 3 || stats.Setbacks != 5 {
		t.Errorf("stats = %+v", stats)
	}

	all, err := store.AllVariantStats()
	if err != nil {
		t.Fatalf("AllVariantStats() failed: %v", err)
	}
	if len(all) != 2 || all["ladders_quick"].Games != 1 {
		t.Errorf("AllVariantStats() = %v", all)
	}
}

func TestCombineStats(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	got := CombineStats(
		&VariantStats{Variant: "ladders", Games: 3, AvgTurns: 40, Shortcuts: 6, Setbacks: 9, LastPlayed: early},
		nil,
		&VariantStats{Variant: "ladders_quick", Games: 1, AvgTurns: 8, Shortcuts: 1, LastPlayed: late},
	)
	want := VariantStats{Games: 4, AvgTurns: 32, Shortcuts: 7, Setbacks: 9, LastPlayed: late}
	if got != want {
		t.Errorf("CombineStats() = %+v, want %+v", got, want)
	}

	if empty := CombineStats(); empty.Games != 0 || empty.AvgTurns != 0 {
		t.Errorf("CombineStats() of nothing = %+v", empty)
	}
}

func TestStoreClearMatches(t *testing.T) {
	store := openTestStore(t)

	store.SaveMatch(Match{Variant: "ladders", Players: []string{"A", "B"}, WinnerSeat: 1})
	store.SaveMatch(Match{Variant: "ladders_quick", Players: []string{"A", "B"}, WinnerSeat: 1})

	if err := store.ClearMatches("ladders"); err != nil {
		t.Fatalf("ClearMatches() failed: %v", err)
	}

	left, _ := store.RecentMatches("", 10)
	if len(left) != 1 || left[0].Variant != "ladders_quick" {
		t.Errorf("after clear: %+v", left)
	}

	records, _ := store.WinCounts()
	if len(records) != 2 || records[0].Games != 1 {
		t.Errorf("players of cleared matches still counted: %+v", records)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
