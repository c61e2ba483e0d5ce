// Package storage provides SQLite-based persistence for the match history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for the match history.
type Store struct {
	db *sql.DB
}

// Match represents one finished game.
type Match struct {
	ID         int64
	MatchID    string   // UUID, generated on save when empty
	Variant    string   // Board variant
	Players    []string // Seat names in order
	Winner     string
	WinnerSeat int // 1-based
	Turns      int
	Rolls      int
	Shortcuts  int // Ladders climbed
	Setbacks   int // Snakes slid down
	Duration   int // Duration in seconds
	CreatedAt  time.Time
}

// PlayerRecord aggregates the results of one player name.
type PlayerRecord struct {
	Name  string
	Games int
	Wins  int
}

// VariantStats contains aggregated statistics for a board variant.
type VariantStats struct {
	Variant    string
	Games      int
	AvgTurns   float64
	Shortcuts  int
	Setbacks   int
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			variant TEXT NOT NULL,
			winner_seat INTEGER NOT NULL,
			winner_name TEXT NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			rolls INTEGER NOT NULL DEFAULT 0,
			shortcuts INTEGER NOT NULL DEFAULT 0,
			setbacks INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_variant ON matches(variant);
		CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner_name);

		CREATE TABLE IF NOT EXISTS match_players (
			match_id TEXT NOT NULL,
			seat INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (match_id, seat)
		);
		CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished game and its seats.
// Returns the match ID, generated when m.MatchID is empty.
func (s *Store) SaveMatch(m Match) (string, error) {
	if m.MatchID == "" {
		m.MatchID = uuid.NewString()
	}
	if m.WinnerSeat < 1 || m.WinnerSeat > len(m.Players) {
		return "", fmt.Errorf("storage: winner seat %d not in [1, %d]", m.WinnerSeat, len(m.Players))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(
		`INSERT INTO matches
		 (match_id, variant, winner_seat, winner_name, turns, rolls, shortcuts, setbacks, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MatchID,
		m.Variant,
		m.WinnerSeat,
		m.Winner,
		m.Turns,
		m.Rolls,
		m.Shortcuts,
		m.Setbacks,
		m.Duration,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save match: %w", err)
	}

	for i, name := range m.Players {
		if _, err := tx.Exec(
			"INSERT INTO match_players (match_id, seat, name) VALUES (?, ?, ?)",
			m.MatchID, i+1, name,
		); err != nil {
			return "", fmt.Errorf("storage: cannot save player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return m.MatchID, nil
}

const matchColumns = `id, match_id, variant, winner_seat, winner_name,
	turns, rolls, shortcuts, setbacks, duration_secs, created_at`

// MatchByID retrieves a match by its match ID.
// Returns nil without error when there is no such match.
func (s *Store) MatchByID(matchID string) (*Match, error) {
	row := s.db.QueryRow(
		`SELECT `+matchColumns+` FROM matches WHERE match_id = ?`,
		matchID,
	)

	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}

	if m.Players, err = s.players(m.MatchID); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecentMatches retrieves the most recent matches, newest first.
// An empty variant matches every board.
func (s *Store) RecentMatches(variant string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+matchColumns+`
		 FROM matches
		 WHERE ? = '' OR variant = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		variant, variant, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	rows.Close()

	for i := range matches {
		if matches[i].Players, err = s.players(matches[i].MatchID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// players loads the seat names of a match in seat order.
func (s *Store) players(matchID string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM match_players WHERE match_id = ? ORDER BY seat",
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("storage: cannot scan player: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return names, nil
}

// WinCounts returns games played and won per player name, best first.
func (s *Store) WinCounts() ([]PlayerRecord, error) {
	rows, err := s.db.Query(
		`SELECT p.name, COUNT(*),
		        SUM(CASE WHEN m.winner_seat = p.seat THEN 1 ELSE 0 END) AS wins
		 FROM match_players p
		 JOIN matches m ON m.match_id = p.match_id
		 GROUP BY p.name
		 ORDER BY wins DESC, p.name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query win counts: %w", err)
	}
	defer rows.Close()

	var records []PlayerRecord
	for rows.Next() {
		var r PlayerRecord
		if err := rows.Scan(&r.Name, &r.Games, &r.Wins); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return records, nil
}

// VariantStatsFor retrieves aggregated statistics for one board variant.
func (s *Store) VariantStatsFor(variant string) (*VariantStats, error) {
	stats := &VariantStats{Variant: variant}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(turns), 0), COALESCE(SUM(shortcuts), 0),
		        COALESCE(SUM(setbacks), 0), MAX(created_at)
		 FROM matches WHERE variant = ?`,
		variant,
	).Scan(&stats.Games, &stats.AvgTurns, &stats.Shortcuts, &stats.Setbacks, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get variant stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllVariantStats retrieves statistics for every variant that has been played.
func (s *Store) AllVariantStats() (map[string]*VariantStats, error) {
	rows, err := s.db.Query(
		`SELECT variant, COUNT(*), AVG(turns), SUM(shortcuts), SUM(setbacks), MAX(created_at)
		 FROM matches
		 GROUP BY variant`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all variant stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*VariantStats)
	for rows.Next() {
		var vs VariantStats
		var lastPlayed any
		if err := rows.Scan(&vs.Variant, &vs.Games, &vs.AvgTurns, &vs.Shortcuts, &vs.Setbacks, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		vs.LastPlayed = parseTime(lastPlayed)
		stats[vs.Variant] = &vs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// CombineStats merges the statistics of several variants into one.
// The average turn count is weighted by games.
func CombineStats(stats ...*VariantStats) VariantStats {
	var total VariantStats
	var turns float64
	for _, vs := range stats {
		if vs == nil {
			continue
		}
		total.Games += vs.Games
		total.Shortcuts += vs.Shortcuts
		total.Setbacks += vs.Setbacks
		turns += vs.AvgTurns * float64(vs.Games)
		if vs.LastPlayed.After(total.LastPlayed) {
			total.LastPlayed = vs.LastPlayed
		}
	}
	if total.Games > 0 {
		total.AvgTurns = turns / float64(total.Games)
	}
	return total
}

// ClearMatches deletes the history of a variant, or everything when variant is empty.
func (s *Store) ClearMatches(variant string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(
		`DELETE FROM match_players WHERE match_id IN
		   (SELECT match_id FROM matches WHERE ? = '' OR variant = ?)`,
		variant, variant,
	); err != nil {
		return fmt.Errorf("storage: cannot clear players: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM matches WHERE ? = '' OR variant = ?", variant, variant); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit clear: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (Match, error) {
	var m Match
	var createdAt any
	err := row.Scan(
		&m.ID,
		&m.MatchID,
		&m.Variant,
		&m.WinnerSeat,
		&m.Winner,
		&m.Turns,
		&m.Rolls,
		&m.Shortcuts,
		&m.Setbacks,
		&m.Duration,
		&createdAt,
	)
	m.CreatedAt = parseTime(createdAt)
	return m, err
}

// parseTime handles both time.Time and string datetime values from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
