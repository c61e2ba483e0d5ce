// Package multiplayer lets several SSH sessions share one board.
//
// A host opens a room and gets a short join code. Other sessions join the
// room with that code, and the host starts a match once enough players are
// seated. The match runs on the server at a fixed tick rate; every session
// sends its key presses to it and draws the shared board. A session may only
// roll for its own seat.
package multiplayer

import (
	"time"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
)

// SessionID uniquely identifies a connected session (one SSH connection).
type SessionID string

// MatchID uniquely identifies a running match.
type MatchID string

// Seat limits of a room, the same as the engine's.
const (
	MinSeats = engine.MinPlayers
	MaxSeats = engine.MaxPlayers
)

// Member is a session seated in a room or match.
type Member struct {
	Session SessionHandle
	Name    string
}

// EndReason describes why a room or match was closed.
type EndReason int

const (
	EndReasonPlayerLeft EndReason = iota // A seated player left or disconnected
	EndReasonHostLeft                    // The host closed the room
	EndReasonExpired                     // Nobody joined in time
	EndReasonShutdown                    // The server is stopping
)

// String returns a human-readable reason.
func (r EndReason) String() string {
	switch r {
	case EndReasonPlayerLeft:
		return "A player left"
	case EndReasonHostLeft:
		return "Host left"
	case EndReasonExpired:
		return "Room expired"
	case EndReasonShutdown:
		return "Server shutting down"
	default:
		return "Unknown"
	}
}

// GameResult is one finished game played inside a match.
// A match may produce several of them, one per game.
type GameResult struct {
	MatchID  MatchID
	Code     string
	Outcome  core.Outcome
	Duration time.Duration
}

// ResultSaver persists finished games. It lets the coordinator record results
// without depending on the storage package.
type ResultSaver interface {
	SaveResult(result GameResult) error
}

// ResultSaverFunc adapts a function to the ResultSaver interface.
type ResultSaverFunc func(GameResult) error

// SaveResult calls f.
func (f ResultSaverFunc) SaveResult(result GameResult) error {
	return f(result)
}
