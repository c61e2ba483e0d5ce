package engine

import (
	"fmt"

	"github.com/vovakirdan/tui-ladders/internal/board"
)

// EventKind identifies what happened in the engine.
type EventKind int

const (
	EventRolled     EventKind = iota // die thrown, target chosen
	EventMoved                       // token advanced one cell
	EventLanded                      // landed on a snake or ladder, jump pending
	EventTransition                  // snake or ladder applied
	EventTurnPassed                  // next player to move
	EventWon                         // game over
	EventReset                       // board cleared for a new game
)

// String returns a short name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventRolled:
		return "rolled"
	case EventMoved:
		return "moved"
	case EventLanded:
		return "landed"
	case EventTransition:
		return "transition"
	case EventTurnPassed:
		return "turn"
	case EventWon:
		return "won"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is a single engine state change.
type Event struct {
	Kind       EventKind
	Player     int    // Seat of the player concerned
	Name       string // Name of the player concerned
	Die        int    // Die value (EventRolled)
	From       int    // Position before the change
	To         int    // Position after the change, or the roll target
	Transition board.Transition
}

// String formats the event for transcripts and logs.
func (e Event) String() string {
	switch e.Kind {
	case EventRolled:
		return fmt.Sprintf("%s rolled %d: %d → %d", e.Name, e.Die, e.From, e.To)
	case EventMoved:
		return fmt.Sprintf("%s steps to %d", e.Name, e.To)
	case EventLanded:
		return fmt.Sprintf("%s lands on %s", e.Name, e.Transition)
	case EventTransition:
		return fmt.Sprintf("%s hits %s", e.Name, e.Transition)
	case EventTurnPassed:
		return fmt.Sprintf("%s to move", e.Name)
	case EventWon:
		return fmt.Sprintf("%s wins on %d", e.Name, e.To)
	case EventReset:
		return "new game"
	default:
		return e.Kind.String()
	}
}
