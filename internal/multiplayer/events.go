package multiplayer

import "github.com/vovakirdan/tui-ladders/internal/core"

// SessionEvent is sent from the coordinator or a match to a session.
type SessionEvent interface {
	sessionEvent()
}

// RoomCreatedEvent tells the host its room is open.
type RoomCreatedEvent struct {
	Code    string
	Variant string
}

func (RoomCreatedEvent) sessionEvent() {}

// RoomUpdatedEvent is sent to everyone in a room when the seating changes.
type RoomUpdatedEvent struct {
	Code    string
	Variant string
	Players []string // Seat order, host first
	Seat    int      // Seat of the receiving session
}

func (RoomUpdatedEvent) sessionEvent() {}

// RoomErrorEvent reports a failed room operation to the session that asked.
type RoomErrorEvent struct {
	Message string
}

func (RoomErrorEvent) sessionEvent() {}

// RoomClosedEvent is sent to the guests of a room that closed before its
// match started.
type RoomClosedEvent struct {
	Code   string
	Reason EndReason
}

func (RoomClosedEvent) sessionEvent() {}

// MatchStartedEvent is sent to every seated session when the host starts.
// The session draws Match and sends its input to it.
type MatchStartedEvent struct {
	MatchID MatchID
	Code    string
	Seat    int
	Match   *OnlineMatch
}

func (MatchStartedEvent) sessionEvent() {}

// GameFinishedEvent is broadcast each time a game inside a match is won.
type GameFinishedEvent struct {
	MatchID MatchID
	Outcome core.Outcome
}

func (GameFinishedEvent) sessionEvent() {}

// MatchEndedEvent is sent to the remaining sessions when a match stops.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  EndReason
	Who     string // Name of the player who left, if any
}

func (MatchEndedEvent) sessionEvent() {}

// CoordinatorMessage is sent from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateRoomMsg opens a room for a board variant.
type CreateRoomMsg struct {
	SessionID SessionID
	Name      string
	Variant   string
}

func (CreateRoomMsg) coordinatorMessage() {}

// JoinRoomMsg takes a seat in an open room.
type JoinRoomMsg struct {
	SessionID SessionID
	Name      string
	Code      string
}

func (JoinRoomMsg) coordinatorMessage() {}

// StartMatchMsg asks the coordinator to start the host's room.
type StartMatchMsg struct {
	SessionID SessionID
}

func (StartMatchMsg) coordinatorMessage() {}

// LeaveMsg leaves the session's room or match.
type LeaveMsg struct {
	SessionID SessionID
}

func (LeaveMsg) coordinatorMessage() {}

// PlayerInputMsg carries one session's key presses to its match.
type PlayerInputMsg struct {
	MatchID MatchID
	Seat    int
	Input   core.InputFrame
}

func (PlayerInputMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session's connection closes.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
