package multiplayer

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// SessionHandle is how rooms and matches reach a connected player.
type SessionHandle interface {
	ID() SessionID
	// Send must not block the coordinator loop.
	Send(evt SessionEvent)
	// Done is closed when the player disconnects.
	Done() <-chan struct{}
}

// ChannelSession queues room and match events for one SSH player.
// A slow reader loses its oldest events first; Dropped counts them.
type ChannelSession struct {
	id      SessionID
	queue   chan SessionEvent
	closed  chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

const defaultQueueSize = 64

// NewChannelSession creates a session with room for size pending events.
func NewChannelSession(id SessionID, size int) *ChannelSession {
	if size < 1 {
		size = defaultQueueSize
	}
	return &ChannelSession{
		id:     id,
		queue:  make(chan SessionEvent, size),
		closed: make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues evt, evicting the oldest pending event when the queue is full.
// Nothing is queued once the session is closed.
func (s *ChannelSession) Send(evt SessionEvent) {
	if s.isClosed() {
		return
	}
	for {
		select {
		case s.queue <- evt:
			return
		default:
		}
		select {
		case <-s.queue:
			s.dropped.Add(1)
		default:
			// Drained by the reader in between; retry the send.
		}
	}
}

func (s *ChannelSession) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Events is read by the session's Bubble Tea program.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.queue
}

// Dropped returns how many events were evicted unread.
func (s *ChannelSession) Dropped() int64 {
	return s.dropped.Load()
}

func (s *ChannelSession) Done() <-chan struct{} {
	return s.closed
}

// Close ends the session. Later calls do nothing.
func (s *ChannelSession) Close() {
	s.once.Do(func() { close(s.closed) })
}

// Peer is a connected player: the handle events go to, the SSH user name and
// the connection time.
type Peer struct {
	Handle SessionHandle
	Name   string
	Since  time.Time
}

// SessionRegistry is the lobby of connected players. Safe for concurrent use:
// SSH handlers register and unregister while the coordinator looks peers up.
type SessionRegistry struct {
	mu    sync.RWMutex
	peers map[SessionID]Peer
	now   func() time.Time
}

// NewSessionRegistry creates an empty lobby.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		peers: make(map[SessionID]Peer),
		now:   time.Now,
	}
}

// Register adds a connected player under its handle's ID.
func (r *SessionRegistry) Register(h SessionHandle, name string) {
	r.mu.Lock()
	r.peers[h.ID()] = Peer{Handle: h, Name: name, Since: r.now()}
	r.mu.Unlock()
}

// Unregister removes a player that disconnected.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	delete(r.peers, id)
	r.mu.Unlock()
}

// Lookup returns the peer with the given session ID.
func (r *SessionRegistry) Lookup(id SessionID) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[id]
	return p, ok
}

// Notify sends evt to a connected player. Returns false if it is gone.
func (r *SessionRegistry) Notify(id SessionID, evt SessionEvent) bool {
	p, ok := r.Lookup(id)
	if !ok {
		return false
	}
	p.Handle.Send(evt)
	return true
}

// Online returns the names of the connected players, sorted, each once.
func (r *SessionRegistry) Online() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.peers))
	for _, p := range r.peers {
		names = append(names, p.Name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return slices.Compact(names)
}

// Count returns the number of connected sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}
