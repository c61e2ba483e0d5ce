package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Room is a waiting room. The host takes seat 1, guests follow in join order.
type Room struct {
	Code      string
	Variant   string
	Host      Member
	Guests    []Member
	CreatedAt time.Time
}

// Members returns every seated member, host first.
func (r *Room) Members() []Member {
	return append([]Member{r.Host}, r.Guests...)
}

// Names returns the seated names, host first.
func (r *Room) Names() []string {
	members := r.Members()
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	RoomTimeout   time.Duration // How long a room may wait without guests
	TickRate      int           // Match tick rate (Hz)
	CleanupPeriod time.Duration // How often expired rooms are closed
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		RoomTimeout:   5 * time.Minute,
		TickRate:      60,
		CleanupPeriod: 30 * time.Second,
	}
}

// GameFactory creates the game of a match for the seated player names.
type GameFactory func(variant string, players []string) (OnlineGame, error)

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithResultSaver records every game won in a match.
func WithResultSaver(s ResultSaver) CoordinatorOption {
	return func(c *Coordinator) {
		c.saver = s
	}
}

// WithLogger logs room and match activity.
func WithLogger(l *log.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMatchHooks is called when a match starts and when it ends.
func WithMatchHooks(started, ended func()) CoordinatorOption {
	return func(c *Coordinator) {
		c.onStart = started
		c.onEnd = ended
	}
}

// Coordinator owns the rooms and running matches of a server.
// Sessions talk to it with Send; it answers through their SessionHandle.
type Coordinator struct {
	config   CoordinatorConfig
	factory  GameFactory
	sessions *SessionRegistry
	saver    ResultSaver
	logger   *log.Logger
	onStart  func()
	onEnd    func()

	mu      sync.RWMutex
	rooms   map[string]*Room
	matches map[MatchID]*OnlineMatch

	sessionRoom  map[SessionID]string
	sessionMatch map[SessionID]MatchID

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a coordinator. Call Start to process messages.
func NewCoordinator(cfg CoordinatorConfig, factory GameFactory, sessions *SessionRegistry, opts ...CoordinatorOption) *Coordinator {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = DefaultCoordinatorConfig().CleanupPeriod
	}

	c := &Coordinator{
		config:       cfg,
		factory:      factory,
		sessions:     sessions,
		logger:       log.New(io.Discard),
		rooms:        make(map[string]*Room),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionRoom:  make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop ends background processing and stops every running match.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)

		c.mu.RLock()
		defer c.mu.RUnlock()
		for _, m := range c.matches {
			m.Stop()
		}
	})
}

// Send queues a message for the coordinator.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateRoomMsg:
		c.handleCreateRoom(m)
	case JoinRoomMsg:
		c.handleJoinRoom(m)
	case StartMatchMsg:
		c.handleStartMatch(m)
	case LeaveMsg:
		c.handleLeave(m.SessionID)
	case PlayerInputMsg:
		c.handlePlayerInput(m)
	case SessionDisconnectedMsg:
		c.handleLeave(m.SessionID)
	}
}

func (c *Coordinator) handleCreateRoom(msg CreateRoomMsg) {
	peer, ok := c.sessions.Lookup(msg.SessionID)
	if !ok {
		return
	}
	session := peer.Handle
	if msg.Name == "" {
		msg.Name = peer.Name
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		c.roomError(msg.SessionID, "Already in a room")
		return
	}

	room := &Room{
		Code:      c.generateUniqueCode(),
		Variant:   msg.Variant,
		Host:      Member{Session: session, Name: msg.Name},
		CreatedAt: time.Now(),
	}
	c.rooms[room.Code] = room
	c.sessionRoom[msg.SessionID] = room.Code

	c.logger.Info("room created", "code", room.Code, "variant", room.Variant, "host", msg.Name)
	session.Send(RoomCreatedEvent{Code: room.Code, Variant: room.Variant})
	c.broadcastRoom(room)
}

func (c *Coordinator) handleJoinRoom(msg JoinRoomMsg) {
	peer, ok := c.sessions.Lookup(msg.SessionID)
	if !ok {
		return
	}
	session := peer.Handle
	if msg.Name == "" {
		msg.Name = peer.Name
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		c.roomError(msg.SessionID, "Already in a room")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	room, exists := c.rooms[code]
	if !exists {
		c.roomError(msg.SessionID, "Room not found")
		return
	}
	if len(room.Members()) >= MaxSeats {
		c.roomError(msg.SessionID, "Room is full")
		return
	}

	room.Guests = append(room.Guests, Member{Session: session, Name: msg.Name})
	c.sessionRoom[msg.SessionID] = code

	c.logger.Info("room joined", "code", code, "player", msg.Name, "seats", len(room.Members()))
	c.broadcastRoom(room)
}

func (c *Coordinator) roomError(id SessionID, message string) {
	c.sessions.Notify(id, RoomErrorEvent{Message: message})
}

// broadcastRoom tells every member who is seated. Must be called with the lock held.
func (c *Coordinator) broadcastRoom(room *Room) {
	names := room.Names()
	for i, m := range room.Members() {
		m.Session.Send(RoomUpdatedEvent{
			Code:    room.Code,
			Variant: room.Variant,
			Players: names,
			Seat:    i + 1,
		})
	}
}

func (c *Coordinator) handleStartMatch(msg StartMatchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.sessionRoom[msg.SessionID]
	if !ok {
		return
	}
	room := c.rooms[code]
	if room == nil || room.Host.Session.ID() != msg.SessionID {
		return
	}

	members := room.Members()
	if len(members) < MinSeats {
		room.Host.Session.Send(RoomErrorEvent{Message: "Waiting for more players"})
		return
	}

	game, err := c.factory(room.Variant, room.Names())
	if err != nil {
		c.logger.Error("cannot create match game", "code", code, "variant", room.Variant, "error", err)
		room.Host.Session.Send(RoomErrorEvent{Message: "Could not start the game"})
		return
	}

	id := MatchID(uuid.NewString())
	match := NewOnlineMatch(id, code, room.Variant, game, members, c.config.TickRate, time.Now().UnixNano())
	c.matches[id] = match

	delete(c.rooms, code)
	for i, m := range members {
		sid := m.Session.ID()
		delete(c.sessionRoom, sid)
		c.sessionMatch[sid] = id
		m.Session.Send(MatchStartedEvent{MatchID: id, Code: code, Seat: i + 1, Match: match})
	}

	c.logger.Info("match started", "match", id, "code", code, "players", len(members))
	if c.onStart != nil {
		c.onStart()
	}

	go match.Run(c.handleGameFinished, func(res MatchResult) {
		c.handleMatchEnded(match, res)
	})
}

// handleGameFinished runs on the match goroutine.
func (c *Coordinator) handleGameFinished(res GameResult) {
	c.logger.Info("game finished", "match", res.MatchID, "winner", res.Outcome.Winner, "turns", res.Outcome.Turns)

	if c.saver != nil {
		if err := c.saver.SaveResult(res); err != nil {
			c.logger.Warn("cannot save game result", "match", res.MatchID, "error", err)
		}
	}

	c.mu.RLock()
	match := c.matches[res.MatchID]
	c.mu.RUnlock()
	if match == nil {
		return
	}
	for _, m := range match.members {
		m.Session.Send(GameFinishedEvent{MatchID: res.MatchID, Outcome: res.Outcome})
	}
}

func (c *Coordinator) handleMatchEnded(match *OnlineMatch, res MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.matches[match.id]; !exists {
		return
	}
	delete(c.matches, match.id)

	for _, m := range match.members {
		delete(c.sessionMatch, m.Session.ID())
		m.Session.Send(MatchEndedEvent{MatchID: match.id, Reason: res.Reason, Who: res.Who})
	}

	c.logger.Info("match ended", "match", match.id, "reason", res.Reason.String(), "games", res.Games)
	if c.onEnd != nil {
		c.onEnd()
	}
}

// handleLeave takes a session out of its room or match.
func (c *Coordinator) handleLeave(id SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, ok := c.sessionRoom[id]; ok {
		delete(c.sessionRoom, id)
		if room, exists := c.rooms[code]; exists {
			c.leaveRoom(room, id)
		}
	}

	if matchID, ok := c.sessionMatch[id]; ok {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerLeft(id)
		}
	}
}

// leaveRoom removes a member. A leaving host closes the room.
// Must be called with the lock held.
func (c *Coordinator) leaveRoom(room *Room, id SessionID) {
	if room.Host.Session.ID() == id {
		c.closeRoom(room, EndReasonHostLeft)
		return
	}

	for i, g := range room.Guests {
		if g.Session.ID() == id {
			room.Guests = append(room.Guests[:i], room.Guests[i+1:]...)
			break
		}
	}
	c.broadcastRoom(room)
}

// closeRoom notifies the guests and forgets the room.
// Must be called with the lock held.
func (c *Coordinator) closeRoom(room *Room, reason EndReason) {
	for _, m := range room.Members() {
		delete(c.sessionRoom, m.Session.ID())
		if m.Session.ID() != room.Host.Session.ID() || reason == EndReasonExpired {
			m.Session.Send(RoomClosedEvent{Code: room.Code, Reason: reason})
		}
	}
	delete(c.rooms, room.Code)
	c.logger.Info("room closed", "code", room.Code, "reason", reason.String())
}

func (c *Coordinator) handlePlayerInput(msg PlayerInputMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if exists {
		match.SendInput(msg.Seat, msg.Input)
	}
}

// busy reports whether a session already sits in a room or match.
// Must be called with the lock held.
func (c *Coordinator) busy(id SessionID) bool {
	_, inRoom := c.sessionRoom[id]
	_, inMatch := c.sessionMatch[id]
	return inRoom || inMatch
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredRooms(time.Now())
		case <-c.done:
			return
		}
	}
}

// cleanupExpiredRooms closes rooms nobody joined within the timeout.
func (c *Coordinator) cleanupExpiredRooms(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, room := range c.rooms {
		if len(room.Guests) == 0 && now.Sub(room.CreatedAt) > c.config.RoomTimeout {
			c.closeRoom(room, EndReasonExpired)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.rooms[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character code from the base32 alphabet.
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// Room returns an open room by code.
func (c *Coordinator) Room(code string) (*Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[strings.ToUpper(code)]
	return r, ok
}

// Match returns a running match by ID.
func (c *Coordinator) Match(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// RoomCount returns the number of open rooms.
func (c *Coordinator) RoomCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rooms)
}

// Online returns the names of the players connected to the server.
func (c *Coordinator) Online() []string {
	return c.sessions.Online()
}

// MatchCount returns the number of running matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
