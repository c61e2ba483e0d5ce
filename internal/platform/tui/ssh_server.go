package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/metrics"
	"github.com/vovakirdan/tui-ladders/internal/multiplayer"
	"github.com/vovakirdan/tui-ladders/internal/registry"
	"github.com/vovakirdan/tui-ladders/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.ladders/host_key.
	HostKeyPath string

	// DBPath is the path to the match history database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// MetricsAddress serves Prometheus metrics when not empty (e.g., ":9090").
	MetricsAddress string

	// ConfigPath and Speed are passed to every game created by a session.
	ConfigPath string
	Speed      string

	// TickRate is the simulation rate of every session.
	TickRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.ladders/history.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
	}
}

// SSHServer wraps a Wish SSH server. Each session plays its own hotseat
// game or joins an online room shared with other sessions.
type SSHServer struct {
	config      SSHServerConfig
	server      *ssh.Server
	store       *storage.Store
	metrics     *metrics.Metrics
	logger      *log.Logger
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ladders-ssh",
	})

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open match history", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		metrics:  metrics.New("ladders"),
		logger:   logger,
		sessions: multiplayer.NewSessionRegistry(),
	}

	coordCfg := multiplayer.DefaultCoordinatorConfig()
	if cfg.TickRate > 0 {
		coordCfg.TickRate = cfg.TickRate
	}
	srv.coordinator = multiplayer.NewCoordinator(coordCfg, srv.createOnlineGame, srv.sessions,
		multiplayer.WithLogger(logger.WithPrefix("ladders-rooms")),
		multiplayer.WithResultSaver(multiplayer.ResultSaverFunc(srv.saveOnlineResult)),
		multiplayer.WithMatchHooks(srv.metrics.MatchStarted, srv.metrics.MatchEnded),
	)

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".ladders", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		wish.Fatalln(sess, "ladders needs an interactive terminal, try ssh -t")
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	handle := multiplayer.NewChannelSession(multiplayer.SessionID(sess.User()+"-"+uuid.NewString()), 64)
	s.sessions.Register(handle, sess.User())
	go func() {
		<-sess.Context().Done()
		handle.Close()
		s.sessions.Unregister(handle.ID())
		if n := handle.Dropped(); n > 0 {
			s.logger.Warn("session fell behind", "user", sess.User(), "dropped_events", n)
		}
		s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: handle.ID()})
	}()

	model := NewSessionModel(s, cfg, sess.User(), bubbletea.MakeRenderer(sess), handle)
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events and tracks active sessions.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		s.metrics.SessionStarted()
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)

		next(sess)

		s.metrics.SessionEnded()
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// createGame builds a game for a session with the server's options.
func (s *SSHServer) createGame(variant, username string) (registry.Game, error) {
	return registry.Create(variant, registry.Options{
		ConfigPath:  s.config.ConfigPath,
		Speed:       s.config.Speed,
		PlayerNames: []string{username},
		Logger:      s.logger.With("user", username),
		OnEvent:     s.metrics.Observer(variant),
	})
}

// createOnlineGame builds the shared game of an online match.
func (s *SSHServer) createOnlineGame(variant string, players []string) (multiplayer.OnlineGame, error) {
	game, err := registry.Create(variant, registry.Options{
		ConfigPath:  s.config.ConfigPath,
		Speed:       s.config.Speed,
		PlayerNames: players,
		Logger:      s.logger.With("variant", variant),
		OnEvent:     s.metrics.Observer(variant),
	})
	if err != nil {
		return nil, err
	}

	og, ok := game.(multiplayer.OnlineGame)
	if !ok {
		return nil, fmt.Errorf("tui: %q cannot be played online", variant)
	}
	return og, nil
}

// saveOnlineResult records a game won in an online match.
func (s *SSHServer) saveOnlineResult(res multiplayer.GameResult) error {
	s.metrics.ObserveOutcome(res.Outcome)
	if s.store == nil {
		return nil
	}

	o := res.Outcome
	_, err := s.store.SaveMatch(storage.Match{
		Variant:    o.Variant,
		Players:    o.Players,
		Winner:     o.Winner,
		WinnerSeat: o.WinnerSeat,
		Turns:      o.Turns,
		Rolls:      o.Rolls,
		Shortcuts:  o.Shortcuts,
		Setbacks:   o.Setbacks,
		Duration:   int(res.Duration.Seconds()),
	})
	return err
}

// ListenAndServe starts the SSH server and blocks until ctx is cancelled.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	s.coordinator.Start()

	errCh := make(chan error, 2)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.config.MetricsAddress != "" {
		s.logger.Info("serving metrics", "address", s.config.MetricsAddress)
		go func() {
			if err := s.metrics.Serve(ctx, s.config.MetricsAddress); err != nil {
				errCh <- fmt.Errorf("metrics: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		s.logger.Error("server error", "error", runErr)
	}

	s.logger.Info("shutting down...")
	return errors.Join(runErr, s.Shutdown())
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.coordinator.Stop()
	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionScreen is the view a session is showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenHistory
	screenOnline
)

// SessionModel manages the full session flow: menu -> game, history or
// online room -> menu. This is the top-level model used for SSH sessions.
type SessionModel struct {
	server   *SSHServer
	handle   *multiplayer.ChannelSession
	config   core.RuntimeConfig
	username string
	lg       *lipgloss.Renderer
	screen   sessionScreen
	menu     MenuModel
	game     *GameModel
	history  *HistoryModel
	online   *OnlineModel
	notice   string // Shown above the menu after a failed game start
	quitting bool
}

// NewSessionModel creates a new session model. The handle receives the
// coordinator's events for online rooms.
func NewSessionModel(server *SSHServer, cfg core.RuntimeConfig, username string, r *lipgloss.Renderer, handle *multiplayer.ChannelSession) SessionModel {
	return SessionModel{
		server:   server,
		handle:   handle,
		config:   cfg,
		username: username,
		lg:       r,
		menu:     NewMenuModel(cfg, r).WithOnline(),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(m.menu.Init(), m.waitForEvent())
}

// waitForEvent delivers the next coordinator event as a message.
// Exactly one wait is pending at any time.
func (m SessionModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-m.handle.Events():
			return evt
		case <-m.handle.Done():
			return nil
		}
	}
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	if _, ok := msg.(multiplayer.SessionEvent); ok {
		wait := m.waitForEvent()
		if m.screen != screenOnline {
			return m, wait // Stale event from a room already left
		}
		next, cmd := m.updateOnline(msg)
		return next, tea.Batch(cmd, wait)
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenHistory:
		return m.updateHistory(msg)
	case screenOnline:
		return m.updateOnline(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
// The menu's own tea.Quit is dropped; the session decides what comes next.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsOnline():
		om := NewOnlineModel(m.server.coordinator, m.handle.ID(), m.username, m.menu.Selected().ID, m.config, m.lg)
		m.online = &om
		m.notice = ""
		m.screen = screenOnline
		return m, m.online.Init()

	case m.menu.WantsHistory():
		h := NewHistoryModel(m.server.store, m.config.ScreenW, m.config.ScreenH, m.lg)
		m.history = &h
		m.screen = screenHistory
		return m, m.history.Init()

	case m.menu.Selected() != nil:
		variant := m.menu.Selected().ID
		game, err := m.server.createGame(variant, m.username)
		if err != nil {
			m.server.logger.Error("cannot create game", "variant", variant, "error", err)
			m.notice = "Could not start that board, see server log."
			m.menu = NewMenuModel(m.config, m.lg).WithOnline()
			return m, nil
		}

		m.config.Seed = time.Now().UnixNano()
		gm := NewGameModel(game, m.server.store, m.config,
			WithRenderer(m.lg),
			WithLogger(m.server.logger.With("user", m.username)),
			WithFinishHook(func(_ string, o core.Outcome) {
				m.server.metrics.ObserveOutcome(o)
			}),
		)
		m.game = &gm
		m.notice = ""
		m.screen = screenGame
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	switch {
	case m.game.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.game.BackToMenu():
		m.backToMenu()
		return m, m.menu.Init()
	}

	return m, cmd
}

// updateHistory handles updates when viewing the match history.
func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if hm, ok := newModel.(HistoryModel); ok {
		m.history = &hm
	}

	switch {
	case m.history.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.history.IsGoingBack():
		m.backToMenu()
		return m, m.menu.Init()
	}

	return m, cmd
}

// updateOnline handles updates in the online room flow.
func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.online.Update(msg)
	if om, ok := newModel.(OnlineModel); ok {
		m.online = &om
	}

	switch {
	case m.online.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.online.BackToMenu():
		m.backToMenu()
		return m, m.menu.Init()
	}

	return m, cmd
}

// backToMenu drops the current screen and shows a fresh menu.
func (m *SessionModel) backToMenu() {
	m.game = nil
	m.history = nil
	m.online = nil
	m.screen = screenMenu
	m.menu = NewMenuModel(m.config, m.lg).WithOnline()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenHistory:
		return m.history.View()
	case screenOnline:
		return m.online.View()
	}

	if m.notice != "" {
		warn := m.lg.NewStyle().Foreground(lipgloss.Color("9"))
		return warn.Render(m.notice) + "\n" + m.menu.View()
	}
	return m.menu.View()
}
