package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/registry"
	"github.com/vovakirdan/tui-ladders/internal/storage"
)

// GameOption configures a GameModel.
type GameOption func(*GameModel)

// WithLogger logs match results and storage failures.
func WithLogger(l *log.Logger) GameOption {
	return func(m *GameModel) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithFinishHook is called once per finished game, after the match is saved.
func WithFinishHook(fn func(matchID string, o core.Outcome)) GameOption {
	return func(m *GameModel) {
		m.onFinish = fn
	}
}

// WithRenderer draws with a session-specific lipgloss renderer.
func WithRenderer(r *lipgloss.Renderer) GameOption {
	return func(m *GameModel) {
		m.styles = NewScreenStyles(r)
	}
}

// GameModel is the Bubble Tea model running one game with back-to-menu
// support. It saves every finished match to the store.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	help       help.Model
	styles     *ScreenStyles
	logger     *log.Logger
	onFinish   func(matchID string, o core.Outcome)

	started    time.Time
	saved      bool // Whether the current game over has been recorded
	lastMatch  string
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a new game model.
func NewGameModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ...GameOption) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}

	m := GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-1, 1)),
		store:      store,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		help:       help.New(),
		logger:     log.New(io.Discard),
		started:    time.Now(),
	}
	m.help.Width = cfg.ScreenW
	for _, opt := range opts {
		opt(&m)
	}
	if m.styles == nil {
		m.styles = NewScreenStyles(nil)
	}
	m.help.Styles.ShortKey = m.styles.Renderer().NewStyle().Foreground(lipgloss.Color("245"))
	m.help.Styles.ShortDesc = m.styles.Renderer().NewStyle().Foreground(lipgloss.Color("241"))

	return m
}

// Init initializes the model and starts the game.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMapper.Game.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keyMapper.Game.Screenshot):
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	// Back to menu only when nothing is in flight
	if action == core.ActionBack {
		if m.gameState.GameOver || m.gameState.Paused {
			m.backToMenu = true
			return m, tea.Quit
		}
		return m, nil
	}

	if action != core.ActionNone {
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	wasOver := m.gameState.GameOver

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	switch {
	case m.gameState.GameOver && !m.saved:
		m.lastMatch = m.finish()
		m.saved = true
	case wasOver && !m.gameState.GameOver:
		m.started = time.Now()
		m.saved = false
	}

	return m, tickCmd(m.config.TickRate)
}

// finish records the outcome of the game that just ended.
// Saving is best effort; the game continues regardless.
func (m GameModel) finish() string {
	o := m.game.Outcome()
	matchID := uuid.NewString()
	duration := time.Since(m.started)

	m.logger.Info("match finished",
		"match", matchID,
		"variant", o.Variant,
		"winner", o.Winner,
		"turns", o.Turns,
		"duration", duration.Round(time.Second),
	)

	if m.store != nil {
		_, err := m.store.SaveMatch(storage.Match{
			MatchID:    matchID,
			Variant:    o.Variant,
			Players:    o.Players,
			Winner:     o.Winner,
			WinnerSeat: o.WinnerSeat,
			Turns:      o.Turns,
			Rolls:      o.Rolls,
			Shortcuts:  o.Shortcuts,
			Setbacks:   o.Setbacks,
			Duration:   int(duration.Seconds()),
		})
		if err != nil {
			m.logger.Warn("could not save match", "match", matchID, "error", err)
		}
	}

	if m.onFinish != nil {
		m.onFinish(matchID, o)
	}
	return matchID
}

// saveScreenshot saves the current board to a text file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		m.logger.Warn("could not save screenshot", "error", err)
		return
	}
	dir := filepath.Join(home, ".ladders", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("could not save screenshot", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("could not save screenshot", "path", path, "error", err)
	}
}

// View renders the board with the help bar underneath.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	helpView := m.help.View(m.keyMapper.Game)
	helpLines := strings.Count(helpView, "\n") + 1

	h := max(m.config.ScreenH-helpLines, 1)
	if m.screen.Width() != m.config.ScreenW || m.screen.Height() != h {
		m.screen.Resize(m.config.ScreenW, h)
	}

	m.game.Render(m.screen)
	return m.styles.RenderScreen(m.screen) + "\n" + helpView
}

// State returns the last game state seen by the model.
func (m GameModel) State() core.GameState {
	return m.gameState
}

// LastMatchID returns the ID of the most recently finished match.
func (m GameModel) LastMatchID() string {
	return m.lastMatch
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a local Bubble Tea program for the given game.
// Returns true when the player asked to go back to the menu.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ...GameOption) (backToMenu bool, err error) {
	model := NewGameModel(game, store, cfg, opts...)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	if gm, ok := final.(GameModel); ok {
		return gm.BackToMenu(), nil
	}
	return false, nil
}
