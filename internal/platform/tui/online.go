package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/multiplayer"
)

// OnlineState is a step of the online room flow.
type OnlineState int

const (
	OnlineStateChooseMode OnlineState = iota // Host or join
	OnlineStateEnterCode                     // Typing a join code
	OnlineStateJoining                       // Join sent, waiting for the room
	OnlineStateInRoom                        // Seated, waiting for the host to start
	OnlineStateInMatch                       // Playing
	OnlineStateEnded                         // Room or match closed
)

const joinCodeLen = 6

// OnlineModel lets a session host or join a room and then play the shared
// match. Coordinator events reach it through the session model.
type OnlineModel struct {
	state       OnlineState
	coordinator *multiplayer.Coordinator
	sessionID   multiplayer.SessionID
	name        string
	variant     string
	config      core.RuntimeConfig
	keyMapper   *KeyMapper
	styles      *ScreenStyles
	screen      *core.Screen
	inputFrame  core.InputFrame

	code      string
	codeInput string
	players   []string
	seat      int
	notice    string // Last error or end message

	match *multiplayer.OnlineMatch

	backToMenu bool
	quitting   bool
}

// NewOnlineModel creates the room flow for a board variant.
func NewOnlineModel(
	coordinator *multiplayer.Coordinator,
	sessionID multiplayer.SessionID,
	name, variant string,
	cfg core.RuntimeConfig,
	r *lipgloss.Renderer,
) OnlineModel {
	return OnlineModel{
		coordinator: coordinator,
		sessionID:   sessionID,
		name:        name,
		variant:     variant,
		config:      cfg,
		keyMapper:   NewKeyMapper(),
		styles:      NewScreenStyles(r),
		screen:      core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		inputFrame:  core.NewInputFrame(),
	}
}

// Init initializes the model.
func (m OnlineModel) Init() tea.Cmd {
	return nil
}

// Update handles keys, ticks and coordinator events.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil

	case TickMsg:
		if m.state != OnlineStateInMatch {
			return m, nil // Ends the tick chain
		}
		if !m.inputFrame.Empty() {
			m.coordinator.Send(multiplayer.PlayerInputMsg{
				MatchID: m.match.ID(),
				Seat:    m.seat,
				Input:   m.inputFrame,
			})
			m.inputFrame = core.NewInputFrame()
		}
		return m, tickCmd(m.config.TickRate)

	case multiplayer.RoomCreatedEvent:
		m.code = msg.Code
		m.state = OnlineStateInRoom

	case multiplayer.RoomUpdatedEvent:
		m.code = msg.Code
		m.players = msg.Players
		m.seat = msg.Seat
		m.state = OnlineStateInRoom

	case multiplayer.RoomErrorEvent:
		m.notice = msg.Message
		if m.state == OnlineStateJoining {
			m.state = OnlineStateEnterCode
		}

	case multiplayer.RoomClosedEvent:
		m.notice = msg.Reason.String()
		m.state = OnlineStateEnded

	case multiplayer.MatchStartedEvent:
		m.match = msg.Match
		m.seat = msg.Seat
		m.notice = ""
		m.state = OnlineStateInMatch
		return m, tickCmd(m.config.TickRate)

	case multiplayer.GameFinishedEvent:
		m.notice = fmt.Sprintf("%s won in %d turns", msg.Outcome.Winner, msg.Outcome.Turns)

	case multiplayer.MatchEndedEvent:
		m.notice = msg.Reason.String()
		if msg.Who != "" && msg.Who != m.name {
			m.notice = fmt.Sprintf("%s left the game", msg.Who)
		}
		m.match = nil
		m.state = OnlineStateEnded
	}

	return m, nil
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.state {
	case OnlineStateChooseMode:
		switch msg.String() {
		case "h", "1":
			m.coordinator.Send(multiplayer.CreateRoomMsg{
				SessionID: m.sessionID,
				Name:      m.name,
				Variant:   m.variant,
			})
		case "j", "2":
			m.codeInput = ""
			m.notice = ""
			m.state = OnlineStateEnterCode
		case "esc", "b":
			m.backToMenu = true
		case "q":
			return m.quit()
		}

	case OnlineStateEnterCode:
		m.handleCodeKey(msg)

	case OnlineStateJoining, OnlineStateInRoom:
		switch {
		case msg.String() == "enter" && m.seat == 1:
			m.coordinator.Send(multiplayer.StartMatchMsg{SessionID: m.sessionID})
		case msg.String() == "esc" || msg.String() == "b":
			m.leave()
			m.backToMenu = true
		case msg.String() == "q":
			return m.quit()
		}

	case OnlineStateInMatch:
		if key.Matches(msg, m.keyMapper.Game.Back) {
			m.leave()
			m.backToMenu = true
			return m, nil
		}
		if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
			return m.quit()
		}

	case OnlineStateEnded:
		if msg.String() == "q" {
			return m.quit()
		}
		m.backToMenu = true
	}

	return m, nil
}

// handleCodeKey edits the join code and submits it on enter.
func (m *OnlineModel) handleCodeKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = OnlineStateChooseMode
		m.notice = ""
		return
	case tea.KeyEnter:
		if len(m.codeInput) == joinCodeLen {
			m.state = OnlineStateJoining
			m.notice = ""
			m.coordinator.Send(multiplayer.JoinRoomMsg{
				SessionID: m.sessionID,
				Name:      m.name,
				Code:      m.codeInput,
			})
		}
		return
	case tea.KeyBackspace:
		if m.codeInput != "" {
			m.codeInput = m.codeInput[:len(m.codeInput)-1]
		}
		return
	case tea.KeyRunes:
		for _, r := range strings.ToUpper(string(msg.Runes)) {
			if len(m.codeInput) < joinCodeLen && ((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				m.codeInput += string(r)
			}
		}
	}
}

func (m *OnlineModel) leave() {
	m.coordinator.Send(multiplayer.LeaveMsg{SessionID: m.sessionID})
	m.match = nil
}

func (m OnlineModel) quit() (tea.Model, tea.Cmd) {
	m.leave()
	m.quitting = true
	return m, tea.Quit
}

// View renders the current step.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	if m.state == OnlineStateInMatch && m.match != nil {
		return m.viewMatch()
	}

	title := m.styles.Renderer().NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	warn := m.styles.Renderer().NewStyle().Foreground(lipgloss.Color("9"))
	w := m.config.ScreenW

	var lines []string
	switch m.state {
	case OnlineStateChooseMode:
		lines = []string{
			title.Render("ONLINE ROOM"),
			"",
			"Play " + m.variant + " with other people on this server",
			"Online: " + strings.Join(m.coordinator.Online(), ", "),
			"",
			"[H] Host a room",
			"[J] Join a room",
			"",
			"Esc: Back  |  Q: Quit",
		}

	case OnlineStateEnterCode:
		code := m.codeInput
		if len(code) < joinCodeLen {
			code += "_" + strings.Repeat(" ", joinCodeLen-1-len(code))
		}
		lines = []string{
			title.Render("JOIN ROOM"),
			"",
			"Enter the room code:",
			"",
			fmt.Sprintf("[ %s ]", code),
			"",
			"Enter: Join  |  Esc: Back",
		}

	case OnlineStateJoining:
		lines = []string{
			title.Render("JOINING"),
			"",
			"Joining room " + m.codeInput + "...",
			"",
			"Esc: Cancel",
		}

	case OnlineStateInRoom:
		lines = []string{
			title.Render("ROOM " + m.code),
			"",
			"Share this code: " + m.code,
			"",
		}
		for i, name := range m.players {
			line := fmt.Sprintf("%d. %s", i+1, name)
			if i+1 == m.seat {
				line += " (you)"
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
		switch {
		case m.seat != 1:
			lines = append(lines, "Waiting for the host to start...")
		case len(m.players) < multiplayer.MinSeats:
			lines = append(lines, "Waiting for players to join...")
		default:
			lines = append(lines, "Enter: Start the game")
		}
		lines = append(lines, "", "Esc: Leave  |  Q: Quit")

	case OnlineStateEnded:
		lines = []string{
			title.Render("GAME OVER"),
			"",
			"Press any key to return to the menu",
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(centerText(warn.Render(m.notice), w))
		b.WriteString("\n\n")
	}
	for _, l := range lines {
		b.WriteString(centerText(l, w))
		b.WriteString("\n")
	}
	return b.String()
}

// viewMatch draws the shared board and this session's seat.
func (m OnlineModel) viewMatch() string {
	h := max(1, m.config.ScreenH-1)
	m.screen.Resize(m.config.ScreenW, h)
	m.match.Render(m.screen)

	seatInfo := fmt.Sprintf("Room %s - you are player %d", m.match.Code(), m.seat)
	if m.notice != "" {
		seatInfo += " - " + m.notice
	}
	return m.styles.RenderScreen(m.screen) + "\n" + seatInfo
}

// State returns the current step of the flow.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// Seat returns the 1-based seat of this session, 0 before seating.
func (m OnlineModel) Seat() int {
	return m.seat
}

// BackToMenu returns true if the user wants the menu again.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if the user wants to disconnect.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}
