package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/registry"
	"github.com/vovakirdan/tui-ladders/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the win count sidebar
	sidebarWidth       = 24  // Width of the win count sidebar
	maxMatches         = 100 // Max matches to load
	maxLeaders         = 10  // Names shown in the sidebar
)

// HistoryKeyMap defines the key bindings for the match history.
type HistoryKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Next key.Binding
	Prev key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev},
		{k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next board"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev board"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// historyTab is one filter of the history view. An empty variant shows all.
type historyTab struct {
	variant string
	title   string
}

// HistoryModel is the Bubble Tea model for the match history screen.
type HistoryModel struct {
	tabs        []historyTab
	tabCursor   int
	store       *storage.Store
	matches     []storage.Match
	leaders     []storage.PlayerRecord
	stats       storage.VariantStats // Totals of the current tab
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	lg          *lipgloss.Renderer
	width       int
	height      int
	quitting    bool
	goingBack   bool // True if user pressed back (not quit)
	showSidebar bool
}

// NewHistoryModel creates a new history model.
// A nil renderer means the process's standard output.
func NewHistoryModel(store *storage.Store, width, height int, r *lipgloss.Renderer) HistoryModel {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	tabs := []historyTab{{title: "All boards"}}
	for _, info := range registry.List() {
		tabs = append(tabs, historyTab{variant: info.ID, title: info.Title})
	}

	h := help.New()
	h.Width = width

	m := HistoryModel{
		tabs:        tabs,
		store:       store,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		lg:          r,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	m.table = m.createTable()
	m.load()

	return m
}

// createTable creates a new table sized for the window.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 13},
		{Title: "Winner", Width: 12},
		{Title: "Players", Width: 20},
		{Title: "Turns", Width: 6},
		{Title: "Snakes", Width: 6},
		{Title: "Ladders", Width: 7},
	}

	// Give the players column whatever space is left
	tableWidth := m.width - 6
	if m.showSidebar {
		tableWidth -= sidebarWidth + 4
	}
	fixed := 0
	for i, c := range columns {
		if i != 2 {
			fixed += c.Width + 2
		}
	}
	columns[2].Width = core.Clamp(tableWidth-fixed-2, 10, 40)

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads the matches and totals of the current tab and the win counts.
func (m *HistoryModel) load() {
	m.matches, m.leaders, m.loadErr = nil, nil, nil
	m.stats = storage.VariantStats{}
	if m.store != nil {
		variant := m.tabs[m.tabCursor].variant
		m.matches, m.loadErr = m.store.RecentMatches(variant, maxMatches)
		if m.loadErr == nil {
			m.leaders, m.loadErr = m.store.WinCounts()
		}
		if m.loadErr == nil {
			m.stats, m.loadErr = m.loadStats(variant)
		}
	}
	m.updateTableRows()
}

// loadStats sums the statistics of one variant, or of all of them.
func (m *HistoryModel) loadStats(variant string) (storage.VariantStats, error) {
	if variant != "" {
		vs, err := m.store.VariantStatsFor(variant)
		if err != nil {
			return storage.VariantStats{}, err
		}
		return *vs, nil
	}

	all, err := m.store.AllVariantStats()
	if err != nil {
		return storage.VariantStats{}, err
	}
	list := make([]*storage.VariantStats, 0, len(all))
	for _, vs := range all {
		list = append(list, vs)
	}
	return storage.CombineStats(list...), nil
}

// statsLine summarizes the current tab.
func (m HistoryModel) statsLine() string {
	st := m.stats
	if st.Games == 0 {
		return ""
	}
	return fmt.Sprintf("%d games, %.1f turns on average, %d ladders climbed, %d snakes hit",
		st.Games, st.AvgTurns, st.Shortcuts, st.Setbacks)
}

// updateTableRows updates the table with the loaded matches.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.matches))
	for i, mt := range m.matches {
		rows[i] = table.Row{
			mt.CreatedAt.Local().Format("Jan 02 15:04"),
			mt.Winner,
			strings.Join(mt.Players, ", "),
			strconv.Itoa(mt.Turns),
			strconv.Itoa(mt.Setbacks),
			strconv.Itoa(mt.Shortcuts),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			m.tabCursor = (m.tabCursor + 1) % len(m.tabs)
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			m.tabCursor = (m.tabCursor - 1 + len(m.tabs)) % len(m.tabs)
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table for scrolling
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := m.lg.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	b.WriteString(centerText(titleStyle.Render("MATCH HISTORY"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n")
	statsStyle := m.lg.NewStyle().Foreground(lipgloss.Color("245"))
	b.WriteString(centerText(statsStyle.Render(m.statsLine()), m.width))
	b.WriteString("\n")

	boxStyle := m.lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	content := boxStyle.Render(m.renderTableContent())
	if m.showSidebar {
		sidebar := boxStyle.Width(sidebarWidth).Render(m.renderLeaders())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", sidebar)
	}
	b.WriteString(content)

	b.WriteString("\n")
	helpStyle := m.lg.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTabs renders the board filters, or only the current one when narrow.
func (m HistoryModel) renderTabs() string {
	tabStyle := m.lg.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeStyle := m.lg.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.tabCursor {
			tabs[i] = activeStyle.Render(t.title)
		} else {
			tabs[i] = tabStyle.Render(t.title)
		}
	}

	line := strings.Join(tabs, " ")
	if lipgloss.Width(line) > m.width-4 {
		line = fmt.Sprintf("< %s >", m.tabs[m.tabCursor].title)
	}
	return line
}

// renderTableContent renders the table or an empty message.
func (m HistoryModel) renderTableContent() string {
	emptyStyle := m.lg.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.store == nil:
		return emptyStyle.Render("Match history is unavailable.")
	case m.loadErr != nil:
		return emptyStyle.Render("Could not load matches:\n" + m.loadErr.Error())
	case len(m.matches) == 0:
		return emptyStyle.Render("No matches recorded yet.\nFinish a game to see it here!")
	}
	return m.table.View()
}

// renderLeaders renders the win counts per player name.
func (m HistoryModel) renderLeaders() string {
	var b strings.Builder
	b.WriteString("Wins\n")
	b.WriteString(strings.Repeat("-", sidebarWidth-4))
	b.WriteString("\n")

	if len(m.leaders) == 0 {
		b.WriteString("none yet")
		return b.String()
	}

	for i, r := range m.leaders {
		if i == maxLeaders {
			break
		}
		name := r.Name
		if maxLen := sidebarWidth - 12; len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		fmt.Fprintf(&b, "%-*s %3d/%-3d\n", sidebarWidth-12, name, r.Wins, r.Games)
	}
	return strings.TrimRight(b.String(), "\n")
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the match history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewHistoryModel(store, width, height, nil),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("tui: history: %w", err)
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
