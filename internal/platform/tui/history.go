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

	"github.com/vovakirdan/inputecho/internal/core"
	"github.com/vovakirdan/inputecho/internal/storage"
)

// History browser layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the session sidebar
	sidebarWidth       = 26  // Width of the session sidebar
	maxSessions        = 50  // Sessions listed
	maxRecords         = 500 // Records loaded per session
)

// HistoryKeyMap defines the key bindings for the history browser.
type HistoryKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextSession key.Binding
	PrevSession key.Binding
	Quit        key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextSession, k.PrevSession, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextSession, k.PrevSession, k.Quit},
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
		NextSession: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next session"),
		),
		PrevSession: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev session"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel browses stored sessions: a session list on the left and
// the selected session's records in a table.
type HistoryModel struct {
	store       *storage.Store
	sessions    []storage.Session
	cursor      int
	records     []storage.StoredRecord
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	showSidebar bool
	quitting    bool
	err         error
}

// NewHistoryModel loads the most recent sessions from store.
func NewHistoryModel(store *storage.Store, width, height int) (HistoryModel, error) {
	sessions, err := store.Sessions(maxSessions)
	if err != nil {
		return HistoryModel{}, err
	}

	m := HistoryModel{
		store:       store,
		sessions:    sessions,
		keys:        DefaultHistoryKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.loadRecords()
	return m, nil
}

func (m *HistoryModel) createTable() table.Model {
	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}

	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "Time", Width: 12},
		{Title: "Kind", Width: 20},
		{Title: "Event", Width: 40},
	}
	if rest := tableWidth - 5 - 12 - 20 - 8; rest > 40 {
		columns[3].Width = rest
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(core.Max(m.height-8, 3)),
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

// loadRecords reads the selected session's records into the table.
func (m *HistoryModel) loadRecords() {
	m.records = nil
	m.err = nil
	if len(m.sessions) > 0 {
		m.records, m.err = m.store.SessionRecords(m.sessions[m.cursor].ID, maxRecords)
	}
	m.updateTableRows()
}

func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.records))
	for i, r := range m.records {
		rows[i] = table.Row{
			strconv.Itoa(r.Seq),
			r.Record.Time.Format("15:04:05.000"),
			r.Record.Kind.String(),
			r.Record.String(),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextSession):
			if len(m.sessions) > 0 {
				m.cursor = (m.cursor + 1) % len(m.sessions)
				m.loadRecords()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevSession):
			if len(m.sessions) > 0 {
				m.cursor = (m.cursor - 1 + len(m.sessions)) % len(m.sessions)
				m.loadRecords()
			}
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

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the session currently shown, or nil if there is none.
func (m HistoryModel) Selected() *storage.Session {
	if len(m.sessions) == 0 {
		return nil
	}
	return &m.sessions[m.cursor]
}

// Rows returns the table rows of the selected session.
func (m HistoryModel) Rows() []table.Row {
	return m.table.Rows()
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "EVENT HISTORY"
	if s := m.Selected(); s != nil {
		title = fmt.Sprintf("EVENT HISTORY - %s (%s, %d records)", shortID(s.ID), s.Source, s.Records)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", m.renderTable()))
	} else {
		if s := m.Selected(); s != nil {
			b.WriteString(centerText(fmt.Sprintf("< %s %s >", shortID(s.ID), s.Source), m.width))
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m HistoryModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString("Sessions\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")

	for i, s := range m.sessions {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		label := truncate(shortID(s.ID)+" "+s.Source, sidebarWidth-6)
		sb.WriteString(style.Render(cursor + label))
		sb.WriteString("\n")
	}

	return sidebarStyle.Render(sb.String())
}

func (m HistoryModel) renderTable() string {
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.err != nil:
		return tableStyle.Render(emptyStyle.Render("Could not load records: " + m.err.Error()))
	case len(m.sessions) == 0:
		return tableStyle.Render(emptyStyle.Render("No sessions recorded yet.\nRun the tester to record one."))
	case len(m.records) == 0:
		return tableStyle.Render(emptyStyle.Render("This session has no records."))
	}
	return tableStyle.Render(m.table.View())
}

func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return strings.Repeat(" ", (width-len(text))/2) + text
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunHistory runs the history browser until the user quits.
func RunHistory(store *storage.Store, width, height int) error {
	model, err := NewHistoryModel(store, width, height)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
