// Package historyui provides the Bubble Tea session history interface.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/bingo/internal/engine"
	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/names"
	"github.com/verte-zerg/bingo/internal/stats"
)

const (
	tabSessions = iota
	tabDetails
)

const timeLayout = "2006-01-02 15:04"

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// SessionSource reads persisted sessions.
type SessionSource interface {
	ListSessions(ctx context.Context, filter model.SessionFilter) ([]model.Session, error)
	LoadCategories(ctx context.Context, sessionID string) ([]model.Category, error)
	LoadCards(ctx context.Context, sessionID string) ([]model.Card, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	source SessionSource
	names  names.Map
	filter model.SessionFilter

	sessions []model.Session
	errMsg   string

	tabs      []string
	activeTab int
	table     table.Model
	details   viewport.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
}

// NewModel constructs a history UI model.
func NewModel(source SessionSource, nameMap names.Map, filter model.SessionFilter) *Model {
	if nameMap == nil {
		nameMap = names.Map{}
	}
	m := &Model{
		source: source,
		names:  nameMap,
		filter: filter,
		tabs:   []string{"Sessions", "Details"},
	}
	m.filterInput = newFilterInput("Name: ")
	m.table = buildSessionTable(nil, 0, 1)
	m.details = viewport.New(0, 0)
	m.details.SetContent("Select a session and press enter.")
	m.refreshSessions()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabSessions {
				m.openSelected()
			}
			return m, nil
		case "esc":
			if m.activeTab == tabDetails {
				m.moveTab(-1)
			}
			return m, nil
		default:
			if m.activeTab == tabSessions {
				var cmd tea.Cmd
				m.table, cmd = m.table.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.details, cmd = m.details.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitBlock(m.renderHeader(), m.width, headerHeight)
	body := fitBlock(m.renderBody(), m.width, bodyHeight)
	footer := fitBlock(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.details.Width = m.width
	m.details.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.filterInput.Prompt)
	m.filterInput.Width = max(10, m.width-promptWidth-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return fitBlock(m.renderTabs()+"\n"+m.renderFilterSummary(), m.width, 0)
}

func (m *Model) renderFilterSummary() string {
	name := m.filter.Name
	if name == "" {
		name = "any"
	}
	status := string(m.filter.Status)
	if status == "" {
		status = "any"
	}
	summary := fmt.Sprintf("Filter: name=%s  status=%s  sessions=%d", name, status, len(m.sessions))
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("enter: apply  esc: cancel  ctrl+c: quit")
	}
	help := headerStyle.Render("Nav: left/right  Open: enter  Scroll: up/down/pgup/pgdn  Filter: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return "Filter sessions by name (enter to apply, esc to cancel)\n" + m.filterInput.View()
	}
	if m.activeTab == tabDetails {
		return m.details.View()
	}
	if len(m.sessions) == 0 {
		return "No sessions found."
	}
	return tableMutedStyle.Render(m.table.View())
}

func (m *Model) refreshSessions() {
	sessions, err := m.source.ListSessions(context.Background(), m.filter)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.sessions = sessions
	m.table.SetRows(sessionRows(sessions))
	m.table.GotoTop()
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterInput.SetValue(m.filter.Name)
	return m, m.filterInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filter.Name = strings.TrimSpace(m.filterInput.Value())
		m.filterMode = false
		m.filterInput.Blur()
		m.refreshSessions()
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) openSelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sessions) {
		return
	}
	content, err := m.renderDetails(m.sessions[idx])
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.details.SetContent(content)
	m.details.GotoTop()
	m.activeTab = tabDetails
	m.table.Blur()
}

// renderDetails replays the session's draws over its stored cards and
// renders the resulting winners.
func (m *Model) renderDetails(sess model.Session) (string, error) {
	ctx := context.Background()
	cats, err := m.source.LoadCategories(ctx, sess.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load categories: %w", err)
	}
	cards, err := m.source.LoadCards(ctx, sess.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load cards: %w", err)
	}
	records, err := engine.ReplayRecords(sess.Seed, cats, cards, sess.DrawnNumbers)
	if err != nil {
		return "", fmt.Errorf("failed to replay session: %w", err)
	}
	summary := stats.Summarize(cats, records)

	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, summary); err != nil {
		return "", err
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	sections := []string{
		cardValueStyle.Render(sess.Name),
		renderMetricCards(sess, len(cards), summary, width),
		strings.TrimRight(buf.String(), "\n"),
		headerStyle.Render("Drawn numbers"),
		m.renderDrawn(sess.DrawnNumbers),
	}
	return strings.Join(sections, "\n\n"), nil
}

func (m *Model) renderDrawn(drawn []int) string {
	if len(drawn) == 0 {
		return "None yet."
	}
	lines := make([]string, len(drawn))
	for i, n := range drawn {
		lines[i] = fmt.Sprintf("%3d. %s", i+1, m.names.Format(n))
	}
	return strings.Join(lines, "\n")
}

func renderMetricCards(sess model.Session, cardCount int, summary stats.Summary, width int) string {
	cards := []string{
		metricCard("Status", string(sess.Status)),
		metricCard("Cards", strconv.Itoa(cardCount)),
		metricCard("Drawn", strconv.Itoa(len(sess.DrawnNumbers))),
		metricCard("Prizes", fmt.Sprintf("%d/%d", summary.Awarded, summary.TotalPrizes)),
		metricCard("Ties", strconv.Itoa(summary.Ties)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Status", Width: 9},
		{Title: "Drawn", Width: 6},
		{Title: "Created", Width: 17},
		{Title: "Finished", Width: 17},
	}
}

func sessionRows(sessions []model.Session) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		finished := "-"
		if s.FinishedAt != nil {
			finished = s.FinishedAt.Local().Format(timeLayout)
		}
		rows = append(rows, table.Row{
			truncateLine(s.Name, 24),
			string(s.Status),
			strconv.Itoa(len(s.DrawnNumbers)),
			s.CreatedAt.Local().Format(timeLayout),
			finished,
		})
	}
	return rows
}

func buildSessionTable(sessions []model.Session, width, height int) table.Model {
	t := table.New(
		table.WithColumns(sessionColumns()),
		table.WithRows(sessionRows(sessions)),
		table.WithHeight(max(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(sessionTableStyles())
	return t
}

func sessionTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// fitBlock pads every line of s to width. A positive height also clamps or
// fills the block to exactly that many lines.
func fitBlock(s string, width, height int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + strings.Repeat(" ", gap)
		}
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
