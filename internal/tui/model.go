// Package tui provides the Bubble Tea draw screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/bingo/internal/detect"
	"github.com/verte-zerg/bingo/internal/engine"
	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/names"
	"github.com/verte-zerg/bingo/internal/partition"
	"github.com/verte-zerg/bingo/internal/stats"
)

// Finisher closes a session.
type Finisher interface {
	FinishSession(ctx context.Context, id string) error
}

// Model implements the Bubble Tea draw screen for one session.
type Model struct {
	game        *engine.Game
	finisher    Finisher
	sessionName string
	names       names.Map
	labels      []string
	conditions  []string
	log         *zap.SugaredLogger

	width  int
	height int

	announcements []string
	status        string
	finished      bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	numberStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	drawnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	lastStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	winnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	labelColStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

const maxAnnouncements = 4

// NewModel constructs the draw screen for a running game.
func NewModel(game *engine.Game, finisher Finisher, sessionName string, nameMap names.Map, log *zap.SugaredLogger) *Model {
	if nameMap == nil {
		nameMap = names.Map{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cats := game.Categories()
	return &Model{
		game:        game,
		finisher:    finisher,
		sessionName: sessionName,
		names:       nameMap,
		labels:      partition.DisplayLabels(cats),
		conditions:  stats.ConditionNames(cats),
		log:         log,
	}
}

// Finished reports whether the session was finished from the screen.
func (m *Model) Finished() bool {
	return m.finished
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
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeySpace, tea.KeyEnter:
			m.handleDraw()
			return m, nil
		case tea.KeyRunes:
			switch string(msg.Runes) {
			case "q":
				return m, tea.Quit
			case "f":
				if m.handleFinish() {
					return m, tea.Quit
				}
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		titleStyle.Render(m.sessionName),
		m.renderLastNumber(),
		m.renderBoard(),
		m.renderConditions(),
	}
	if len(m.announcements) > 0 {
		sections = append(sections, winnerStyle.Render(strings.Join(m.announcements, "\n")))
	}
	content := strings.Join(sections, "\n\n")
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) handleDraw() {
	res, err := m.game.Step(context.Background())
	if err != nil {
		if model.IsKind(err, model.KindExhausted) {
			m.status = "All numbers drawn. Press f to finish the session."
			return
		}
		m.log.Errorw("draw.failed", "session", m.game.SessionID(), "error", err)
		m.status = errorStyle.Render(err.Error())
		return
	}
	m.status = ""
	if res.PersistErr != nil {
		m.status = errorStyle.Render(fmt.Sprintf("%d draws not saved, retrying on next draw: %v", m.game.Unsaved(), res.PersistErr))
	}
	for _, cond := range res.Achieved {
		m.announce(m.describeWin(cond, res.Records))
	}
}

func (m *Model) handleFinish() bool {
	if err := m.game.Flush(context.Background()); err != nil {
		m.status = errorStyle.Render("Draws not saved, finish again to retry: " + err.Error())
		return false
	}
	if m.finisher == nil {
		m.finished = true
		return true
	}
	if err := m.finisher.FinishSession(context.Background(), m.game.SessionID()); err != nil {
		if !errors.Is(err, model.ErrSessionNotFound) {
			m.log.Errorw("session.finish_failed", "session", m.game.SessionID(), "error", err)
			m.status = errorStyle.Render("Finish failed: " + err.Error())
			return false
		}
	}
	m.finished = true
	return true
}

func (m *Model) announce(line string) {
	m.announcements = append(m.announcements, line)
	if len(m.announcements) > maxAnnouncements {
		m.announcements = m.announcements[len(m.announcements)-maxAnnouncements:]
	}
}

func (m *Model) describeWin(cond int, records []model.WinRecord) string {
	idx := cond
	if cond == detect.FullCard {
		idx = len(records) - 1
	}
	rec := records[idx]
	line := fmt.Sprintf("%s: %s wins at draw %d", m.conditions[idx], stats.CardLabel(rec.Winner()), rec.DrawIndex)
	if rec.HadTie {
		line += fmt.Sprintf(" (tie broken among cards %s)", joinInts(rec.TiedCardIDs))
	}
	return line
}

func (m *Model) renderLastNumber() string {
	last, ok := m.game.State().Last()
	if !ok {
		return footerStyle.Render("Press space to draw the first number")
	}
	label := ""
	if i, ok := partition.IndexOf(m.game.Categories(), last); ok {
		label = m.labels[i] + " "
	}
	return label + numberStyle.Render(m.names.Format(last))
}

func (m *Model) renderBoard() string {
	state := m.game.State()
	last, _ := state.Last()
	labelWidth := 0
	for _, l := range m.labels {
		if w := lipgloss.Width(l); w > labelWidth {
			labelWidth = w
		}
	}
	boardWidth := 0
	if m.width > 0 {
		boardWidth = int(float64(m.width)*0.80) - labelWidth - 1
	}
	lines := make([]string, 0, len(m.labels))
	for i, cat := range m.game.Categories() {
		row := wrapCells(buildBoardRow(cat, state, last), boardWidth)
		label := labelColStyle.Width(labelWidth + 1).Render(m.labels[i])
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, row))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderConditions() string {
	records := m.game.Records()
	lines := make([]string, 0, len(records))
	for i, rec := range records {
		text := "pending"
		if rec.Achieved() {
			text = fmt.Sprintf("%s at draw %d", stats.CardLabel(rec.Winner()), rec.DrawIndex)
			if rec.HadTie {
				text += fmt.Sprintf(" (tie: %s)", joinInts(rec.TiedCardIDs))
			}
			text = winnerStyle.Render(text)
		} else {
			text = pendingStyle.Render(text)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", m.conditions[i], text))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	state := m.game.State()
	segments := []string{
		fmt.Sprintf("Drawn %d/%d", state.Count(), state.Universe()),
		fmt.Sprintf("Remaining %d", state.Remaining()),
		"space draw · f finish · q quit",
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.status != "" {
		footer += "  " + m.status
	}
	return footer
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
