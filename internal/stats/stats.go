// Package stats contains game summaries, simulations and reporting.
package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/partition"
)

// FullCardName is the display name of the full-card condition.
const FullCardName = "Full card"

const sessionTimeLayout = "2006-01-02 15:04"

// ConditionResult is the outcome of one win condition.
type ConditionResult struct {
	Name   string
	Record model.WinRecord
}

// Summary aggregates the win records of one game.
type Summary struct {
	Conditions []ConditionResult
	// CardsWithPrize counts distinct cards that won at least one condition.
	CardsWithPrize int
	// TotalPrizes is the number of conditions on offer: columns plus full card.
	TotalPrizes int
	Awarded     int
	Ties        int
}

// ConditionNames returns one display name per record: the category display
// labels, then the full card.
func ConditionNames(cats []model.Category) []string {
	return append(partition.DisplayLabels(cats), FullCardName)
}

// Summarize builds a Summary from records ordered columns first, full card last.
func Summarize(cats []model.Category, records []model.WinRecord) Summary {
	names := ConditionNames(cats)
	s := Summary{TotalPrizes: len(cats) + 1}
	winners := map[int]struct{}{}
	for i, rec := range records {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		s.Conditions = append(s.Conditions, ConditionResult{Name: name, Record: rec.Clone()})
		if !rec.Achieved() {
			continue
		}
		s.Awarded++
		winners[rec.Winner()] = struct{}{}
		if rec.HadTie {
			s.Ties++
		}
	}
	s.CardsWithPrize = len(winners)
	return s
}

// CardLabel formats a card id for display.
func CardLabel(id int) string {
	return "card " + strconv.Itoa(id)
}

// RenderSummary prints the winners table and totals of one game.
func RenderSummary(w io.Writer, s Summary) error {
	headers := []string{"Condition", "Winner", "Draw", "Tied cards"}
	rows := make([][]string, 0, len(s.Conditions))
	for _, c := range s.Conditions {
		if !c.Record.Achieved() {
			rows = append(rows, []string{c.Name, "-", "-", ""})
			continue
		}
		tied := ""
		if c.Record.HadTie {
			tied = joinIDs(c.Record.TiedCardIDs)
		}
		rows = append(rows, []string{
			c.Name,
			CardLabel(c.Record.Winner()),
			strconv.Itoa(c.Record.DrawIndex),
			tied,
		})
	}
	if err := writeTable(w, headers, rows, 2); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\nCards with prize: %d\n", s.CardsWithPrize); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Prizes awarded: %d/%d\n", s.Awarded, s.TotalPrizes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Ties resolved: %d\n", s.Ties); err != nil {
		return err
	}
	return nil
}

// RenderCards prints cards as text grids, one row of numbers per line.
func RenderCards(w io.Writer, cats []model.Category, cards []model.Card, format func(int) string) error {
	if format == nil {
		format = strconv.Itoa
	}
	headers := partition.DisplayLabels(cats)
	for _, card := range cards {
		rowCount := 0
		for _, col := range card.Columns {
			if len(col) > rowCount {
				rowCount = len(col)
			}
		}
		rows := make([][]string, 0, rowCount)
		for r := 0; r < rowCount; r++ {
			row := make([]string, 0, len(card.Columns))
			for _, col := range card.Columns {
				cell := ""
				if r < len(col) {
					cell = format(col[r])
				}
				row = append(row, cell)
			}
			rows = append(rows, row)
		}
		if _, err := fmt.Fprintf(w, "Card %d\n", card.ID); err != nil {
			return err
		}
		if err := writeTable(w, headers, rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessions prints one line per session, newest first as given.
func RenderSessions(w io.Writer, sessions []model.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"Name", "Status", "Drawn", "Created", "Finished", "ID"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		finished := "-"
		if s.FinishedAt != nil {
			finished = s.FinishedAt.Local().Format(sessionTimeLayout)
		}
		rows = append(rows, []string{
			s.Name,
			string(s.Status),
			strconv.Itoa(len(s.DrawnNumbers)),
			s.CreatedAt.Local().Format(sessionTimeLayout),
			finished,
			s.ID,
		})
	}
	if err := writeTable(w, headers, rows, 2); err != nil {
		return err
	}
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
