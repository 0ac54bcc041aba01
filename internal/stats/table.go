package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// tableLayout holds the display width and alignment of each column.
type tableLayout struct {
	widths []int
	right  map[int]bool
}

func newTableLayout(headers []string, rows [][]string, rightAlign []int) tableLayout {
	l := tableLayout{right: make(map[int]bool, len(rightAlign))}
	for _, col := range rightAlign {
		l.right[col] = true
	}
	l.fit(headers)
	for _, row := range rows {
		l.fit(row)
	}
	return l
}

func (l *tableLayout) fit(row []string) {
	for i, cell := range row {
		if i == len(l.widths) {
			l.widths = append(l.widths, 0)
		}
		if w := runewidth.StringWidth(cell); w > l.widths[i] {
			l.widths[i] = w
		}
	}
}

// line pads every cell to its column width; short rows get empty cells.
func (l tableLayout) line(row []string) string {
	cells := make([]string, len(l.widths))
	for i, width := range l.widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if l.right[i] {
			cells[i] = runewidth.FillLeft(cell, width)
		} else {
			cells[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.Join(cells, " ")
}

// padCell pads value to width display columns, aligned left or right.
func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}

func formatTable(headers []string, rows [][]string, rightAlign ...int) []string {
	l := newTableLayout(headers, rows, rightAlign)
	if len(l.widths) == 0 {
		return nil
	}
	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, l.line(headers))
	}
	for _, row := range rows {
		lines = append(lines, l.line(row))
	}
	return lines
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign ...int) error {
	for _, line := range formatTable(headers, rows, rightAlign...) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
