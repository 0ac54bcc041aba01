package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/bingo/internal/model"
)

type styledCell struct {
	s       string
	width   int
	isSpace bool
}

type membership interface {
	Has(n int) bool
}

// buildBoardRow renders every number of a category, separated by spaces, in
// the style matching its draw status. last is the most recent draw or 0.
func buildBoardRow(cat model.Category, drawn membership, last int) []styledCell {
	digits := len(fmt.Sprintf("%d", cat.End))
	out := make([]styledCell, 0, cat.Width()*2)
	for n := cat.Start; n <= cat.End; n++ {
		if n > cat.Start {
			out = append(out, styledCell{s: " ", width: 1, isSpace: true})
		}
		text := fmt.Sprintf("%*d", digits, n)
		style := pendingStyle
		switch {
		case n == last:
			style = lastStyle
		case drawn.Has(n):
			style = drawnStyle
		}
		out = append(out, styledCell{
			s:     style.Render(text),
			width: runewidth.StringWidth(text),
		})
	}
	return out
}

func renderCells(cells []styledCell) string {
	var b strings.Builder
	for _, item := range cells {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapCells breaks cells into lines no wider than width, preferring breaks at
// spaces. Leading spaces of a continuation line are dropped.
func wrapCells(cells []styledCell, width int) string {
	if width <= 0 {
		return renderCells(cells)
	}
	var out strings.Builder
	line := make([]styledCell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderCells(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledCell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderCells(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		if item.isSpace && len(line) == 0 {
			i++
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderCells(line))
	return out.String()
}

func lineWidthOf(line []styledCell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledCell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
