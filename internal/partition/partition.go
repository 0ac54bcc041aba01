// Package partition splits the number universe into labeled categories.
package partition

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/bingo/internal/model"
)

const (
	// DefaultUniverse is the size of the default number universe.
	DefaultUniverse = 75
	// DefaultRows is the default number of values per card column.
	DefaultRows = 5
)

// DefaultLabels spells the default card title; "A" appears twice.
var DefaultLabels = []string{"N", "A", "T", "A", "L"}

// New splits [1, universe] into len(labels) contiguous ranges of near-equal width.
// The first universe%len(labels) ranges are one value wider.
func New(labels []string, universe int) ([]model.Category, error) {
	const op = "partition"
	k := len(labels)
	if k == 0 {
		return nil, model.Errorf(op, model.KindConfiguration, "at least one category label is required")
	}
	if universe < k {
		return nil, model.Errorf(op, model.KindConfiguration, "universe %d is smaller than category count %d", universe, k)
	}
	base := universe / k
	extra := universe % k
	cats := make([]model.Category, 0, k)
	start := 1
	for i, label := range labels {
		width := base
		if i < extra {
			width++
		}
		cats = append(cats, model.Category{Label: label, Start: start, End: start + width - 1})
		start += width
	}
	return cats, nil
}

// Default returns the default five-category partition of [1, 75].
func Default() []model.Category {
	cats, err := New(DefaultLabels, DefaultUniverse)
	if err != nil {
		panic(err)
	}
	return cats
}

// Validate checks that categories cover [1, universe] in order without gaps or overlaps.
func Validate(cats []model.Category, universe int) error {
	const op = "validate partition"
	if len(cats) == 0 {
		return model.Errorf(op, model.KindConfiguration, "no categories")
	}
	next := 1
	for i, c := range cats {
		if c.Start != next {
			return model.Errorf(op, model.KindConfiguration, "category %d starts at %d, expected %d", i, c.Start, next)
		}
		if c.End < c.Start {
			return model.Errorf(op, model.KindConfiguration, "category %d has empty range %d-%d", i, c.Start, c.End)
		}
		next = c.End + 1
	}
	if next-1 != universe {
		return model.Errorf(op, model.KindConfiguration, "categories end at %d, expected %d", next-1, universe)
	}
	return nil
}

// Universe returns the upper bound covered by the categories.
func Universe(cats []model.Category) int {
	if len(cats) == 0 {
		return 0
	}
	return cats[len(cats)-1].End
}

// IndexOf returns the index of the category containing n.
func IndexOf(cats []model.Category, n int) (int, bool) {
	for i, c := range cats {
		if c.Contains(n) {
			return i, true
		}
	}
	return -1, false
}

// LabelOf returns the raw label of the category containing n, or "".
func LabelOf(cats []model.Category, n int) string {
	if i, ok := IndexOf(cats, n); ok {
		return cats[i].Label
	}
	return ""
}

// DisplayLabels returns one label per category, suffixing repeated labels with
// their occurrence ("A (1st)", "A (2nd)"). Unique labels are returned as is.
func DisplayLabels(cats []model.Category) []string {
	counts := map[string]int{}
	for _, c := range cats {
		counts[c.Label]++
	}
	seen := map[string]int{}
	out := make([]string, len(cats))
	for i, c := range cats {
		if counts[c.Label] <= 1 {
			out[i] = c.Label
			continue
		}
		seen[c.Label]++
		out[i] = fmt.Sprintf("%s (%s)", c.Label, ordinal(seen[c.Label]))
	}
	return out
}

// ParseLabels splits a comma separated label list, trimming blanks.
func ParseLabels(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
