// Package generator builds bingo cards from a category partition.
package generator

import (
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/bingo/internal/model"
)

// Source is the randomness consumed by generators. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSource returns a seeded source. A zero seed uses the current time.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Shuffle permutes values in place with an unbiased Fisher-Yates pass.
func Shuffle(src Source, values []int) {
	for i := len(values) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}

// Permutation returns a shuffled copy of the inclusive range [lo, hi].
func Permutation(src Source, lo, hi int) []int {
	if hi < lo {
		return nil
	}
	values := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		values = append(values, n)
	}
	Shuffle(src, values)
	return values
}

// CardGenerator produces cards for a fixed category configuration.
type CardGenerator struct {
	src        Source
	categories []model.Category
	rows       int
}

// New returns a CardGenerator. It fails when a category cannot fill a column.
func New(src Source, categories []model.Category, rows int) (*CardGenerator, error) {
	if err := checkRows(categories, rows); err != nil {
		return nil, err
	}
	return &CardGenerator{src: src, categories: categories, rows: rows}, nil
}

// Categories returns the categories the generator draws from.
func (g *CardGenerator) Categories() []model.Category {
	return g.categories
}

// Rows returns the number of values per column.
func (g *CardGenerator) Rows() int {
	return g.rows
}

// GenerateCard builds one card: per category, permute its range, keep the
// first rows values and sort them ascending.
func (g *CardGenerator) GenerateCard(id int) (model.Card, error) {
	if err := checkRows(g.categories, g.rows); err != nil {
		return model.Card{}, err
	}
	columns := make([][]int, 0, len(g.categories))
	for _, c := range g.categories {
		picked := Permutation(g.src, c.Start, c.End)[:g.rows]
		sort.Ints(picked)
		columns = append(columns, picked)
	}
	return model.Card{ID: id, Columns: columns}, nil
}

// GenerateCardSet builds count cards with ids 1..count.
func (g *CardGenerator) GenerateCardSet(count int) ([]model.Card, error) {
	if count < 0 {
		return nil, model.Errorf("generate card set", model.KindInvalidInput, "card count %d is negative", count)
	}
	cards := make([]model.Card, 0, count)
	for i := 1; i <= count; i++ {
		card, err := g.GenerateCard(i)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func checkRows(categories []model.Category, rows int) error {
	const op = "generate card"
	if rows <= 0 {
		return model.Errorf(op, model.KindConfiguration, "row count %d must be positive", rows)
	}
	for i, c := range categories {
		if rows > c.Width() {
			return model.Errorf(op, model.KindConfiguration, "category %d (%s %d-%d) holds %d values, need %d: %w",
				i, c.Label, c.Start, c.End, c.Width(), rows, model.ErrRangeTooSmall)
		}
	}
	return nil
}
