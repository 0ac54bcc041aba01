// Package detect tracks the first draw at which each card column, and each
// whole card, is fully covered.
package detect

import (
	"github.com/verte-zerg/bingo/internal/model"
)

// FullCard identifies the whole-card condition. Column conditions use their
// non-negative column index.
const FullCard = -1

// Membership reports whether a number has been drawn.
type Membership interface {
	Has(n int) bool
}

// Resolver picks one winner among cards tied on the same draw.
type Resolver interface {
	ResolveTie(ids []int) (int, error)
}

// Detector holds one record per column plus the full-card record. Records move
// from pending to achieved once and never change afterwards.
type Detector struct {
	columns  []model.WinRecord
	full     model.WinRecord
	resolver Resolver
}

// New returns a Detector for cards with the given number of columns.
func New(columnCount int, resolver Resolver) *Detector {
	columns := make([]model.WinRecord, columnCount)
	for i := range columns {
		columns[i] = model.NewWinRecord()
	}
	return &Detector{columns: columns, full: model.NewWinRecord(), resolver: resolver}
}

// ColumnCount returns the number of column conditions.
func (d *Detector) ColumnCount() int {
	return len(d.columns)
}

// EvaluateAfterDraw checks every pending condition, in column order and then
// the full card, against the drawn numbers. Conditions met on this draw are
// recorded with drawIndex; ties are handed to the resolver, once per
// condition. The step is applied atomically: on error nothing changes.
// It returns a snapshot of all records, columns first and full card last.
func (d *Detector) EvaluateAfterDraw(cards []model.Card, drawn Membership, drawIndex int) ([]model.WinRecord, error) {
	const op = "evaluate draw"
	if drawIndex < 1 {
		return nil, model.Errorf(op, model.KindInvalidInput, "draw index %d must be positive", drawIndex)
	}
	for _, card := range cards {
		if len(card.Columns) != len(d.columns) {
			return nil, model.Errorf(op, model.KindInvalidInput, "card %d has %d columns, expected %d", card.ID, len(card.Columns), len(d.columns))
		}
	}

	columns := make([]model.WinRecord, len(d.columns))
	copy(columns, d.columns)
	for i, rec := range d.columns {
		if rec.Achieved() {
			continue
		}
		next, err := d.settle(qualifying(cards, drawn, i), drawIndex)
		if err != nil {
			return nil, err
		}
		columns[i] = next
	}
	full := d.full
	if !full.Achieved() {
		next, err := d.settle(qualifying(cards, drawn, FullCard), drawIndex)
		if err != nil {
			return nil, err
		}
		full = next
	}

	d.columns = columns
	d.full = full
	return d.Records(), nil
}

// Records returns a copy of all records, columns first and full card last.
func (d *Detector) Records() []model.WinRecord {
	out := make([]model.WinRecord, 0, len(d.columns)+1)
	for _, rec := range d.columns {
		out = append(out, rec.Clone())
	}
	return append(out, d.full.Clone())
}

// Column returns the record of one column condition.
func (d *Detector) Column(i int) model.WinRecord {
	return d.columns[i].Clone()
}

// Full returns the full-card record.
func (d *Detector) Full() model.WinRecord {
	return d.full.Clone()
}

// Done reports whether every condition has been achieved.
func (d *Detector) Done() bool {
	if !d.full.Achieved() {
		return false
	}
	for _, rec := range d.columns {
		if !rec.Achieved() {
			return false
		}
	}
	return true
}

func (d *Detector) settle(ids []int, drawIndex int) (model.WinRecord, error) {
	switch len(ids) {
	case 0:
		return model.NewWinRecord(), nil
	case 1:
		return model.WinRecord{WinningCardIDs: ids, DrawIndex: drawIndex}, nil
	}
	winner, err := d.resolver.ResolveTie(ids)
	if err != nil {
		return model.WinRecord{}, err
	}
	return model.WinRecord{
		WinningCardIDs: []int{winner},
		DrawIndex:      drawIndex,
		TiedCardIDs:    ids,
		HadTie:         true,
	}, nil
}

func qualifying(cards []model.Card, drawn Membership, condition int) []int {
	var ids []int
	for _, card := range cards {
		if Covered(card, drawn, condition) {
			ids = append(ids, card.ID)
		}
	}
	return ids
}

// Covered reports whether every number in the condition's scope is drawn.
func Covered(card model.Card, drawn Membership, condition int) bool {
	if condition != FullCard {
		return allDrawn(card.Columns[condition], drawn)
	}
	for _, col := range card.Columns {
		if !allDrawn(col, drawn) {
			return false
		}
	}
	return true
}

func allDrawn(numbers []int, drawn Membership) bool {
	for _, n := range numbers {
		if !drawn.Has(n) {
			return false
		}
	}
	return true
}
