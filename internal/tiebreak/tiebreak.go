// Package tiebreak picks a single winner among cards that completed a
// condition on the same draw by handing out "pebbles": the highest wins.
package tiebreak

import (
	"github.com/verte-zerg/bingo/internal/generator"
	"github.com/verte-zerg/bingo/internal/model"
)

// Assignment is the pebble handed to one tied card.
type Assignment struct {
	CardID int
	Pebble int
}

// Breaker resolves ties with pebbles taken from the whole number universe.
type Breaker struct {
	src      generator.Source
	universe int
}

// New returns a Breaker drawing pebbles from [1, universe].
func New(src generator.Source, universe int) *Breaker {
	return &Breaker{src: src, universe: universe}
}

// ResolveTie returns the winning id among ids. A single id wins outright.
func (b *Breaker) ResolveTie(ids []int) (int, error) {
	switch len(ids) {
	case 0:
		return 0, &model.Error{Op: "resolve tie", Kind: model.KindInvalidInput, Err: model.ErrNoCandidates}
	case 1:
		return ids[0], nil
	}
	assignments, err := b.Assign(ids)
	if err != nil {
		return 0, err
	}
	return Winner(assignments), nil
}

// Assign draws len(ids) pebbles from a permutation of the universe, then gives
// each card, in list order, a uniformly random pebble from the remaining pool.
func (b *Breaker) Assign(ids []int) ([]Assignment, error) {
	const op = "assign pebbles"
	if len(ids) == 0 {
		return nil, &model.Error{Op: op, Kind: model.KindInvalidInput, Err: model.ErrNoCandidates}
	}
	pool, err := b.Pebbles(len(ids))
	if err != nil {
		return nil, err
	}
	out := make([]Assignment, 0, len(ids))
	for _, id := range ids {
		i := b.src.Intn(len(pool))
		out = append(out, Assignment{CardID: id, Pebble: pool[i]})
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return out, nil
}

// Pebbles returns count distinct values taken from the front of a fresh
// permutation of the universe.
func (b *Breaker) Pebbles(count int) ([]int, error) {
	if count < 1 || count > b.universe {
		return nil, model.Errorf("draw pebbles", model.KindInvalidInput, "pebble count %d outside 1-%d", count, b.universe)
	}
	return generator.Permutation(b.src, 1, b.universe)[:count], nil
}

// Winner returns the card holding the highest pebble.
func Winner(assignments []Assignment) int {
	best := Assignment{Pebble: -1}
	for _, a := range assignments {
		if a.Pebble > best.Pebble {
			best = a
		}
	}
	return best.CardID
}
