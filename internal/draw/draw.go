// Package draw sequences the numbers revealed during a game.
package draw

import (
	"github.com/verte-zerg/bingo/internal/generator"
	"github.com/verte-zerg/bingo/internal/model"
)

// NewOrder returns a uniformly random permutation of [1, universe].
func NewOrder(src generator.Source, universe int) []int {
	return generator.Permutation(src, 1, universe)
}

// State is an immutable snapshot of a draw sequence. The drawn set is always
// the prefix of Order of length Count.
type State struct {
	order []int
	count int
	drawn []bool
}

// NewState starts a sequence over a materialized order.
func NewState(order []int) State {
	return State{
		order: append([]int(nil), order...),
		drawn: make([]bool, len(order)+1),
	}
}

// Resume rebuilds a state whose order starts with an already drawn prefix and
// continues with a shuffled remainder of the universe.
func Resume(src generator.Source, universe int, prefix []int) (State, error) {
	const op = "resume draw"
	if len(prefix) > universe {
		return State{}, model.Errorf(op, model.KindInvalidInput, "%d numbers drawn from a universe of %d", len(prefix), universe)
	}
	drawn := make([]bool, universe+1)
	for i, n := range prefix {
		if n < 1 || n > universe {
			return State{}, model.Errorf(op, model.KindInvalidInput, "draw %d: number %d outside 1-%d", i+1, n, universe)
		}
		if drawn[n] {
			return State{}, model.Errorf(op, model.KindInvalidInput, "draw %d: number %d drawn twice", i+1, n)
		}
		drawn[n] = true
	}
	rest := make([]int, 0, universe-len(prefix))
	for n := 1; n <= universe; n++ {
		if !drawn[n] {
			rest = append(rest, n)
		}
	}
	generator.Shuffle(src, rest)
	order := make([]int, 0, universe)
	order = append(order, prefix...)
	order = append(order, rest...)
	return State{order: order, count: len(prefix), drawn: drawn}, nil
}

// Advance reveals the next number and returns the resulting state. The input
// state is left untouched.
func Advance(s State) (int, State, error) {
	if s.count >= len(s.order) {
		return 0, s, &model.Error{Op: "advance draw", Kind: model.KindExhausted, Err: model.ErrExhausted}
	}
	n := s.order[s.count]
	drawn := make([]bool, len(s.drawn))
	copy(drawn, s.drawn)
	drawn[n] = true
	return n, State{order: s.order, count: s.count + 1, drawn: drawn}, nil
}

// Count returns how many numbers have been drawn.
func (s State) Count() int {
	return s.count
}

// Universe returns the size of the number universe.
func (s State) Universe() int {
	return len(s.order)
}

// Remaining returns how many numbers are left to draw.
func (s State) Remaining() int {
	return len(s.order) - s.count
}

// Exhausted reports whether every number has been drawn.
func (s State) Exhausted() bool {
	return s.count >= len(s.order)
}

// Has reports whether n has been drawn.
func (s State) Has(n int) bool {
	if n < 1 || n >= len(s.drawn) {
		return false
	}
	return s.drawn[n]
}

// Drawn returns the drawn numbers in draw order.
func (s State) Drawn() []int {
	return append([]int(nil), s.order[:s.count]...)
}

// Set returns the drawn numbers as a set.
func (s State) Set() Set {
	return SetOf(s.order[:s.count]...)
}

// Last returns the most recently drawn number.
func (s State) Last() (int, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.order[s.count-1], true
}

// Set is a membership view over drawn numbers.
type Set map[int]struct{}

// SetOf builds a set from numbers.
func SetOf(numbers ...int) Set {
	set := make(Set, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return set
}

// Has reports whether n is in the set.
func (s Set) Has(n int) bool {
	_, ok := s[n]
	return ok
}
