package tiebreak

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/verte-zerg/bingo/internal/model"
)

type recordingSource struct {
	rnd   *rand.Rand
	calls []int
}

func (r *recordingSource) Intn(n int) int {
	r.calls = append(r.calls, n)
	return r.rnd.Intn(n)
}

func TestResolveTieEmpty(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)), 75)
	_, err := b.ResolveTie(nil)
	if !errors.Is(err, model.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if !model.IsKind(err, model.KindInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}

func TestResolveTieSingleConsumesNoRandomness(t *testing.T) {
	src := &recordingSource{rnd: rand.New(rand.NewSource(1))}
	got, err := New(src, 75).ResolveTie([]int{42})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if len(src.calls) != 0 {
		t.Fatalf("expected no random draws, got %d", len(src.calls))
	}
}

func TestResolveTieStepsAndMembership(t *testing.T) {
	ids := []int{4, 9, 13, 21}
	for seed := int64(1); seed <= 50; seed++ {
		src := &recordingSource{rnd: rand.New(rand.NewSource(seed))}
		got, err := New(src, 75).ResolveTie(ids)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		member := false
		for _, id := range ids {
			if id == got {
				member = true
			}
		}
		if !member {
			t.Fatalf("winner %d not among %v", got, ids)
		}
		// 74 shuffle swaps over the universe, then one pick per tied card.
		if len(src.calls) != 74+len(ids) {
			t.Fatalf("expected %d draws, got %d", 74+len(ids), len(src.calls))
		}
		picks := src.calls[74:]
		for i, n := range picks {
			if n != len(ids)-i {
				t.Fatalf("pick %d drew from pool of %d, expected %d", i, n, len(ids)-i)
			}
		}
	}
}

func TestAssignGivesDistinctPebbles(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5}
	assignments, err := New(rand.New(rand.NewSource(3)), 75).Assign(ids)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(assignments) != len(ids) {
		t.Fatalf("expected %d assignments, got %d", len(ids), len(assignments))
	}
	seen := map[int]bool{}
	best := 0
	for i, a := range assignments {
		if a.CardID != ids[i] {
			t.Fatalf("expected card %d at %d, got %d", ids[i], i, a.CardID)
		}
		if a.Pebble < 1 || a.Pebble > 75 || seen[a.Pebble] {
			t.Fatalf("bad pebble %d", a.Pebble)
		}
		seen[a.Pebble] = true
		if a.Pebble > best {
			best = a.Pebble
		}
	}
	winner := Winner(assignments)
	for _, a := range assignments {
		if a.CardID == winner && a.Pebble != best {
			t.Fatalf("winner %d does not hold the highest pebble", winner)
		}
	}
}

func TestResolveTieNoPositionBias(t *testing.T) {
	b := New(rand.New(rand.NewSource(99)), 75)
	wins := map[int]int{}
	for i := 0; i < 1000; i++ {
		got, err := b.ResolveTie([]int{1, 2, 3})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		wins[got]++
	}
	for _, id := range []int{1, 2, 3} {
		if wins[id] == 0 {
			t.Fatalf("card %d never won: %v", id, wins)
		}
	}
}

func TestPebblesBounds(t *testing.T) {
	b := New(rand.New(rand.NewSource(1)), 75)
	if _, err := b.Pebbles(0); err == nil {
		t.Fatalf("expected error for zero pebbles")
	}
	if _, err := b.Pebbles(76); err == nil {
		t.Fatalf("expected error for more pebbles than universe")
	}
	all, err := b.Pebbles(75)
	if err != nil || len(all) != 75 {
		t.Fatalf("expected 75 pebbles, got %d %v", len(all), err)
	}
}
