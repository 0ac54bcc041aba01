package partition

import (
	"testing"

	"github.com/verte-zerg/bingo/internal/model"
)

func TestDefaultPartitionCoversUniverse(t *testing.T) {
	cats := Default()
	if len(cats) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(cats))
	}
	if err := Validate(cats, DefaultUniverse); err != nil {
		t.Fatalf("validate: %v", err)
	}
	seen := map[int]int{}
	for i, c := range cats {
		if c.Width() != 15 {
			t.Fatalf("expected width 15 for category %d, got %d", i, c.Width())
		}
		for n := c.Start; n <= c.End; n++ {
			seen[n]++
		}
	}
	for n := 1; n <= DefaultUniverse; n++ {
		if seen[n] != 1 {
			t.Fatalf("expected %d covered exactly once, got %d", n, seen[n])
		}
	}
}

func TestNewDistributesRemainder(t *testing.T) {
	cats, err := New([]string{"a", "b", "c"}, 10)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := []model.Category{
		{Label: "a", Start: 1, End: 4},
		{Label: "b", Start: 5, End: 7},
		{Label: "c", Start: 8, End: 10},
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("category %d: expected %+v, got %+v", i, want[i], cats[i])
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(nil, 75); !model.IsKind(err, model.KindConfiguration) {
		t.Fatalf("expected configuration error for empty labels, got %v", err)
	}
	if _, err := New([]string{"a", "b", "c"}, 2); !model.IsKind(err, model.KindConfiguration) {
		t.Fatalf("expected configuration error for small universe, got %v", err)
	}
}

func TestValidateDetectsGapAndOverlap(t *testing.T) {
	gap := []model.Category{{Label: "a", Start: 1, End: 4}, {Label: "b", Start: 6, End: 10}}
	if err := Validate(gap, 10); err == nil {
		t.Fatalf("expected gap to be rejected")
	}
	overlap := []model.Category{{Label: "a", Start: 1, End: 5}, {Label: "b", Start: 5, End: 10}}
	if err := Validate(overlap, 10); err == nil {
		t.Fatalf("expected overlap to be rejected")
	}
	short := []model.Category{{Label: "a", Start: 1, End: 5}}
	if err := Validate(short, 10); err == nil {
		t.Fatalf("expected short coverage to be rejected")
	}
}

func TestDisplayLabelsDisambiguatesDuplicates(t *testing.T) {
	labels := DisplayLabels(Default())
	want := []string{"N", "A (1st)", "T", "A (2nd)", "L"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label %d: expected %q, got %q", i, want[i], labels[i])
		}
	}
}

func TestIndexOfUsesPosition(t *testing.T) {
	cats := Default()
	if i, ok := IndexOf(cats, 50); !ok || i != 3 {
		t.Fatalf("expected 50 in category 3, got %d %v", i, ok)
	}
	if i, ok := IndexOf(cats, 20); !ok || i != 1 {
		t.Fatalf("expected 20 in category 1, got %d %v", i, ok)
	}
	if _, ok := IndexOf(cats, 76); ok {
		t.Fatalf("expected 76 outside universe")
	}
	if LabelOf(cats, 50) != "A" {
		t.Fatalf("expected raw label A for 50")
	}
}

func TestParseLabels(t *testing.T) {
	got := ParseLabels(" B, I ,,N,G,O ")
	if len(got) != 5 || got[0] != "B" || got[1] != "I" || got[4] != "O" {
		t.Fatalf("unexpected labels: %v", got)
	}
}
