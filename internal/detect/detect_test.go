package detect

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/verte-zerg/bingo/internal/draw"
	"github.com/verte-zerg/bingo/internal/generator"
	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/partition"
	"github.com/verte-zerg/bingo/internal/tiebreak"
)

type lowestResolver struct {
	calls [][]int
}

func (r *lowestResolver) ResolveTie(ids []int) (int, error) {
	r.calls = append(r.calls, append([]int(nil), ids...))
	best := ids[0]
	for _, id := range ids[1:] {
		if id < best {
			best = id
		}
	}
	return best, nil
}

type failingResolver struct{}

func (failingResolver) ResolveTie([]int) (int, error) {
	return 0, errors.New("boom")
}

func sameColumn(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSingleCardWinsColumn(t *testing.T) {
	cats := partition.Default()
	var cards []model.Card
	for seed := int64(1); ; seed++ {
		gen, err := generator.New(rand.New(rand.NewSource(seed)), cats, 5)
		if err != nil {
			t.Fatalf("generator: %v", err)
		}
		cards, err = gen.GenerateCardSet(2)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !sameColumn(cards[0].Columns[0], cards[1].Columns[0]) {
			break
		}
	}
	a := cards[0]

	d := New(len(cats), &lowestResolver{})
	set := draw.SetOf()
	var records []model.WinRecord
	for i, n := range a.Columns[0] {
		set[n] = struct{}{}
		var err error
		records, err = d.EvaluateAfterDraw(cards, set, i+1)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if i < 4 && records[0].Achieved() {
			t.Fatalf("column 0 achieved too early at draw %d", i+1)
		}
	}
	rec := records[0]
	if rec.DrawIndex != 5 {
		t.Fatalf("expected draw index 5, got %d", rec.DrawIndex)
	}
	if len(rec.WinningCardIDs) != 1 || rec.WinningCardIDs[0] != a.ID {
		t.Fatalf("expected winner [%d], got %v", a.ID, rec.WinningCardIDs)
	}
	if rec.HadTie || len(rec.TiedCardIDs) != 0 {
		t.Fatalf("expected no tie, got %+v", rec)
	}
	for i := 1; i < len(records); i++ {
		if records[i].Achieved() {
			t.Fatalf("expected condition %d pending", i)
		}
	}
}

func TestSimultaneousColumnTie(t *testing.T) {
	shared := []int{31, 32, 33, 34, 35}
	a := model.Card{ID: 1, Columns: [][]int{{1, 2, 3, 4, 5}, {16, 17, 18, 19, 20}, shared, {46, 47, 48, 49, 50}, {61, 62, 63, 64, 65}}}
	b := model.Card{ID: 2, Columns: [][]int{{6, 7, 8, 9, 10}, {21, 22, 23, 24, 25}, shared, {51, 52, 53, 54, 55}, {66, 67, 68, 69, 70}}}
	c := model.Card{ID: 3, Columns: [][]int{{11, 12, 13, 14, 15}, {26, 27, 28, 29, 30}, {36, 37, 38, 39, 40}, {56, 57, 58, 59, 60}, {71, 72, 73, 74, 75}}}
	cards := []model.Card{a, b, c}

	d := New(5, tiebreak.New(rand.New(rand.NewSource(5)), 75))
	records, err := d.EvaluateAfterDraw(cards, draw.SetOf(shared...), 5)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	rec := records[2]
	if !rec.HadTie {
		t.Fatalf("expected tie, got %+v", rec)
	}
	if len(rec.TiedCardIDs) != 2 || rec.TiedCardIDs[0] != 1 || rec.TiedCardIDs[1] != 2 {
		t.Fatalf("expected tied cards [1 2], got %v", rec.TiedCardIDs)
	}
	if len(rec.WinningCardIDs) != 1 || (rec.WinningCardIDs[0] != 1 && rec.WinningCardIDs[0] != 2) {
		t.Fatalf("expected one winner from {1,2}, got %v", rec.WinningCardIDs)
	}
	if rec.DrawIndex != 5 {
		t.Fatalf("expected draw index 5, got %d", rec.DrawIndex)
	}
}

func TestTiesResolvedIndependently(t *testing.T) {
	a := model.Card{ID: 1, Columns: [][]int{{1, 2}, {3, 4}}}
	b := model.Card{ID: 2, Columns: [][]int{{1, 2}, {3, 4}}}
	resolver := &lowestResolver{}
	d := New(2, resolver)
	records, err := d.EvaluateAfterDraw([]model.Card{a, b}, draw.SetOf(1, 2, 3, 4), 4)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(resolver.calls) != 3 {
		t.Fatalf("expected one resolver call per tied condition, got %d", len(resolver.calls))
	}
	for i, rec := range records {
		if !rec.HadTie || rec.Winner() != 1 {
			t.Fatalf("condition %d: expected tie won by 1, got %+v", i, rec)
		}
	}
}

func TestAchievedRecordsAreFinal(t *testing.T) {
	a := model.Card{ID: 1, Columns: [][]int{{1, 2}, {3, 4}}}
	b := model.Card{ID: 2, Columns: [][]int{{1, 5}, {3, 6}}}
	cards := []model.Card{a, b}
	d := New(2, &lowestResolver{})
	if _, err := d.EvaluateAfterDraw(cards, draw.SetOf(1, 2), 2); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	first := d.Column(0)
	if first.Winner() != 1 || first.DrawIndex != 2 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	records, err := d.EvaluateAfterDraw(cards, draw.SetOf(1, 2, 3, 4, 5, 6), 6)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if records[0].DrawIndex != 2 || records[0].HadTie || records[0].Winner() != 1 {
		t.Fatalf("column 0 changed after achievement: %+v", records[0])
	}
	if records[1].DrawIndex != 6 || !records[1].HadTie {
		t.Fatalf("expected column 1 tie at draw 6, got %+v", records[1])
	}
}

func TestFullUniverseAchievesEverything(t *testing.T) {
	cats := partition.Default()
	rnd := rand.New(rand.NewSource(11))
	gen, err := generator.New(rnd, cats, 5)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	cards, err := gen.GenerateCardSet(10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	order := draw.NewOrder(rnd, 75)
	d, err := Replay(cards, len(cats), order, tiebreak.New(rnd, 75))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !d.Done() {
		t.Fatalf("expected all conditions achieved: %+v", d.Records())
	}
	full := d.Full()
	for i := 0; i < d.ColumnCount(); i++ {
		if d.Column(i).DrawIndex > full.DrawIndex {
			t.Fatalf("column %d achieved after full card", i)
		}
	}
}

func TestReplayMatchesOnline(t *testing.T) {
	cats := partition.Default()
	rnd := rand.New(rand.NewSource(21))
	gen, err := generator.New(rnd, cats, 5)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	cards, err := gen.GenerateCardSet(30)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	state := draw.NewState(draw.NewOrder(rnd, 75))
	online := New(len(cats), &lowestResolver{})
	for i := 0; i < 40; i++ {
		_, state, err = draw.Advance(state)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if _, err := online.EvaluateAfterDraw(cards, state, state.Count()); err != nil {
			t.Fatalf("evaluate: %v", err)
		}
	}
	replayed, err := Replay(cards, len(cats), state.Drawn(), &lowestResolver{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	want := online.Records()
	got := replayed.Records()
	for i := range want {
		if want[i].DrawIndex != got[i].DrawIndex || want[i].Winner() != got[i].Winner() || want[i].HadTie != got[i].HadTie {
			t.Fatalf("condition %d differs: online %+v replay %+v", i, want[i], got[i])
		}
	}
}

func TestEvaluateIsAtomicOnResolverError(t *testing.T) {
	a := model.Card{ID: 1, Columns: [][]int{{1}, {2}}}
	b := model.Card{ID: 2, Columns: [][]int{{3}, {2}}}
	d := New(2, failingResolver{})
	if _, err := d.EvaluateAfterDraw([]model.Card{a, b}, draw.SetOf(1, 2), 2); err == nil {
		t.Fatalf("expected resolver error")
	}
	for i, rec := range d.Records() {
		if rec.Achieved() {
			t.Fatalf("condition %d changed despite error", i)
		}
	}
}

func TestEvaluateRejectsMismatchedCards(t *testing.T) {
	d := New(5, &lowestResolver{})
	_, err := d.EvaluateAfterDraw([]model.Card{{ID: 1, Columns: [][]int{{1}}}}, draw.SetOf(1), 1)
	if !model.IsKind(err, model.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := d.EvaluateAfterDraw(nil, draw.SetOf(), 0); err == nil {
		t.Fatalf("expected error for zero draw index")
	}
}
