package stats

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/partition"
)

func TestSummarizeCountsPrizesAndTies(t *testing.T) {
	cats := partition.Default()
	records := []model.WinRecord{
		{WinningCardIDs: []int{4}, DrawIndex: 20},
		{WinningCardIDs: []int{4}, DrawIndex: 25},
		{WinningCardIDs: []int{9}, DrawIndex: 30, TiedCardIDs: []int{2, 9}, HadTie: true},
		model.NewWinRecord(),
		{WinningCardIDs: []int{1}, DrawIndex: 31},
		model.NewWinRecord(),
	}
	s := Summarize(cats, records)
	if s.TotalPrizes != 6 {
		t.Fatalf("expected 6 prizes, got %d", s.TotalPrizes)
	}
	if s.Awarded != 4 || s.CardsWithPrize != 3 || s.Ties != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Conditions[1].Name != "A (1st)" || s.Conditions[5].Name != FullCardName {
		t.Fatalf("unexpected condition names: %q %q", s.Conditions[1].Name, s.Conditions[5].Name)
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, s); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "card 9") || !strings.Contains(out, "2, 9") {
		t.Fatalf("expected tie details in output:\n%s", out)
	}
	if !strings.Contains(out, "Prizes awarded: 4/6") {
		t.Fatalf("expected totals in output:\n%s", out)
	}
}

func TestRenderCards(t *testing.T) {
	cats := []model.Category{{Label: "X", Start: 1, End: 3}, {Label: "Y", Start: 4, End: 6}}
	cards := []model.Card{{ID: 7, Columns: [][]int{{1, 3}, {4, 6}}}}
	var buf bytes.Buffer
	format := func(n int) string {
		if n == 4 {
			return "4 Ana"
		}
		return "?"
	}
	if err := RenderCards(&buf, cats, cards, format); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "Card 7" || lines[1] != "X Y    " || lines[2] != "? 4 Ana" {
		t.Fatalf("unexpected card output: %q", lines)
	}
}

func TestBuckets(t *testing.T) {
	buckets := Buckets([]int{1, 5, 6, 75, 80, 0}, 1, 75, 15)
	if len(buckets) != 15 {
		t.Fatalf("expected 15 buckets, got %d", len(buckets))
	}
	if buckets[0].Lo != 1 || buckets[0].Hi != 5 || buckets[0].Count != 2 {
		t.Fatalf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[1].Count != 1 || buckets[14].Count != 1 || buckets[14].Hi != 75 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
	if Buckets(nil, 5, 1, 3) != nil {
		t.Fatalf("expected nil for empty range")
	}
}

func TestRenderHistogramScalesBars(t *testing.T) {
	var buf bytes.Buffer
	buckets := []Bucket{{Lo: 1, Hi: 5, Count: 10}, {Lo: 6, Hi: 10, Count: 5}, {Lo: 11, Hi: 15}}
	if err := RenderHistogram(&buf, "Draws", buckets, 40, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 || lines[0] != "Draws" {
		t.Fatalf("unexpected histogram: %q", lines)
	}
	full := strings.Count(lines[1], barChar)
	half := strings.Count(lines[2], barChar)
	if full != BarWidthFor(40, 5, 2) || half != full/2 {
		t.Fatalf("expected bars %d and %d, got %d and %d", BarWidthFor(40, 5, 2), full/2, full, half)
	}
	if strings.Contains(lines[3], barChar) || strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("unexpected bar or color in output: %q", lines)
	}
}

func TestSimulateAggregates(t *testing.T) {
	cats := partition.Default()
	res, err := Simulate(context.Background(), SimulationConfig{
		Runs:       20,
		Cards:      70,
		Rows:       5,
		Categories: cats,
		Source:     rand.New(rand.NewSource(99)),
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.FullCardDraws) != 20 || len(res.Conditions) != 6 {
		t.Fatalf("unexpected result shape: %+v", res)
	}
	for _, d := range res.FullCardDraws {
		if d < 25 || d > 75 {
			t.Fatalf("full card draw %d out of range", d)
		}
	}
	for i, avg := range res.AvgDrawIndex {
		if avg < 5 || avg > 75 {
			t.Fatalf("condition %d average %f out of range", i, avg)
		}
	}
	if res.AvgCardsWithPrize < 1 || res.AvgCardsWithPrize > 6 {
		t.Fatalf("unexpected average cards with prize %f", res.AvgCardsWithPrize)
	}

	var buf bytes.Buffer
	if err := RenderSimulation(&buf, res, 75, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Full card draw index") {
		t.Fatalf("expected histogram in output")
	}
}

func TestSimulateKeepsRunSummaries(t *testing.T) {
	cfg := SimulationConfig{Runs: 3, Cards: 10, Rows: 5, Categories: partition.Default(), Source: rand.New(rand.NewSource(5))}
	res, err := Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.RunSummaries) != 0 {
		t.Fatalf("expected no run summaries by default, got %d", len(res.RunSummaries))
	}

	cfg.KeepRuns = true
	cfg.Source = rand.New(rand.NewSource(5))
	res, err = Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.RunSummaries) != 3 {
		t.Fatalf("expected 3 run summaries, got %d", len(res.RunSummaries))
	}
	for i, summary := range res.RunSummaries {
		if summary.Conditions[len(summary.Conditions)-1].Record.DrawIndex != res.FullCardDraws[i] {
			t.Fatalf("game %d: summary and full card draw disagree", i+1)
		}
	}
	var buf bytes.Buffer
	if err := RenderSimulation(&buf, res, 75, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Game 1\n") || !strings.Contains(out, "Game 3\n") || !strings.Contains(out, "Simulated games: 3") {
		t.Fatalf("expected per-game sections:\n%s", out)
	}
}

func TestSimulateRejectsBadInput(t *testing.T) {
	_, err := Simulate(context.Background(), SimulationConfig{Runs: 0, Cards: 1, Rows: 5, Categories: partition.Default(), Source: rand.New(rand.NewSource(1))})
	if !model.IsKind(err, model.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	small, err := partition.New(partition.DefaultLabels, 25)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	_, err = Simulate(context.Background(), SimulationConfig{Runs: 1, Cards: 70, Rows: 5, Categories: small, Source: rand.New(rand.NewSource(1))})
	if !model.IsKind(err, model.KindConfiguration) {
		t.Fatalf("expected configuration error for more cards than pebbles, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Simulate(ctx, SimulationConfig{Runs: 1, Cards: 1, Rows: 5, Categories: partition.Default(), Source: rand.New(rand.NewSource(1))}); err == nil {
		t.Fatalf("expected canceled context to stop simulation")
	}
}

func TestRenderSessions(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSessions(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No sessions found.\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}

	buf.Reset()
	created := time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC)
	sessions := []model.Session{{ID: "abc", Name: "Christmas", Status: model.StatusActive, DrawnNumbers: []int{4, 9}, CreatedAt: created}}
	if err := RenderSessions(&buf, sessions); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Name") {
		t.Fatalf("unexpected output: %q", lines)
	}
	if !strings.Contains(lines[1], "Christmas") || !strings.Contains(lines[1], "active") || !strings.HasSuffix(lines[1], "abc") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}
