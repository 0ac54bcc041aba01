package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/bingo/internal/detect"
	"github.com/verte-zerg/bingo/internal/draw"
	"github.com/verte-zerg/bingo/internal/generator"
	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/partition"
	"github.com/verte-zerg/bingo/internal/tiebreak"
)

// SimulationConfig describes a batch of independent games.
type SimulationConfig struct {
	Runs       int
	Cards      int
	Rows       int
	Categories []model.Category
	Source     generator.Source
	// KeepRuns retains the summary of every game in the result.
	KeepRuns bool
}

// SimulationResult aggregates a batch of simulated games.
type SimulationResult struct {
	Runs       int
	Conditions []string
	// TieRuns counts, per condition, the runs in which it ended in a tie.
	TieRuns           []int
	AvgDrawIndex      []float64
	AvgCardsWithPrize float64
	AvgTies           float64
	TotalTies         int
	FullCardTieRuns   int
	// FullCardDraws holds the full-card draw index of every run.
	FullCardDraws []int
	// RunSummaries is filled only when KeepRuns is set.
	RunSummaries []Summary
}

// Simulate plays cfg.Runs games over full draw orders and aggregates winners,
// ties and draw indexes.
func Simulate(ctx context.Context, cfg SimulationConfig) (SimulationResult, error) {
	const op = "simulate"
	if cfg.Runs <= 0 {
		return SimulationResult{}, model.Errorf(op, model.KindInvalidInput, "runs must be positive, got %d", cfg.Runs)
	}
	if cfg.Cards <= 0 {
		return SimulationResult{}, model.Errorf(op, model.KindInvalidInput, "cards must be positive, got %d", cfg.Cards)
	}
	gen, err := generator.New(cfg.Source, cfg.Categories, cfg.Rows)
	if err != nil {
		return SimulationResult{}, err
	}
	universe := partition.Universe(cfg.Categories)
	if cfg.Cards > universe {
		return SimulationResult{}, model.Errorf(op, model.KindConfiguration, "%d cards exceed the %d pebbles available for ties", cfg.Cards, universe)
	}
	breaker := tiebreak.New(cfg.Source, universe)
	conditions := len(cfg.Categories) + 1

	res := SimulationResult{
		Runs:          cfg.Runs,
		Conditions:    ConditionNames(cfg.Categories),
		TieRuns:       make([]int, conditions),
		AvgDrawIndex:  make([]float64, conditions),
		FullCardDraws: make([]int, 0, cfg.Runs),
	}
	drawSums := make([]int, conditions)
	prizeSum := 0
	for run := 0; run < cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return SimulationResult{}, err
		}
		cards, err := gen.GenerateCardSet(cfg.Cards)
		if err != nil {
			return SimulationResult{}, err
		}
		order := draw.NewOrder(cfg.Source, universe)
		d, err := detect.Replay(cards, len(cfg.Categories), order, breaker)
		if err != nil {
			return SimulationResult{}, fmt.Errorf("failed to run game %d: %w", run+1, err)
		}
		summary := Summarize(cfg.Categories, d.Records())
		if cfg.KeepRuns {
			res.RunSummaries = append(res.RunSummaries, summary)
		}
		prizeSum += summary.CardsWithPrize
		res.TotalTies += summary.Ties
		for i, c := range summary.Conditions {
			drawSums[i] += c.Record.DrawIndex
			if c.Record.HadTie {
				res.TieRuns[i]++
			}
		}
		full := d.Full()
		if full.HadTie {
			res.FullCardTieRuns++
		}
		res.FullCardDraws = append(res.FullCardDraws, full.DrawIndex)
	}
	runs := float64(cfg.Runs)
	for i, sum := range drawSums {
		res.AvgDrawIndex[i] = float64(sum) / runs
	}
	res.AvgCardsWithPrize = float64(prizeSum) / runs
	res.AvgTies = float64(res.TotalTies) / runs
	return res, nil
}

// RenderSimulation prints each kept game summary, then the aggregates of the
// batch and a histogram of full-card draw indexes.
func RenderSimulation(w io.Writer, res SimulationResult, universe, width int, forceColor bool) error {
	for i, summary := range res.RunSummaries {
		if _, err := fmt.Fprintf(w, "Game %d\n", i+1); err != nil {
			return err
		}
		if err := RenderSummary(w, summary); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Simulated games: %d\n", res.Runs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg cards with prize: %.1f\n", res.AvgCardsWithPrize); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg ties per game: %.1f (total %d)\n", res.AvgTies, res.TotalTies); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Games with a full card tie: %d/%d\n\n", res.FullCardTieRuns, res.Runs); err != nil {
		return err
	}

	headers := []string{"Condition", "Avg draw", "Tie games"}
	rows := make([][]string, 0, len(res.Conditions))
	for i, name := range res.Conditions {
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.1f", res.AvgDrawIndex[i]),
			strconv.Itoa(res.TieRuns[i]) + "/" + strconv.Itoa(res.Runs),
		})
	}
	if err := writeTable(w, headers, rows, 1, 2); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderHistogram(w, "Full card draw index", Buckets(res.FullCardDraws, 1, universe, 0), width, forceColor)
}
