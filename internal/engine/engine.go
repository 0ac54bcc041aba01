// Package engine runs one session's game: it owns the draw state and the
// win detector and persists every drawn number through a SessionStore.
package engine

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/verte-zerg/bingo/internal/detect"
	"github.com/verte-zerg/bingo/internal/draw"
	"github.com/verte-zerg/bingo/internal/generator"
	"github.com/verte-zerg/bingo/internal/model"
	"github.com/verte-zerg/bingo/internal/partition"
	"github.com/verte-zerg/bingo/internal/tiebreak"
)

// SessionStore persists the draw sequence of a session.
type SessionStore interface {
	LoadDrawnNumbers(ctx context.Context, sessionID string) ([]int, error)
	AppendDrawnNumber(ctx context.Context, sessionID string, drawIndex, number int) error
}

// Sources groups the random sources used by a game.
type Sources struct {
	Cards generator.Source
	Draw  generator.Source
	Ties  generator.Source
}

const (
	drawSeedOffset = 1
	tieSeedOffset  = 2
)

// SeededSources derives independent sources from a session seed. Tie breaks
// get their own stream so a replayed prefix resolves ties exactly as the
// online game did.
func SeededSources(seed int64) Sources {
	return Sources{
		Cards: rand.New(rand.NewSource(seed)),
		Draw:  rand.New(rand.NewSource(seed + drawSeedOffset)),
		Ties:  rand.New(rand.NewSource(seed + tieSeedOffset)),
	}
}

// Config describes the game of one session.
type Config struct {
	SessionID  string
	Categories []model.Category
	Cards      []model.Card
	Sources    Sources
	// Store may be nil for games that are not persisted.
	Store SessionStore
	Log   *zap.SugaredLogger
}

// Game is the engine state of one session. It is not safe for concurrent use.
type Game struct {
	sessionID  string
	categories []model.Category
	cards      []model.Card
	state      draw.State
	detector   *detect.Detector
	store      SessionStore
	log        *zap.SugaredLogger
	// persisted counts the drawn numbers the store has accepted.
	persisted int
}

// StepResult reports one draw.
type StepResult struct {
	Number    int
	DrawIndex int
	Records   []model.WinRecord
	// Achieved lists the conditions met on this draw: column indexes, then
	// detect.FullCard.
	Achieved []int
	// PersistErr is set when the draw, or an earlier unsaved one, could not be
	// stored. The in-memory game has still advanced; the next Step or Flush
	// retries the unsaved numbers in order.
	PersistErr error
}

// New starts a fresh game with a new draw order.
func New(cfg Config) (*Game, error) {
	g, err := newGame(cfg)
	if err != nil {
		return nil, err
	}
	g.state = draw.NewState(draw.NewOrder(cfg.Sources.Draw, partition.Universe(cfg.Categories)))
	g.detector = detect.New(len(cfg.Categories), tiebreak.New(cfg.Sources.Ties, partition.Universe(cfg.Categories)))
	return g, nil
}

// Resume rebuilds a game from the numbers already stored for the session. The
// detector replays the stored prefix, so records match the live game.
func Resume(ctx context.Context, cfg Config) (*Game, error) {
	g, err := newGame(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store == nil {
		return nil, model.Errorf("resume game", model.KindConfiguration, "no session store configured")
	}
	drawn, err := cfg.Store.LoadDrawnNumbers(ctx, cfg.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawn numbers: %w", err)
	}
	universe := partition.Universe(cfg.Categories)
	g.state, err = draw.Resume(cfg.Sources.Draw, universe, drawn)
	if err != nil {
		return nil, err
	}
	g.persisted = len(drawn)
	g.detector, err = detect.Replay(cfg.Cards, len(cfg.Categories), drawn, tiebreak.New(cfg.Sources.Ties, universe))
	if err != nil {
		return nil, fmt.Errorf("failed to replay draws: %w", err)
	}
	g.logger().Infow("game.resumed", "session", cfg.SessionID, "drawn", len(drawn))
	return g, nil
}

// ReplayRecords rebuilds the win records of a stored session from its seed and
// drawn numbers, resolving ties as the live game did.
func ReplayRecords(seed int64, cats []model.Category, cards []model.Card, drawn []int) ([]model.WinRecord, error) {
	universe := partition.Universe(cats)
	d, err := detect.Replay(cards, len(cats), drawn, tiebreak.New(SeededSources(seed).Ties, universe))
	if err != nil {
		return nil, err
	}
	return d.Records(), nil
}

func newGame(cfg Config) (*Game, error) {
	const op = "new game"
	if len(cfg.Categories) == 0 {
		return nil, model.Errorf(op, model.KindConfiguration, "no categories configured")
	}
	if err := partition.Validate(cfg.Categories, partition.Universe(cfg.Categories)); err != nil {
		return nil, err
	}
	if len(cfg.Cards) == 0 {
		return nil, model.Errorf(op, model.KindConfiguration, "no cards in play")
	}
	if universe := partition.Universe(cfg.Categories); len(cfg.Cards) > universe {
		return nil, model.Errorf(op, model.KindConfiguration, "%d cards exceed the %d pebbles available for ties", len(cfg.Cards), universe)
	}
	for _, card := range cfg.Cards {
		if len(card.Columns) != len(cfg.Categories) {
			return nil, model.Errorf(op, model.KindInvalidInput, "card %d has %d columns, expected %d", card.ID, len(card.Columns), len(cfg.Categories))
		}
	}
	if cfg.Sources.Draw == nil || cfg.Sources.Ties == nil {
		return nil, model.Errorf(op, model.KindConfiguration, "random sources missing")
	}
	return &Game{
		sessionID:  cfg.SessionID,
		categories: append([]model.Category(nil), cfg.Categories...),
		cards:      cfg.Cards,
		store:      cfg.Store,
		log:        cfg.Log,
	}, nil
}

// Step draws the next number, evaluates every pending condition and stores
// the number. A failed draw or evaluation leaves the game unchanged; a failed
// store is logged and reported in the result.
func (g *Game) Step(ctx context.Context) (StepResult, error) {
	n, next, err := draw.Advance(g.state)
	if err != nil {
		return StepResult{}, err
	}
	records, err := g.detector.EvaluateAfterDraw(g.cards, next, next.Count())
	if err != nil {
		return StepResult{}, fmt.Errorf("failed to evaluate draw %d: %w", next.Count(), err)
	}
	g.state = next

	res := StepResult{Number: n, DrawIndex: next.Count(), Records: records}
	res.Achieved = achievedAt(records, res.DrawIndex)
	if len(res.Achieved) > 0 {
		g.logger().Infow("conditions.achieved", "session", g.sessionID, "draw", res.DrawIndex, "conditions", res.Achieved)
	}
	res.PersistErr = g.Flush(ctx)
	return res, nil
}

// Flush stores every drawn number the store has not accepted yet, in draw
// order. It stops at the first failure.
func (g *Game) Flush(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	drawn := g.state.Drawn()
	for g.persisted < len(drawn) {
		idx := g.persisted + 1
		n := drawn[g.persisted]
		if err := g.store.AppendDrawnNumber(ctx, g.sessionID, idx, n); err != nil {
			g.logger().Warnw("draw.persist_failed", "session", g.sessionID, "draw", idx, "number", n, "unsaved", len(drawn)-g.persisted, "error", err)
			return fmt.Errorf("failed to store draw %d: %w", idx, err)
		}
		g.persisted = idx
	}
	return nil
}

// Unsaved returns how many drawn numbers are still waiting to be stored.
func (g *Game) Unsaved() int {
	if g.store == nil {
		return 0
	}
	return g.state.Count() - g.persisted
}

// achievedAt returns the conditions whose record carries drawIndex.
func achievedAt(records []model.WinRecord, drawIndex int) []int {
	var out []int
	last := len(records) - 1
	for i, rec := range records {
		if rec.DrawIndex != drawIndex {
			continue
		}
		if i == last {
			out = append(out, detect.FullCard)
		} else {
			out = append(out, i)
		}
	}
	return out
}

// SessionID returns the session the game belongs to.
func (g *Game) SessionID() string {
	return g.sessionID
}

// Categories returns the category partition.
func (g *Game) Categories() []model.Category {
	return append([]model.Category(nil), g.categories...)
}

// Cards returns the cards in play.
func (g *Game) Cards() []model.Card {
	return g.cards
}

// State returns the current draw state.
func (g *Game) State() draw.State {
	return g.state
}

// Records returns all win records, columns first and full card last.
func (g *Game) Records() []model.WinRecord {
	return g.detector.Records()
}

// Done reports whether every condition has been achieved.
func (g *Game) Done() bool {
	return g.detector.Done()
}

// Exhausted reports whether every number has been drawn.
func (g *Game) Exhausted() bool {
	return g.state.Exhausted()
}

func (g *Game) logger() *zap.SugaredLogger {
	if g.log == nil {
		return zap.NewNop().Sugar()
	}
	return g.log
}
