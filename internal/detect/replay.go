package detect

import (
	"github.com/verte-zerg/bingo/internal/draw"
	"github.com/verte-zerg/bingo/internal/model"
)

// Replay feeds drawn numbers one by one through a fresh Detector and returns
// it. Replaying a persisted prefix yields the same records as evaluating the
// draws online.
func Replay(cards []model.Card, columnCount int, drawn []int, resolver Resolver) (*Detector, error) {
	d := New(columnCount, resolver)
	set := draw.SetOf()
	for i, n := range drawn {
		set[n] = struct{}{}
		if _, err := d.EvaluateAfterDraw(cards, set, i+1); err != nil {
			return nil, err
		}
		if d.Done() {
			break
		}
	}
	return d, nil
}
