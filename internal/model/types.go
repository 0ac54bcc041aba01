// Package model defines shared data structures.
package model

import "time"

// NotAchieved marks a win condition that has not been met yet.
const NotAchieved = -1

// Category is one contiguous sub-range of the number universe.
// Labels are display-only and may repeat; identity is the positional index.
type Category struct {
	Label string
	Start int
	End   int
}

// Width returns the number of values in the category range.
func (c Category) Width() int {
	return c.End - c.Start + 1
}

// Contains reports whether n lies within the category range.
func (c Category) Contains(n int) bool {
	return n >= c.Start && n <= c.End
}

// Card is a grid of numbers, one column per category in category order.
type Card struct {
	ID      int
	Columns [][]int
}

// Numbers returns all numbers on the card in column order.
func (c Card) Numbers() []int {
	var out []int
	for _, col := range c.Columns {
		out = append(out, col...)
	}
	return out
}

// WinRecord tracks the first draw that satisfied one win condition.
type WinRecord struct {
	WinningCardIDs []int
	DrawIndex      int
	TiedCardIDs    []int
	HadTie         bool
}

// NewWinRecord returns a pending record.
func NewWinRecord() WinRecord {
	return WinRecord{DrawIndex: NotAchieved}
}

// Achieved reports whether the condition has been met.
func (r WinRecord) Achieved() bool {
	return r.DrawIndex != NotAchieved
}

// Winner returns the winning card id, or 0 while pending.
func (r WinRecord) Winner() int {
	if len(r.WinningCardIDs) == 0 {
		return 0
	}
	return r.WinningCardIDs[0]
}

// Clone returns a deep copy of the record.
func (r WinRecord) Clone() WinRecord {
	out := r
	out.WinningCardIDs = append([]int(nil), r.WinningCardIDs...)
	out.TiedCardIDs = append([]int(nil), r.TiedCardIDs...)
	return out
}

// SessionStatus is the lifecycle state of a persisted session.
type SessionStatus string

const (
	StatusActive   SessionStatus = "active"
	StatusFinished SessionStatus = "finished"
)

// Session is a persisted game session.
type Session struct {
	ID           string
	Name         string
	Status       SessionStatus
	Seed         int64
	DrawnNumbers []int
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// GameConfig defines the card and draw settings of a game.
type GameConfig struct {
	Cards    int
	Rows     int
	Universe int
	Labels   []string
	Seed     int64
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	Status SessionStatus
	Name   string
	Limit  int
}
