package market

import (
	"fmt"
	"time"
)

// Side is the direction of a position.
type Side int

const (
	Flat Side = iota
	Long
	Short
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Opposite returns the reverse direction. Flat is its own opposite.
func (s Side) Opposite() Side {
	switch s {
	case Long:
		return Short
	case Short:
		return Long
	default:
		return Flat
	}
}

// Position is the canonical view of the current position on one
// instrument. Invariants: Size > 0 and EntryPrice > 0 exactly when
// Side != Flat, and 0 <= PyramidCount <= the configured maximum.
type Position struct {
	Side             Side
	EntryPrice       float64
	Size             float64
	EntryTime        time.Time
	PyramidCount     int
	LastPyramidPrice float64
}

// Open reports whether a position is held.
func (p Position) Open() bool { return p.Side != Flat }

// PnLPercent returns the unrealized profit percentage at price.
// Positive means the position is in profit, for either side.
func (p Position) PnLPercent(price float64) float64 {
	if !p.Open() || p.EntryPrice <= 0 {
		return 0
	}
	switch p.Side {
	case Long:
		return (price - p.EntryPrice) / p.EntryPrice * 100
	default:
		return (p.EntryPrice - price) / p.EntryPrice * 100
	}
}

// HoldingTime returns how long the position has been open as of now.
func (p Position) HoldingTime(now time.Time) time.Duration {
	if !p.Open() || p.EntryTime.IsZero() {
		return 0
	}
	return now.Sub(p.EntryTime)
}

// Validate checks the position invariants.
func (p Position) Validate(maxPyramids int) error {
	if p.Open() != (p.Size > 0) {
		return fmt.Errorf("position %s: size %v inconsistent with side", p.Side, p.Size)
	}
	if p.Open() != (p.EntryPrice > 0) {
		return fmt.Errorf("position %s: entry price %v inconsistent with side", p.Side, p.EntryPrice)
	}
	if p.PyramidCount < 0 || p.PyramidCount > maxPyramids {
		return fmt.Errorf("position %s: pyramid count %d out of range [0,%d]", p.Side, p.PyramidCount, maxPyramids)
	}
	return nil
}
