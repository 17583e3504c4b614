// Package journal persists trading actions and decision cycles so a
// run can be audited after the fact.
package journal

import (
	"time"

	"github.com/rustyeddy/swingbot/market"
)

// ActionRecord is one executed trading action: an open, a close or a
// pyramid addition, with the rule and rationale that produced it.
type ActionRecord struct {
	ID      string
	Time    time.Time
	Symbol  string
	Action  string // "open", "close", "pyramid"
	Side    market.Side
	Price   float64
	Size    float64
	Rule    string
	Reason  string
	PnLPct  float64
	Variant string
}

// CycleRecord summarizes one decision cycle: what the loop saw and
// what, if anything, it decided to do.
type CycleRecord struct {
	Time     time.Time
	Symbol   string
	Price    float64
	State    string
	Signals  string
	Action   string // empty when the cycle held
	Duration time.Duration
}

type Journal interface {
	RecordAction(ActionRecord) error
	RecordCycle(CycleRecord) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordAction(ActionRecord) error { return nil }
func (Nop) RecordCycle(CycleRecord) error   { return nil }
func (Nop) Close() error                    { return nil }
