// Package signal detects short-entry opportunities by composing three
// independent timeframe evaluators: daily trend, four-hour
// consolidation and hourly entry trigger. The composite decision is
// the logical AND of all three; an evaluator that cannot determine its
// answer reports Undetermined, which blocks entry but is logged apart
// from a confirmed false.
package signal

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/rustyeddy/swingbot/indicators"
	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/venue"
)

const (
	fetchLimit = 50
	minCandles = 30

	trendADXMin      = 25.0
	bandWidthMax     = 0.10
	atrPercentMax    = 2.0
	entryRSIFloor    = 40.0
	divergenceWindow = 5
)

// Status is the tri-state outcome of one evaluator.
type Status int

const (
	Undetermined Status = iota
	False
	True
)

func (s Status) String() string {
	switch s {
	case True:
		return "yes"
	case False:
		return "no"
	default:
		return "n/a"
	}
}

// Result is one evaluator's answer with its rationale.
type Result struct {
	Status Status
	Detail string
}

func (r Result) True() bool { return r.Status == True }

func undetermined(reason string) Result {
	return Result{Status: Undetermined, Detail: reason}
}

func boolResult(ok bool, detail string) Result {
	st := False
	if ok {
		st = True
	}
	return Result{Status: st, Detail: detail}
}

// Detector fetches each timeframe separately and runs the three
// evaluators over the indicator snapshots.
type Detector struct {
	x   venue.Exchange
	log *slog.Logger
}

func NewDetector(x venue.Exchange, log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{x: x, log: log.With("component", "signal")}
}

// Decision is the composite of the three evaluators.
type Decision struct {
	Trend         Result
	Consolidation Result
	Entry         Result
}

// Enter reports whether all three evaluators agree on entry.
func (d Decision) Enter() bool {
	return d.Trend.True() && d.Consolidation.True() && d.Entry.True()
}

// Summary renders per-evaluator status for observability.
func (d Decision) Summary() string {
	return fmt.Sprintf("trend=%s consolidation=%s entry=%s",
		d.Trend.Status, d.Consolidation.Status, d.Entry.Status)
}

// Evaluate runs all three evaluators. Fetch or compute failures leave
// the corresponding result Undetermined; the composite treats that as
// not-true.
func (d *Detector) Evaluate(ctx context.Context) Decision {
	dec := Decision{
		Trend:         d.Trend(ctx),
		Consolidation: d.Consolidation(ctx),
		Entry:         d.Entry(ctx),
	}
	d.log.Info("signal evaluation", "summary", dec.Summary(), "enter", dec.Enter())
	return dec
}

// Trend evaluates the coarse timeframe: a confirmed downtrend needs
// the fast average below the slow one, trend strength above threshold
// and price under the breakout line.
func (d *Detector) Trend(ctx context.Context) Result {
	candles, snaps, err := d.fetch(ctx, market.D1)
	if err != nil {
		return undetermined(fmt.Sprintf("trend: %v", err))
	}
	last := snaps[len(snaps)-1]
	close := candles[len(candles)-1].Close

	if math.IsNaN(last.EMA21) || math.IsNaN(last.EMA50) || math.IsNaN(last.ADX) {
		return undetermined("trend: indicators not warmed up")
	}

	down := last.EMA21 < last.EMA50
	strong := last.ADX > trendADXMin
	belowLine := close < last.SuperTrend

	return boolResult(down && strong && belowLine,
		fmt.Sprintf("down=%t strong=%t belowLine=%t", down, strong, belowLine))
}

// Consolidation evaluates the medium timeframe: tight volatility bands
// and low ATR relative to price.
func (d *Detector) Consolidation(ctx context.Context) Result {
	_, snaps, err := d.fetch(ctx, market.H4)
	if err != nil {
		return undetermined(fmt.Sprintf("consolidation: %v", err))
	}
	last := snaps[len(snaps)-1]

	if math.IsNaN(last.BandWidth) || math.IsNaN(last.ATRPercent) {
		return undetermined("consolidation: indicators not warmed up")
	}

	tight := last.BandWidth < bandWidthMax
	calm := last.ATRPercent < atrPercentMax

	return boolResult(tight && calm, fmt.Sprintf("tight=%t calm=%t", tight, calm))
}

// Entry evaluates the fine timeframe: price back above the 38.2%
// retracement, oscillator off the floor, and either a volume/price
// divergence or no volume data at all.
func (d *Detector) Entry(ctx context.Context) Result {
	candles, snaps, err := d.fetch(ctx, market.H1)
	if err != nil {
		return undetermined(fmt.Sprintf("entry: %v", err))
	}
	last := snaps[len(snaps)-1]
	close := candles[len(candles)-1].Close

	if math.IsNaN(last.RSI) || math.IsNaN(last.Fib382) {
		return undetermined("entry: indicators not warmed up")
	}

	atFib := close > last.Fib382
	notOversold := last.RSI > entryRSIFloor

	hasVolume := market.HasVolume(candles)
	diverging := hasVolume && obvDivergence(candles, snaps)

	return boolResult(atFib && notOversold && (diverging || !hasVolume),
		fmt.Sprintf("atFib=%t notOversold=%t divergence=%t volume=%t",
			atFib, notOversold, diverging, hasVolume))
}

func (d *Detector) fetch(ctx context.Context, tf market.Timeframe) ([]market.Candle, []indicators.Snapshot, error) {
	candles, err := d.x.Candles(ctx, tf, fetchLimit)
	if err != nil {
		return nil, nil, err
	}
	if len(candles) < minCandles {
		return nil, nil, fmt.Errorf("%w: %s needs %d candles, got %d",
			venue.ErrInsufficientData, tf, minCandles, len(candles))
	}
	snaps, err := indicators.Compute(candles)
	if err != nil {
		return nil, nil, err
	}
	return candles, snaps, nil
}

// obvDivergence reports whether price is making new rolling highs
// while on-balance volume is not: a bearish volume/price divergence.
func obvDivergence(candles []market.Candle, snaps []indicators.Snapshot) bool {
	n := len(candles)
	if n < divergenceWindow+1 {
		return false
	}

	closes := make([]float64, n)
	obv := make([]float64, n)
	for i := range candles {
		closes[i] = candles[i].Close
		obv[i] = snaps[i].OBV
	}
	priceHigh := indicators.RollingMax(closes, divergenceWindow)
	obvHigh := indicators.RollingMax(obv, divergenceWindow)

	priceUp := priceHigh[n-1]-priceHigh[n-2] > 0
	obvDown := obvHigh[n-1]-obvHigh[n-2] < 0
	return priceUp && obvDown
}
