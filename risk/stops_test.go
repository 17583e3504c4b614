package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/swingbot/indicators"
	"github.com/rustyeddy/swingbot/market"
)

func guardCandles(high, low float64) []market.Candle {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, 5)
	for i := range out {
		out[i] = market.Candle{
			Time:  base.Add(time.Duration(i) * 15 * time.Minute),
			Open:  (high + low) / 2,
			High:  high,
			Low:   low,
			Close: (high + low) / 2,
		}
	}
	return out
}

func shortPosition(entry float64, openedAgo time.Duration, now time.Time) market.Position {
	return market.Position{
		Side:       market.Short,
		EntryPrice: entry,
		Size:       0.01,
		EntryTime:  now.Add(-openedAgo),
	}
}

func TestFixedStopOutranksTrailing(t *testing.T) {
	t.Parallel()

	now := time.Now()
	// Short from 100, price at 106: a 6% adverse move. Both the fixed
	// 5% stop and the trailing anchor are breached; the fixed rule
	// must win.
	in := StopInputs{
		Position:    shortPosition(100, time.Hour, now),
		Price:       106,
		Candles:     guardCandles(101, 99),
		Snap:        indicators.Snapshot{ATR: 1, ADX: 20},
		Now:         now,
		StopLossPct: 5,
	}

	d := CheckStops(in)
	assert.True(t, d.Triggered)
	assert.Equal(t, RuleFixed, d.Rule)
}

func TestTrailingStopShort(t *testing.T) {
	t.Parallel()

	now := time.Now()
	// 3% adverse: under the 5% fixed stop, but above the trailing
	// anchor max(high + 2*ATR, entry*1.02) = max(101+2, 102) = 103.
	in := StopInputs{
		Position:    shortPosition(100, time.Hour, now),
		Price:       103,
		Candles:     guardCandles(101, 99),
		Snap:        indicators.Snapshot{ATR: 1, ADX: 20},
		Now:         now,
		StopLossPct: 5,
	}

	d := CheckStops(in)
	assert.True(t, d.Triggered)
	assert.Equal(t, RuleTrailing, d.Rule)
}

func TestTrailingStopLong(t *testing.T) {
	t.Parallel()

	now := time.Now()
	pos := market.Position{Side: market.Long, EntryPrice: 100, Size: 0.01, EntryTime: now.Add(-time.Hour)}
	// Anchor is min(low - 2*ATR, entry*0.98) = min(99-2, 98) = 97.
	in := StopInputs{
		Position:    pos,
		Price:       96.5,
		Candles:     guardCandles(101, 99),
		Snap:        indicators.Snapshot{ATR: 1, ADX: 20},
		Now:         now,
		StopLossPct: 5,
	}

	d := CheckStops(in)
	assert.True(t, d.Triggered)
	assert.Equal(t, RuleTrailing, d.Rule)
}

func TestBreakoutStopNeedsStrongTrend(t *testing.T) {
	t.Parallel()

	now := time.Now()
	// Adverse move of 4 > 3*ATR, but pick a wide trailing anchor so
	// only the breakout rule is in play.
	in := StopInputs{
		Position:    shortPosition(100, time.Hour, now),
		Price:       104,
		Candles:     guardCandles(110, 90),
		Snap:        indicators.Snapshot{ATR: 1, ADX: 35},
		Now:         now,
		StopLossPct: 10,
	}
	d := CheckStops(in)
	assert.True(t, d.Triggered)
	assert.Equal(t, RuleBreakout, d.Rule)

	// Same move without trend confirmation does not fire.
	in.Snap.ADX = 20
	d = CheckStops(in)
	assert.False(t, d.Triggered)
}

func TestTimeDecayStop(t *testing.T) {
	t.Parallel()

	now := time.Now()
	// Held 7 hours at ~0.5% profit: stale.
	in := StopInputs{
		Position:    shortPosition(100, 7*time.Hour, now),
		Price:       99.5,
		Candles:     guardCandles(110, 90),
		Snap:        indicators.Snapshot{ATR: 5, ADX: 10},
		Now:         now,
		StopLossPct: 5,
	}
	d := CheckStops(in)
	assert.True(t, d.Triggered)
	assert.Equal(t, RuleTimeDecay, d.Rule)

	// A profitable stale position is left alone.
	in.Price = 95
	d = CheckStops(in)
	assert.False(t, d.Triggered)
}

func TestNoStopWhenFlat(t *testing.T) {
	t.Parallel()

	d := CheckStops(StopInputs{Price: 100, Now: time.Now(), StopLossPct: 5})
	assert.False(t, d.Triggered)
}

func TestTakeProfit(t *testing.T) {
	t.Parallel()

	now := time.Now()
	pos := shortPosition(100, time.Hour, now)

	d := TakeProfit(pos, 89, 10)
	assert.True(t, d.Triggered)
	assert.Equal(t, RuleTakeProfit, d.Rule)

	d = TakeProfit(pos, 95, 10)
	assert.False(t, d.Triggered)
}
