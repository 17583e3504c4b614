package pyramid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/swingbot/indicators"
	"github.com/rustyeddy/swingbot/market"
)

// decliningCandles ends on a fresh 10-bar low, the favorable extreme
// for a short.
func decliningCandles(n int) []market.Candle {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		c := 200 - float64(i)
		out[i] = market.Candle{
			Time: base.Add(time.Duration(i) * 15 * time.Minute),
			Open: c + 1, High: c + 2, Low: c - 1, Close: c,
		}
	}
	return out
}

func shortPos(count int, lastPyramid float64) market.Position {
	return market.Position{
		Side:             market.Short,
		EntryPrice:       200,
		Size:             0.01,
		EntryTime:        time.Now().Add(-2 * time.Hour),
		PyramidCount:     count,
		LastPyramidPrice: lastPyramid,
	}
}

func TestCheckAddsWhenAllConditionsHold(t *testing.T) {
	t.Parallel()

	d := Check(Inputs{
		Position:    shortPos(0, 200),
		Price:       180,
		Candles:     decliningCandles(30),
		Snap:        indicators.Snapshot{RSI: 55, ATR: 2},
		Enabled:     true,
		MaxPyramids: 3,
	})
	assert.True(t, d.Add, d.Reason)
}

func TestCheckDisabled(t *testing.T) {
	t.Parallel()

	d := Check(Inputs{
		Position:    shortPos(0, 200),
		Price:       180,
		Candles:     decliningCandles(30),
		Snap:        indicators.Snapshot{RSI: 55, ATR: 2},
		Enabled:     false,
		MaxPyramids: 3,
	})
	assert.False(t, d.Add)
}

func TestCheckRespectsCap(t *testing.T) {
	t.Parallel()

	d := Check(Inputs{
		Position:    shortPos(3, 200),
		Price:       180,
		Candles:     decliningCandles(30),
		Snap:        indicators.Snapshot{RSI: 55, ATR: 2},
		Enabled:     true,
		MaxPyramids: 3,
	})
	assert.False(t, d.Add)
	assert.Contains(t, d.Reason, "cap")
}

func TestCheckRejectsReversedOscillator(t *testing.T) {
	t.Parallel()

	// RSI at 35 means the short's momentum has reversed.
	d := Check(Inputs{
		Position:    shortPos(0, 200),
		Price:       180,
		Candles:     decliningCandles(30),
		Snap:        indicators.Snapshot{RSI: 35, ATR: 2},
		Enabled:     true,
		MaxPyramids: 3,
	})
	assert.False(t, d.Add)
}

func TestCheckRequiresSpacing(t *testing.T) {
	t.Parallel()

	// Last addition at 182, price 180, ATR 2: only 2 away, needs 4.
	d := Check(Inputs{
		Position:    shortPos(1, 182),
		Price:       180,
		Candles:     decliningCandles(30),
		Snap:        indicators.Snapshot{RSI: 55, ATR: 2},
		Enabled:     true,
		MaxPyramids: 3,
	})
	assert.False(t, d.Add)
}

func TestAddSizeHalvesEachLevel(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.004, AddSize(0.008, 0, 0.001), 1e-12)
	assert.InDelta(t, 0.002, AddSize(0.008, 1, 0.001), 1e-12)
	assert.InDelta(t, 0.001, AddSize(0.008, 2, 0.001), 1e-12)
	// Never below one increment.
	assert.InDelta(t, 0.001, AddSize(0.008, 5, 0.001), 1e-12)
}

func TestApplyWeightedEntry(t *testing.T) {
	t.Parallel()

	pos := market.Position{
		Side:             market.Short,
		EntryPrice:       200,
		Size:             0.01,
		PyramidCount:     0,
		LastPyramidPrice: 200,
	}

	got := Apply(pos, 180, 0.005)

	assert.InDelta(t, 0.015, got.Size, 1e-12)
	// (200*0.01 + 180*0.005) / 0.015
	assert.InDelta(t, 193.3333333333, got.EntryPrice, 1e-6)
	assert.Equal(t, 1, got.PyramidCount)
	assert.InDelta(t, 180, got.LastPyramidPrice, 1e-12)
}
