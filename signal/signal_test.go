package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/venue"
)

var base = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func downtrend(n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		c := 300 - 2*float64(i)
		out[i] = market.Candle{
			Time: base.Add(time.Duration(i) * 24 * time.Hour),
			Open: c + 1, High: c + 1.5, Low: c - 1.5, Close: c, Volume: 100,
		}
	}
	return out
}

func sideways(n int, volume float64) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{
			Time: base.Add(time.Duration(i) * time.Hour),
			Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: volume,
		}
	}
	return out
}

func TestTrendTrueInStrongDowntrend(t *testing.T) {
	t.Parallel()

	x := venue.NewPaper(100)
	x.SetCandles(market.D1, downtrend(60))

	r := NewDetector(x, nil).Trend(context.Background())
	assert.Equal(t, True, r.Status, r.Detail)
}

func TestTrendFalseSideways(t *testing.T) {
	t.Parallel()

	x := venue.NewPaper(100)
	x.SetCandles(market.D1, sideways(60, 100))

	r := NewDetector(x, nil).Trend(context.Background())
	assert.Equal(t, False, r.Status, r.Detail)
}

func TestTrendUndeterminedWithoutData(t *testing.T) {
	t.Parallel()

	x := venue.NewPaper(100)
	r := NewDetector(x, nil).Trend(context.Background())
	assert.Equal(t, Undetermined, r.Status)
}

func TestTrendUndeterminedWithShortHistory(t *testing.T) {
	t.Parallel()

	x := venue.NewPaper(100)
	x.SetCandles(market.D1, downtrend(20))

	r := NewDetector(x, nil).Trend(context.Background())
	assert.Equal(t, Undetermined, r.Status)
}

func TestConsolidationTightRange(t *testing.T) {
	t.Parallel()

	x := venue.NewPaper(100)
	x.SetCandles(market.H4, sideways(60, 100))

	r := NewDetector(x, nil).Consolidation(context.Background())
	assert.Equal(t, True, r.Status, r.Detail)
}

func TestConsolidationFalseInVolatileMarket(t *testing.T) {
	t.Parallel()

	x := venue.NewPaper(100)
	x.SetCandles(market.H4, downtrend(60))

	r := NewDetector(x, nil).Consolidation(context.Background())
	assert.Equal(t, False, r.Status, r.Detail)
}

func TestEntryTrueWithoutVolumeData(t *testing.T) {
	t.Parallel()

	// Flat market above the retracement with no volume reported: the
	// divergence requirement is waived.
	x := venue.NewPaper(100)
	x.SetCandles(market.H1, sideways(60, 0))

	r := NewDetector(x, nil).Entry(context.Background())
	assert.Equal(t, True, r.Status, r.Detail)
}

func TestEntryRequiresDivergenceWithVolume(t *testing.T) {
	t.Parallel()

	// Same market but with volume present and no divergence.
	x := venue.NewPaper(100)
	x.SetCandles(market.H1, sideways(60, 100))

	r := NewDetector(x, nil).Entry(context.Background())
	assert.Equal(t, False, r.Status, r.Detail)
}

func TestEvaluateRequiresAllThree(t *testing.T) {
	t.Parallel()

	x := venue.NewPaper(100)
	x.SetCandles(market.D1, downtrend(60))
	x.SetCandles(market.H4, sideways(60, 100))
	x.SetCandles(market.H1, sideways(60, 0))

	dec := NewDetector(x, nil).Evaluate(context.Background())
	require.True(t, dec.Enter(), dec.Summary())

	// Dropping one timeframe's data must block entry, not error out.
	x.SetCandles(market.H4, nil)
	dec = NewDetector(x, nil).Evaluate(context.Background())
	assert.False(t, dec.Enter())
	assert.Equal(t, Undetermined, dec.Consolidation.Status)
	assert.Equal(t, True, dec.Trend.Status)
}

func TestDecisionSummary(t *testing.T) {
	t.Parallel()

	d := Decision{
		Trend:         Result{Status: True},
		Consolidation: Result{Status: False},
		Entry:         Result{Status: Undetermined},
	}
	assert.Equal(t, "trend=yes consolidation=no entry=n/a", d.Summary())
	assert.False(t, d.Enter())
}
