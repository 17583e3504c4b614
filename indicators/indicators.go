// Package indicators computes derived series from an ordered candle
// sequence. All series functions return one value per input candle,
// NaN until enough history exists; Compute assembles them into aligned
// snapshots and forward-fills non-finite values past the first valid
// index.
package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/venue"
)

const (
	// MinHistory is the smallest candle count Compute accepts: one
	// more than the RSI/ATR period.
	MinHistory = 15

	// ExtremaWindow is the rolling window for recent high/low and the
	// fibonacci retracement range.
	ExtremaWindow = 50

	// NeutralADX is the explicit fallback when trend strength cannot
	// be computed at all. Neutral rather than zero so downstream
	// threshold checks see "no opinion", not "no trend".
	NeutralADX = 50.0
)

// Snapshot holds the derived values for one candle.
type Snapshot struct {
	RSI float64

	EMA21  float64
	EMA50  float64
	EMA200 float64
	SMA20  float64

	ATR        float64
	ATRPercent float64

	BollUpper  float64
	BollMiddle float64
	BollLower  float64
	BandWidth  float64 // (upper-lower)/middle

	ADX     float64
	DIPlus  float64
	DIMinus float64

	OBV float64

	SuperTrend    float64
	SuperTrendDir int // +1 uptrend, -1 downtrend

	RecentHigh float64
	RecentLow  float64
	Fib382     float64
	Fib500     float64
	Fib618     float64
}

// Compute derives one Snapshot per candle, index-aligned with the
// input. It fails with venue.ErrInsufficientData below MinHistory
// candles; individual sub-calculations that cannot produce any value
// degrade to their neutral default instead of aborting the snapshot.
func Compute(candles []market.Candle) ([]Snapshot, error) {
	n := len(candles)
	if n < MinHistory {
		return nil, fmt.Errorf("%w: need %d candles, got %d", venue.ErrInsufficientData, MinHistory, n)
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	rsi := RSI(closes, 14)
	ema21 := EMA(closes, 21)
	ema50 := EMA(closes, 50)
	ema200 := EMA(closes, 200)
	sma20 := SMA(closes, 20)

	atr := ATR(candles, 14)
	adx, diPlus, diMinus := ADX(candles, 14)
	if !anyFinite(adx) {
		// Trend strength unavailable for the whole series.
		fillConst(adx, NeutralADX)
	}

	upper, middle, lower := Bollinger(closes, 20, 2)
	obv := OBV(candles)
	st, stDir := SuperTrend(candles, 10, 3)

	recentHigh := RollingMax(highs, ExtremaWindow)
	recentLow := RollingMin(lows, ExtremaWindow)

	snaps := make([]Snapshot, n)
	for i := 0; i < n; i++ {
		s := &snaps[i]
		s.RSI = rsi[i]
		s.EMA21 = ema21[i]
		s.EMA50 = ema50[i]
		s.EMA200 = ema200[i]
		s.SMA20 = sma20[i]

		s.ATR = atr[i]
		s.ATRPercent = atr[i] / candles[i].Close * 100

		s.BollUpper = upper[i]
		s.BollMiddle = middle[i]
		s.BollLower = lower[i]
		s.BandWidth = (upper[i] - lower[i]) / middle[i]

		s.ADX = adx[i]
		s.DIPlus = diPlus[i]
		s.DIMinus = diMinus[i]

		s.OBV = obv[i]
		s.SuperTrend = st[i]
		s.SuperTrendDir = stDir[i]

		s.RecentHigh = recentHigh[i]
		s.RecentLow = recentLow[i]
		rng := recentHigh[i] - recentLow[i]
		s.Fib382 = recentLow[i] + rng*0.382
		s.Fib500 = recentLow[i] + rng*0.5
		s.Fib618 = recentLow[i] + rng*0.618
	}

	forwardFill(snaps)
	return snaps, nil
}

var snapshotFields = []func(*Snapshot) *float64{
	func(s *Snapshot) *float64 { return &s.RSI },
	func(s *Snapshot) *float64 { return &s.EMA21 },
	func(s *Snapshot) *float64 { return &s.EMA50 },
	func(s *Snapshot) *float64 { return &s.EMA200 },
	func(s *Snapshot) *float64 { return &s.SMA20 },
	func(s *Snapshot) *float64 { return &s.ATR },
	func(s *Snapshot) *float64 { return &s.ATRPercent },
	func(s *Snapshot) *float64 { return &s.BollUpper },
	func(s *Snapshot) *float64 { return &s.BollMiddle },
	func(s *Snapshot) *float64 { return &s.BollLower },
	func(s *Snapshot) *float64 { return &s.BandWidth },
	func(s *Snapshot) *float64 { return &s.ADX },
	func(s *Snapshot) *float64 { return &s.DIPlus },
	func(s *Snapshot) *float64 { return &s.DIMinus },
	func(s *Snapshot) *float64 { return &s.OBV },
	func(s *Snapshot) *float64 { return &s.SuperTrend },
	func(s *Snapshot) *float64 { return &s.RecentHigh },
	func(s *Snapshot) *float64 { return &s.RecentLow },
	func(s *Snapshot) *float64 { return &s.Fib382 },
	func(s *Snapshot) *float64 { return &s.Fib500 },
	func(s *Snapshot) *float64 { return &s.Fib618 },
}

// forwardFill replaces each non-finite field with the last finite value
// at an earlier index. Leading gaps stay NaN; callers must check with
// math.IsNaN before comparing.
func forwardFill(snaps []Snapshot) {
	for _, field := range snapshotFields {
		last := math.NaN()
		for i := range snaps {
			v := field(&snaps[i])
			if isFinite(*v) {
				last = *v
			} else if isFinite(last) {
				*v = last
			}
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func anyFinite(vs []float64) bool {
	for _, v := range vs {
		if isFinite(v) {
			return true
		}
	}
	return false
}

func fillConst(vs []float64, c float64) {
	for i := range vs {
		vs[i] = c
	}
}

func nans(n int) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = math.NaN()
	}
	return vs
}

// RollingMax returns the maximum over the trailing window at each
// index, NaN until a full window exists.
func RollingMax(values []float64, window int) []float64 {
	out := nans(len(values))
	for i := window - 1; i < len(values); i++ {
		m := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] > m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

// RollingMin is the mirror of RollingMax.
func RollingMin(values []float64, window int) []float64 {
	out := nans(len(values))
	for i := window - 1; i < len(values); i++ {
		m := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] < m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}
