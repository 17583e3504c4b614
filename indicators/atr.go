package indicators

import (
	"math"

	"github.com/rustyeddy/swingbot/market"
)

// ATR returns the average true range series using Wilder's smoothing.
// The first value appears at index period (true range needs a previous
// candle).
func ATR(candles []market.Candle, period int) []float64 {
	out := nans(len(candles))
	if period <= 0 || len(candles) < period+1 {
		return out
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += trueRange(candles[i], candles[i-1])
	}
	atr := sum / float64(period)
	out[period] = atr

	p := float64(period)
	for i := period + 1; i < len(candles); i++ {
		tr := trueRange(candles[i], candles[i-1])
		atr = (atr*(p-1) + tr) / p
		out[i] = atr
	}
	return out
}

// trueRange is the largest of high-low, |high-prevClose|, |low-prevClose|.
func trueRange(current, previous market.Candle) float64 {
	hl := current.High - current.Low
	hc := math.Abs(current.High - previous.Close)
	lc := math.Abs(current.Low - previous.Close)
	return math.Max(hl, math.Max(hc, lc))
}
