package indicators

import (
	"math"

	"github.com/rustyeddy/swingbot/market"
)

// SuperTrend returns the ATR-derived trend line and its direction flag
// (+1 uptrend, -1 downtrend). The line sits below price in an uptrend
// and above it in a downtrend, so close < line means downtrend.
//
// Before the ATR warms up the line degrades to the close and the
// direction to +1, mirroring the neutral fallback the rest of the
// snapshot uses.
func SuperTrend(candles []market.Candle, period int, mult float64) ([]float64, []int) {
	n := len(candles)
	line := make([]float64, n)
	dir := make([]int, n)
	atr := ATR(candles, period)

	upperFinal := math.NaN()
	lowerFinal := math.NaN()
	trend := +1
	for i := 0; i < n; i++ {
		if math.IsNaN(atr[i]) {
			line[i] = candles[i].Close
			dir[i] = +1
			continue
		}

		hl2 := (candles[i].High + candles[i].Low) / 2
		upperBasic := hl2 + mult*atr[i]
		lowerBasic := hl2 - mult*atr[i]

		prevClose := candles[i-1].Close
		if math.IsNaN(upperFinal) || upperBasic < upperFinal || prevClose > upperFinal {
			upperFinal = upperBasic
		}
		if math.IsNaN(lowerFinal) || lowerBasic > lowerFinal || prevClose < lowerFinal {
			lowerFinal = lowerBasic
		}

		close := candles[i].Close
		switch {
		case close > upperFinal:
			trend = +1
		case close < lowerFinal:
			trend = -1
		}

		if trend > 0 {
			line[i] = lowerFinal
		} else {
			line[i] = upperFinal
		}
		dir[i] = trend
	}
	return line, dir
}
