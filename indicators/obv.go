package indicators

import "github.com/rustyeddy/swingbot/market"

// OBV returns the on-balance volume series: cumulative volume signed by
// the direction of the close-to-close change. With no volume data the
// series is all zero; callers decide whether that means "unavailable".
func OBV(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			out[i] = out[i-1] + candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			out[i] = out[i-1] - candles[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}
