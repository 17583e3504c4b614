// Package market holds the core market data types shared by every other
// package: candles, timeframes, sides and positions.
package market

import "time"

// Candle is one OHLCV bar. Fetched sequences are ordered ascending by
// Time with no duplicate timestamps.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Timeframe identifies a candle granularity in venue notation.
type Timeframe string

const (
	M15 Timeframe = "15m"
	H1  Timeframe = "1H"
	H4  Timeframe = "4H"
	D1  Timeframe = "1D"
)

// HasVolume reports whether the sequence carries usable volume data.
// Some venues return zero volume for derived candles; evaluators that
// need volume treat such a series as "volume unavailable".
func HasVolume(candles []Candle) bool {
	for _, c := range candles {
		if c.Volume > 0 {
			return true
		}
	}
	return false
}
