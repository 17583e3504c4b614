// Package pyramid decides whether to add to a winning position and
// applies confirmed fills to the weighted-average entry price.
package pyramid

import (
	"fmt"
	"math"

	"github.com/rustyeddy/swingbot/indicators"
	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/risk"
)

const (
	// extremeWindow is how many recent closes the price must beat to
	// count as a new extreme in the position's favor.
	extremeWindow = 10

	// minSpacingATR keeps successive additions at least this many ATRs
	// apart to prevent over-dense re-entries.
	minSpacingATR = 2.0
)

// Inputs carry the state one pyramid check reads.
type Inputs struct {
	Position    market.Position
	Price       float64
	Candles     []market.Candle // fine timeframe, newest last
	Snap        indicators.Snapshot
	Enabled     bool
	MaxPyramids int
}

// Decision reports whether an addition should be made and why (not).
type Decision struct {
	Add    bool
	Reason string
}

// Check evaluates the pyramid preconditions and conditions. All three
// market conditions must hold: oscillator not reversed against the
// position, a new favorable extreme, and enough distance from the last
// addition.
func Check(in Inputs) Decision {
	if !in.Enabled || !in.Position.Open() {
		return Decision{Reason: "pyramiding disabled or no position"}
	}
	if in.Position.PyramidCount >= in.MaxPyramids {
		return Decision{Reason: fmt.Sprintf("pyramid cap reached (%d/%d)", in.Position.PyramidCount, in.MaxPyramids)}
	}
	if len(in.Candles) < extremeWindow || math.IsNaN(in.Snap.RSI) || math.IsNaN(in.Snap.ATR) {
		return Decision{Reason: "insufficient data for pyramid check"}
	}

	// Oscillator must not have reversed against the position.
	var rsiOK bool
	if in.Position.Side == market.Short {
		rsiOK = in.Snap.RSI > 40
	} else {
		rsiOK = in.Snap.RSI < 60
	}

	// New extreme over the last observations in the favorable direction.
	recent := in.Candles[len(in.Candles)-extremeWindow:]
	last := recent[len(recent)-1].Close
	newExtreme := true
	for _, c := range recent[:len(recent)-1] {
		if in.Position.Side == market.Short && c.Close <= last {
			newExtreme = false
			break
		}
		if in.Position.Side == market.Long && c.Close >= last {
			newExtreme = false
			break
		}
	}

	// Spacing from the last addition.
	spacing := math.Inf(1)
	if in.Position.LastPyramidPrice > 0 {
		spacing = math.Abs(in.Price - in.Position.LastPyramidPrice)
	}
	spacingOK := spacing >= minSpacingATR*in.Snap.ATR

	if rsiOK && newExtreme && spacingOK {
		return Decision{
			Add: true,
			Reason: fmt.Sprintf("pyramid conditions met (%d/%d used)",
				in.Position.PyramidCount, in.MaxPyramids),
		}
	}
	return Decision{Reason: fmt.Sprintf("pyramid conditions not met: rsi=%t extreme=%t spacing=%t",
		rsiOK, newExtreme, spacingOK)}
}

// AddSize returns the size of the next addition: half the previous one
// each time, floored at the venue increment.
func AddSize(baseSize float64, pyramidCount int, increment float64) float64 {
	size := baseSize * math.Pow(0.5, float64(pyramidCount+1))
	size = risk.RoundToIncrement(size, increment)
	if size < increment {
		size = increment
	}
	return size
}

// Apply folds a confirmed fill into the position: bumps the count,
// re-anchors the last pyramid price and recomputes the size-weighted
// average entry.
func Apply(pos market.Position, fillPrice, addSize float64) market.Position {
	oldValue := pos.EntryPrice * pos.Size
	newValue := fillPrice * addSize
	pos.Size += addSize
	pos.EntryPrice = (oldValue + newValue) / pos.Size
	pos.PyramidCount++
	pos.LastPyramidPrice = fillPrice
	return pos
}
