package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/swingbot/indicators"
	"github.com/rustyeddy/swingbot/market"
)

// Stop rule identifiers, in evaluation priority order. The first rule
// to fire wins and later rules are not evaluated.
const (
	RuleFixed      = "fixed"
	RuleTrailing   = "trailing"
	RuleBreakout   = "breakout"
	RuleTimeDecay  = "time-decay"
	RuleTakeProfit = "take-profit"
)

const (
	trailingATRMult = 2.0
	breakoutATRMult = 3.0
	breakoutADXMin  = 30.0
	decayHorizon    = 6 * time.Hour
	decayMinProfit  = 1.0 // percent
)

// StopInputs carry everything the stop rules look at for one check.
// Candles are the recent fine-timeframe bars (3 suffice for the
// trailing anchor); Snap is the latest indicator snapshot over them.
type StopInputs struct {
	Position    market.Position
	Price       float64
	Candles     []market.Candle
	Snap        indicators.Snapshot
	Now         time.Time
	StopLossPct float64
}

// Decision is the outcome of a stop or take-profit check.
type Decision struct {
	Triggered bool
	Rule      string
	Reason    string
}

// CheckStops evaluates the four stop-loss rules in fixed priority:
// fixed threshold, anchored trailing, volatility breakout, time decay.
// Evaluation short-circuits on the first rule that fires.
func CheckStops(in StopInputs) Decision {
	if !in.Position.Open() {
		return Decision{}
	}

	rules := []func(StopInputs) Decision{
		fixedStop,
		trailingStop,
		breakoutStop,
		timeDecayStop,
	}
	for _, rule := range rules {
		if d := rule(in); d.Triggered {
			return d
		}
	}
	return Decision{}
}

func fixedStop(in StopInputs) Decision {
	pnl := in.Position.PnLPercent(in.Price)
	if pnl <= -in.StopLossPct {
		return Decision{
			Triggered: true,
			Rule:      RuleFixed,
			Reason:    fmt.Sprintf("fixed stop: loss %.2f%% beyond %.2f%%", pnl, in.StopLossPct),
		}
	}
	return Decision{}
}

// trailingStop anchors to the recent 3-bar extreme plus an ATR cushion,
// bounded so the stop is never tighter than 2% from entry.
func trailingStop(in StopInputs) Decision {
	if len(in.Candles) < 3 || math.IsNaN(in.Snap.ATR) {
		return Decision{}
	}
	recent := in.Candles[len(in.Candles)-3:]

	switch in.Position.Side {
	case market.Short:
		high := recent[0].High
		for _, c := range recent[1:] {
			if c.High > high {
				high = c.High
			}
		}
		stop := math.Max(high+trailingATRMult*in.Snap.ATR, in.Position.EntryPrice*1.02)
		if in.Price >= stop {
			return Decision{
				Triggered: true,
				Rule:      RuleTrailing,
				Reason:    fmt.Sprintf("trailing stop: price %.2f above anchor %.2f", in.Price, stop),
			}
		}
	case market.Long:
		low := recent[0].Low
		for _, c := range recent[1:] {
			if c.Low < low {
				low = c.Low
			}
		}
		stop := math.Min(low-trailingATRMult*in.Snap.ATR, in.Position.EntryPrice*0.98)
		if in.Price <= stop {
			return Decision{
				Triggered: true,
				Rule:      RuleTrailing,
				Reason:    fmt.Sprintf("trailing stop: price %.2f below anchor %.2f", in.Price, stop),
			}
		}
	}
	return Decision{}
}

// breakoutStop fires when price has moved adversely by more than 3 ATR
// and the trend-strength index confirms a strong trend has emerged.
func breakoutStop(in StopInputs) Decision {
	if math.IsNaN(in.Snap.ATR) || math.IsNaN(in.Snap.ADX) {
		return Decision{}
	}
	var adverse float64
	switch in.Position.Side {
	case market.Short:
		adverse = in.Price - in.Position.EntryPrice
	case market.Long:
		adverse = in.Position.EntryPrice - in.Price
	}
	if adverse > breakoutATRMult*in.Snap.ATR && in.Snap.ADX > breakoutADXMin {
		return Decision{
			Triggered: true,
			Rule:      RuleBreakout,
			Reason: fmt.Sprintf("breakout stop: adverse move %.2f beyond %.2f, ADX %.1f",
				adverse, breakoutATRMult*in.Snap.ATR, in.Snap.ADX),
		}
	}
	return Decision{}
}

// timeDecayStop exits stale positions: held past the horizon without
// meaningful profit.
func timeDecayStop(in StopInputs) Decision {
	held := in.Position.HoldingTime(in.Now)
	pnl := in.Position.PnLPercent(in.Price)
	if held > decayHorizon && pnl < decayMinProfit {
		return Decision{
			Triggered: true,
			Rule:      RuleTimeDecay,
			Reason:    fmt.Sprintf("time-decay stop: held %s with profit %.2f%%", held.Truncate(time.Minute), pnl),
		}
	}
	return Decision{}
}

// TakeProfit fires when unrealized profit reaches the configured
// percentage.
func TakeProfit(pos market.Position, price, takeProfitPct float64) Decision {
	if !pos.Open() {
		return Decision{}
	}
	pnl := pos.PnLPercent(price)
	if pnl >= takeProfitPct {
		return Decision{
			Triggered: true,
			Rule:      RuleTakeProfit,
			Reason:    fmt.Sprintf("take profit: gain %.2f%% beyond %.2f%%", pnl, takeProfitPct),
		}
	}
	return Decision{}
}
