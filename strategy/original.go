package strategy

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/swingbot/config"
	"github.com/rustyeddy/swingbot/indicators"
	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/venue"
)

// Original is the single-timeframe oscillation short strategy that
// predates the triple-signal composite. It shorts into weakness on
// the hourly chart: an overbought oscillator rolling over, a bearish
// average cross, or an upper-band touch, each confirmed by three
// consecutive declining closes. It only ever holds shorts; an
// adopted long is closed.
type Original struct{}

const (
	origCandleLimit   = 100
	origRSIOverbought = 60.0
	origRSIOversold   = 40.0
)

func (s *Original) Name() string { return "original" }

// params returns the configured tuning for this variant, falling back
// to the built-in defaults when the table has no entry.
func (s *Original) params(env *Env) config.VariantParams {
	p, ok := env.Options.Params[s.Name()]
	if !ok {
		return config.VariantParams{
			RSIOverbought: origRSIOverbought,
			RSIOversold:   origRSIOversold,
			CandleLimit:   origCandleLimit,
		}
	}
	if p.CandleLimit == 0 {
		p.CandleLimit = origCandleLimit
	}
	return p
}

func (s *Original) Decide(ctx context.Context, env *Env) (Intent, error) {
	p := s.params(env)
	candles, err := env.Exchange.Candles(ctx, market.H1, p.CandleLimit)
	if err != nil {
		if errors.Is(err, venue.ErrInsufficientData) {
			env.Log.Warn("decision skipped, not enough candles", "error", err)
			return hold("insufficient data"), nil
		}
		return Intent{}, fmt.Errorf("hourly candles: %w", err)
	}
	snaps, err := indicators.Compute(candles)
	if err != nil {
		if errors.Is(err, venue.ErrInsufficientData) {
			env.Log.Warn("decision skipped, not enough candles", "error", err)
			return hold("insufficient data"), nil
		}
		return Intent{}, err
	}

	switch env.Position.Side {
	case market.Long:
		// This strategy is short-only.
		return Intent{
			Kind:   Close,
			Side:   market.Long,
			Rule:   "short-only",
			Reason: "long position not part of this strategy, closing",
		}, nil

	case market.Short:
		if rule, reason, ok := shouldCloseShort(env, p, candles, snaps); ok {
			return Intent{Kind: Close, Side: market.Short, Rule: rule, Reason: reason}, nil
		}
		return hold(fmt.Sprintf("holding short, entry %.2f, pnl %.2f%%",
			env.Position.EntryPrice, env.Position.PnLPercent(env.Price))), nil

	default:
		if reason, ok := shouldOpenShort(p, candles, snaps); ok {
			return Intent{Kind: Open, Side: market.Short, Size: env.Options.BaseSize, Reason: reason}, nil
		}
		return hold("watching, no signal"), nil
	}
}

// shouldOpenShort requires one of three weakness signals plus a
// three-bar downtrend filter.
func shouldOpenShort(p config.VariantParams, candles []market.Candle, snaps []indicators.Snapshot) (string, bool) {
	n := len(candles)
	if n < 4 {
		return "", false
	}
	last, prev := snaps[n-1], snaps[n-2]
	close := candles[n-1].Close

	if math.IsNaN(last.RSI) || math.IsNaN(prev.RSI) ||
		math.IsNaN(last.EMA21) || math.IsNaN(prev.EMA21) ||
		math.IsNaN(last.EMA50) || math.IsNaN(prev.EMA50) ||
		math.IsNaN(last.BollUpper) {
		return "", false
	}

	rsiRollover := last.RSI < prev.RSI && last.RSI > p.RSIOverbought
	bearCross := prev.EMA21 > prev.EMA50 && last.EMA21 < last.EMA50
	upperTouch := close >= last.BollUpper

	downtrend := candles[n-2].Close < candles[n-3].Close && candles[n-3].Close < candles[n-4].Close

	if !downtrend {
		return "", false
	}
	switch {
	case rsiRollover:
		return "overbought oscillator rolling over in a downtrend", true
	case bearCross:
		return "bearish average cross in a downtrend", true
	case upperTouch:
		return "upper band touch in a downtrend", true
	}
	return "", false
}

// shouldCloseShort exits on an oversold oscillator, a lower-band
// touch, or the fixed stop-loss/take-profit thresholds.
func shouldCloseShort(env *Env, p config.VariantParams, candles []market.Candle, snaps []indicators.Snapshot) (string, string, bool) {
	n := len(candles)
	last := snaps[n-1]
	close := candles[n-1].Close

	if !math.IsNaN(last.RSI) && last.RSI < p.RSIOversold {
		return "oversold", fmt.Sprintf("oscillator oversold at %.1f", last.RSI), true
	}
	if !math.IsNaN(last.BollLower) && close <= last.BollLower {
		return "lower-band", fmt.Sprintf("close %.2f at lower band %.2f", close, last.BollLower), true
	}

	pnl := env.Position.PnLPercent(env.Price)
	if pnl <= -env.Options.StopLossPct {
		return "fixed", fmt.Sprintf("stop loss: %.2f%% beyond %.2f%%", pnl, env.Options.StopLossPct), true
	}
	if pnl >= env.Options.TakeProfitPct {
		return "take-profit", fmt.Sprintf("take profit: %.2f%% beyond %.2f%%", pnl, env.Options.TakeProfitPct), true
	}
	return "", "", false
}
