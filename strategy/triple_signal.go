package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/swingbot/indicators"
	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/pyramid"
	"github.com/rustyeddy/swingbot/risk"
	"github.com/rustyeddy/swingbot/venue"
)

// TripleSignal is the flagship short strategy. With a position open it
// guards it: stop rules first, then take-profit, then a possible
// pyramid addition, at most one action per cycle. Flat, it requires
// the daily trend, four-hour consolidation and hourly entry evaluators
// to all agree before opening a short sized by recent volatility.
type TripleSignal struct{}

const guardCandleLimit = 50

func (s *TripleSignal) Name() string { return "triple_signal" }

func (s *TripleSignal) Decide(ctx context.Context, env *Env) (Intent, error) {
	if env.Position.Open() {
		return s.guard(ctx, env)
	}
	return s.seek(ctx, env)
}

// guard protects an open position. Rule order is fixed: the fixed
// stop outranks everything else, and a triggered exit preempts any
// pyramid consideration.
func (s *TripleSignal) guard(ctx context.Context, env *Env) (Intent, error) {
	candles, err := env.Exchange.Candles(ctx, market.M15, guardCandleLimit)
	if err != nil {
		if errors.Is(err, venue.ErrInsufficientData) {
			env.Log.Warn("guard skipped, not enough candles", "error", err)
			return hold("insufficient data for position guard"), nil
		}
		return Intent{}, fmt.Errorf("guard candles: %w", err)
	}
	snaps, err := indicators.Compute(candles)
	if err != nil {
		if errors.Is(err, venue.ErrInsufficientData) {
			env.Log.Warn("guard skipped, not enough candles", "error", err)
			return hold("insufficient data for position guard"), nil
		}
		return Intent{}, err
	}
	snap := snaps[len(snaps)-1]

	if d := risk.CheckStops(risk.StopInputs{
		Position:    env.Position,
		Price:       env.Price,
		Candles:     candles,
		Snap:        snap,
		Now:         env.Now,
		StopLossPct: env.Options.StopLossPct,
	}); d.Triggered {
		return Intent{Kind: Close, Side: env.Position.Side, Rule: d.Rule, Reason: d.Reason}, nil
	}

	if d := risk.TakeProfit(env.Position, env.Price, env.Options.TakeProfitPct); d.Triggered {
		return Intent{Kind: Close, Side: env.Position.Side, Rule: d.Rule, Reason: d.Reason}, nil
	}

	if env.Options.PyramidEnabled {
		d := pyramid.Check(pyramid.Inputs{
			Position:    env.Position,
			Price:       env.Price,
			Candles:     candles,
			Snap:        snap,
			Enabled:     true,
			MaxPyramids: env.Options.MaxPyramids,
		})
		if d.Add {
			meta := market.Instruments[env.Options.Symbol]
			size := pyramid.AddSize(env.Options.BaseSize, env.Position.PyramidCount, meta.SizeIncrement)
			return Intent{Kind: Pyramid, Side: env.Position.Side, Size: size, Reason: d.Reason}, nil
		}
	}

	return hold(fmt.Sprintf("holding %s, pnl %.2f%%",
		env.Position.Side, env.Position.PnLPercent(env.Price))), nil
}

// seek looks for a fresh short entry.
func (s *TripleSignal) seek(ctx context.Context, env *Env) (Intent, error) {
	dec := env.Detector.Evaluate(ctx)
	if !dec.Enter() {
		return hold("no entry: " + dec.Summary()), nil
	}

	meta := market.Instruments[env.Options.Symbol]
	size := risk.PositionSize(risk.SizeInputs{
		BaseSize:        env.Options.BaseSize,
		MinSize:         env.Options.MinSize,
		MaxSize:         env.Options.MaxSize,
		Increment:       meta.SizeIncrement,
		VolatilityIndex: env.Window.Index(),
	})
	if size <= 0 {
		return hold("entry signal but size rounded to zero"), nil
	}

	return Intent{
		Kind:   Open,
		Side:   market.Short,
		Size:   size,
		Reason: "entry: " + dec.Summary(),
	}, nil
}
