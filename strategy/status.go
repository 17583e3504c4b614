package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/swingbot/market"
)

// Status is a point-in-time snapshot of the engine for an external
// control surface.
type Status struct {
	Variant        string
	State          string
	Position       market.Position
	HoldingTime    time.Duration
	StopLossPct    float64
	TakeProfitPct  float64
	PyramidEnabled bool
	MaxPyramids    int
	Volatility     float64
}

func (e *Engine) Status() Status {
	opts := e.store.Snapshot()
	pos := e.machine.Current()
	var held time.Duration
	if pos.Open() {
		held = pos.HoldingTime(e.now())
	}
	return Status{
		Variant:        e.variant.Name(),
		State:          e.machine.State().String(),
		Position:       pos,
		HoldingTime:    held,
		StopLossPct:    opts.StopLossPct,
		TakeProfitPct:  opts.TakeProfitPct,
		PyramidEnabled: opts.PyramidEnabled,
		MaxPyramids:    opts.MaxPyramids,
		Volatility:     e.window.Index(),
	}
}

func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "variant: %s\nstate: %s\n", s.Variant, s.State)
	if s.Position.Open() {
		fmt.Fprintf(&b, "position: %s %.4f at %.2f, %d pyramids, held %s\n",
			s.Position.Side, s.Position.Size, s.Position.EntryPrice,
			s.Position.PyramidCount, s.HoldingTime.Truncate(time.Minute))
	} else {
		b.WriteString("position: none\n")
	}
	fmt.Fprintf(&b, "stop loss: %.1f%%\ntake profit: %.1f%%\n", s.StopLossPct, s.TakeProfitPct)
	fmt.Fprintf(&b, "pyramiding: %t (max %d)\n", s.PyramidEnabled, s.MaxPyramids)
	fmt.Fprintf(&b, "volatility index: %.1f\n", s.Volatility)
	return b.String()
}

// AccountReport assembles a human-readable account summary from the
// venue: balances, the current position and the latest price.
func (e *Engine) AccountReport(ctx context.Context) (string, error) {
	opts := e.store.Snapshot()

	balances, err := e.x.AccountBalance(ctx)
	if err != nil {
		return "", fmt.Errorf("account balance: %w", err)
	}
	price, err := e.x.CurrentPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("current price: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "account report %s\n", e.now().Format(time.RFC3339))
	fmt.Fprintf(&b, "%s price: %.2f\n", opts.Symbol, price)
	for _, bal := range balances {
		fmt.Fprintf(&b, "balance %s: %.4f available of %.4f\n", bal.Currency, bal.Available, bal.Total)
	}
	pos := e.machine.Current()
	if pos.Open() {
		fmt.Fprintf(&b, "position: %s %.4f at %.2f, unrealized %.2f%%\n",
			pos.Side, pos.Size, pos.EntryPrice, pos.PnLPercent(price))
	} else {
		b.WriteString("position: none\n")
	}

	trades, err := e.x.TradeHistory(ctx, 5)
	if err == nil && len(trades) > 0 {
		b.WriteString("recent trades:\n")
		for _, t := range trades {
			fmt.Fprintf(&b, "  %s %s %.4f at %.2f (%s)\n",
				t.Time.Format("01-02 15:04"), t.Side, t.Size, t.Price, t.Reason)
		}
	}
	return b.String(), nil
}
