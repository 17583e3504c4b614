// Package venue defines the contract with the trading venue, the error
// taxonomy for failed calls, and the retry wrapper that makes an
// unreliable connection usable by the decision loop.
//
// The wire-level authentication/REST binding is an external
// collaborator: anything implementing Exchange can be wrapped by the
// Retrier and driven by the strategy engine.
package venue

import (
	"context"
	"time"

	"github.com/rustyeddy/swingbot/market"
)

// OpenPosition is one venue-reported open position, the authoritative
// view the state machine resynchronizes from each cycle.
type OpenPosition struct {
	Side     market.Side
	Size     float64
	AvgPrice float64
}

// Balance is one currency balance on the trading account.
type Balance struct {
	Currency  string
	Available float64
	Total     float64
}

// Trade is one historical fill.
type Trade struct {
	ID     string
	Time   time.Time
	Side   market.Side
	Price  float64
	Size   float64
	Reason string
}

// Exchange is the set of typed venue operations the engine consumes.
// Implementations classify failures with the Kind taxonomy; callers
// use errors.Is/As and the Is* helpers, never string matching.
type Exchange interface {
	// CurrentPrice returns the last traded price.
	CurrentPrice(ctx context.Context) (float64, error)

	// Candles returns up to limit closed candles, oldest first.
	// Returns ErrInsufficientData when no history is available.
	Candles(ctx context.Context, tf market.Timeframe, limit int) ([]market.Candle, error)

	// OpenPositions returns all currently open positions for the
	// configured instrument.
	OpenPositions(ctx context.Context) ([]OpenPosition, error)

	// OpenPosition submits a market order of the given side and size
	// and returns the fill price on acknowledgement.
	OpenPosition(ctx context.Context, side market.Side, size float64) (float64, error)

	// ClosePosition closes the whole position on the given side.
	ClosePosition(ctx context.Context, side market.Side) error

	// AccountBalance returns the account balances.
	AccountBalance(ctx context.Context) ([]Balance, error)

	// TradeHistory returns up to limit recent fills, oldest first.
	TradeHistory(ctx context.Context, limit int) ([]Trade, error)
}
