package venue

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rustyeddy/swingbot/market"
)

const (
	// DefaultMaxAttempts caps how often a transient failure is retried.
	DefaultMaxAttempts = 5

	// DefaultBaseDelay is the wait before the first retry; it doubles
	// per attempt up to DefaultMaxDelay.
	DefaultBaseDelay = 1 * time.Second
	DefaultMaxDelay  = 30 * time.Second
)

// Retrier wraps an Exchange and retries transient failures with
// exponential backoff plus jitter. Rejected and Fatal errors pass
// through untouched on the first attempt.
type Retrier struct {
	inner Exchange
	log   *slog.Logger

	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// sleep is replaced in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
	// jitter returns a random fraction in [0,1).
	jitter func() float64
}

// NewRetrier builds a Retrier with the default policy. A nil logger
// falls back to slog.Default.
func NewRetrier(inner Exchange, log *slog.Logger) *Retrier {
	if log == nil {
		log = slog.Default()
	}
	return &Retrier{
		inner:       inner,
		log:         log.With("component", "venue"),
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		sleep:       sleepCtx,
		jitter:      rand.Float64,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoff returns the wait before retry number attempt (1-based):
// base * 2^(attempt-1) plus up to one second of jitter, capped.
func (r *Retrier) backoff(attempt int) time.Duration {
	d := r.BaseDelay << uint(attempt-1)
	d += time.Duration(r.jitter() * float64(time.Second))
	if d > r.MaxDelay {
		d = r.MaxDelay
	}
	return d
}

// do runs call, retrying transient failures. On success after retries
// the attempt count is logged for observability.
func (r *Retrier) do(ctx context.Context, op string, call func() error) error {
	var last error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			if attempt > 1 {
				r.log.Info("venue call recovered", "op", op, "attempts", attempt)
			}
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		last = err
		if attempt == r.MaxAttempts {
			break
		}
		wait := r.backoff(attempt)
		r.log.Warn("transient venue error, backing off",
			"op", op, "attempt", attempt, "wait", wait, "err", err)
		if serr := r.sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	return fmt.Errorf("%s: %d attempts exhausted: %w", op, r.MaxAttempts, last)
}

func (r *Retrier) CurrentPrice(ctx context.Context) (float64, error) {
	var px float64
	err := r.do(ctx, "current-price", func() error {
		var e error
		px, e = r.inner.CurrentPrice(ctx)
		return e
	})
	return px, err
}

func (r *Retrier) Candles(ctx context.Context, tf market.Timeframe, limit int) ([]market.Candle, error) {
	var cs []market.Candle
	err := r.do(ctx, "candles", func() error {
		var e error
		cs, e = r.inner.Candles(ctx, tf, limit)
		return e
	})
	return cs, err
}

func (r *Retrier) OpenPositions(ctx context.Context) ([]OpenPosition, error) {
	var ps []OpenPosition
	err := r.do(ctx, "open-positions", func() error {
		var e error
		ps, e = r.inner.OpenPositions(ctx)
		return e
	})
	return ps, err
}

func (r *Retrier) OpenPosition(ctx context.Context, side market.Side, size float64) (float64, error) {
	var fill float64
	err := r.do(ctx, "open-position", func() error {
		var e error
		fill, e = r.inner.OpenPosition(ctx, side, size)
		return e
	})
	return fill, err
}

func (r *Retrier) ClosePosition(ctx context.Context, side market.Side) error {
	return r.do(ctx, "close-position", func() error {
		return r.inner.ClosePosition(ctx, side)
	})
}

func (r *Retrier) AccountBalance(ctx context.Context) ([]Balance, error) {
	var bs []Balance
	err := r.do(ctx, "account-balance", func() error {
		var e error
		bs, e = r.inner.AccountBalance(ctx)
		return e
	})
	return bs, err
}

func (r *Retrier) TradeHistory(ctx context.Context, limit int) ([]Trade, error) {
	var ts []Trade
	err := r.do(ctx, "trade-history", func() error {
		var e error
		ts, e = r.inner.TradeHistory(ctx, limit)
		return e
	})
	return ts, err
}
