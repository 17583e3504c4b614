package strategy

import (
	"context"
	"log/slog"
	"time"

	"github.com/rustyeddy/swingbot/config"
	"github.com/rustyeddy/swingbot/venue"
)

// Runner drives the engine on the configured interval. Cycles never
// overlap; cancellation is observed between cycles. A fatal venue
// error stops the loop, everything else is logged and the next cycle
// proceeds.
type Runner struct {
	engine *Engine
	store  *config.Store
	log    *slog.Logger
}

func NewRunner(engine *Engine, store *config.Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{engine: engine, store: store, log: log.With("component", "runner")}
}

// Run loops until ctx is cancelled or a fatal error surfaces. The
// interval is re-read each cycle so runtime config changes apply
// without restart.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("decision loop started", "interval", r.store.Snapshot().CheckInterval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("decision loop stopped", "cause", ctx.Err())
			return nil
		case <-timer.C:
		}

		if err := r.engine.RunCycle(ctx); err != nil {
			if venue.IsFatal(err) {
				r.log.Error("fatal venue error, stopping", "error", err)
				return err
			}
			r.log.Error("cycle failed", "error", err)
		}

		timer.Reset(r.store.Snapshot().CheckInterval)
	}
}
