package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/swingbot/config"
	"github.com/rustyeddy/swingbot/id"
	"github.com/rustyeddy/swingbot/journal"
	"github.com/rustyeddy/swingbot/notify"
	"github.com/rustyeddy/swingbot/position"
	"github.com/rustyeddy/swingbot/pyramid"
	"github.com/rustyeddy/swingbot/risk"
	"github.com/rustyeddy/swingbot/signal"
	"github.com/rustyeddy/swingbot/venue"
)

// Engine executes one variant against one venue. It owns the position
// machine and the volatility window; variants only ever see read-only
// snapshots and return intents, which the engine turns into orders.
type Engine struct {
	x        venue.Exchange
	store    *config.Store
	variant  Variant
	machine  *position.Machine
	window   *risk.VolatilityWindow
	detector *signal.Detector
	jnl      journal.Journal
	hub      *notify.Hub
	baseLog  *slog.Logger
	log      *slog.Logger
	now      func() time.Time
}

func NewEngine(x venue.Exchange, store *config.Store, jnl journal.Journal, hub *notify.Hub, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	if jnl == nil {
		jnl = journal.Nop{}
	}

	opts := store.Snapshot()
	variant, err := ByName(opts.Variant)
	if err != nil {
		return nil, err
	}
	if !Implemented(opts.Variant) {
		return nil, fmt.Errorf("%s: %w", opts.Variant, ErrNotImplemented)
	}

	return &Engine{
		x:        x,
		store:    store,
		variant:  variant,
		machine:  position.NewMachine(),
		window:   risk.NewVolatilityWindow(risk.DefaultWindowSize),
		detector: signal.NewDetector(x, log),
		jnl:      jnl,
		hub:      hub,
		baseLog:  log,
		log:      log.With("component", "engine", "variant", variant.Name()),
		now:      time.Now,
	}, nil
}

// syncVariant re-resolves the variant when a runtime config change
// selected a different one. A switch to a placeholder takes effect too;
// its decision then reports not-implemented every cycle.
func (e *Engine) syncVariant(name string) error {
	if config.NormalizeVariant(name) == e.variant.Name() {
		return nil
	}
	v, err := ByName(name)
	if err != nil {
		return fmt.Errorf("switch variant: %w", err)
	}
	e.log.Info("variant switched", "from", e.variant.Name(), "to", v.Name())
	e.variant = v
	e.log = e.baseLog.With("component", "engine", "variant", v.Name())
	return nil
}

// RunCycle performs one decision cycle: resync the position from the
// venue, observe the price, ask the variant for an intent and execute
// it. At most one order is placed per cycle.
func (e *Engine) RunCycle(ctx context.Context) error {
	started := e.now()
	opts := e.store.Snapshot()
	if err := e.syncVariant(opts.Variant); err != nil {
		return err
	}

	observed, err := e.x.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("resync positions: %w", err)
	}
	if ev := e.machine.Resync(observed, started); ev != position.EventNone {
		e.log.Info("position resynced", "event", ev, "state", e.machine.State())
		if ev == position.EventAdopted {
			e.publish(slog.LevelWarn, "position adopted",
				fmt.Sprintf("venue reports a %s position not opened this run; adopted as-is", e.machine.Current().Side))
		}
	}

	price, err := e.x.CurrentPrice(ctx)
	if err != nil {
		return fmt.Errorf("current price: %w", err)
	}
	e.window.Observe(price)

	env := &Env{
		Exchange: e.x,
		Options:  opts,
		Position: e.machine.Current(),
		Price:    price,
		Window:   e.window,
		Detector: e.detector,
		Now:      started,
		Log:      e.log,
	}

	intent, err := e.variant.Decide(ctx, env)
	if err != nil {
		return fmt.Errorf("decide: %w", err)
	}

	actionErr := e.execute(ctx, intent, opts, price, started)

	if err := e.jnl.RecordCycle(journal.CycleRecord{
		Time:     started,
		Symbol:   opts.Symbol,
		Price:    price,
		State:    e.machine.State().String(),
		Signals:  intent.Reason,
		Action:   actionName(intent),
		Duration: e.now().Sub(started),
	}); err != nil {
		e.log.Warn("journal cycle failed", "error", err)
	}

	return actionErr
}

func actionName(in Intent) string {
	if in.Kind == Hold {
		return ""
	}
	return in.Kind.String()
}

// execute turns an intent into venue calls and machine transitions.
// Order failures are reported and leave the machine consistent; only
// fatal venue errors propagate.
func (e *Engine) execute(ctx context.Context, in Intent, opts config.Options, price float64, now time.Time) error {
	switch in.Kind {
	case Open:
		return e.executeOpen(ctx, in, opts, now)
	case Close:
		return e.executeClose(ctx, in, opts, price, now)
	case Pyramid:
		return e.executePyramid(ctx, in, opts, now)
	default:
		e.log.Debug("cycle held", "reason", in.Reason)
		return nil
	}
}

func (e *Engine) executeOpen(ctx context.Context, in Intent, opts config.Options, now time.Time) error {
	if err := e.machine.BeginOpen(); err != nil {
		e.log.Warn("open intent ignored", "error", err)
		return nil
	}
	fill, err := e.x.OpenPosition(ctx, in.Side, in.Size)
	if err != nil {
		e.machine.AbortOpen()
		return e.orderFailed("open", err)
	}
	if err := e.machine.ConfirmOpen(in.Side, fill, in.Size, now); err != nil {
		return err
	}
	e.record(journal.ActionRecord{
		ID: id.New(), Time: now, Symbol: opts.Symbol,
		Action: "open", Side: in.Side, Price: fill, Size: in.Size,
		Reason: in.Reason, Variant: e.variant.Name(),
	})
	e.publish(slog.LevelInfo, "position opened",
		fmt.Sprintf("%s %s %.4f at %.2f: %s", in.Side, opts.Symbol, in.Size, fill, in.Reason))
	return nil
}

func (e *Engine) executeClose(ctx context.Context, in Intent, opts config.Options, price float64, now time.Time) error {
	pos := e.machine.Current()
	if err := e.machine.BeginClose(); err != nil {
		e.log.Warn("close intent ignored", "error", err)
		return nil
	}
	if err := e.x.ClosePosition(ctx, pos.Side); err != nil {
		e.machine.AbortClose()
		return e.orderFailed("close", err)
	}
	if err := e.machine.ConfirmClose(); err != nil {
		return err
	}
	pnl := pos.PnLPercent(price)
	e.record(journal.ActionRecord{
		ID: id.New(), Time: now, Symbol: opts.Symbol,
		Action: "close", Side: pos.Side, Price: price, Size: pos.Size,
		Rule: in.Rule, Reason: in.Reason, PnLPct: pnl, Variant: e.variant.Name(),
	})
	e.publish(slog.LevelInfo, "position closed",
		fmt.Sprintf("%s %s closed at %.2f, pnl %.2f%% (%s)", pos.Side, opts.Symbol, price, pnl, in.Reason))
	return nil
}

func (e *Engine) executePyramid(ctx context.Context, in Intent, opts config.Options, now time.Time) error {
	pos := e.machine.Current()
	fill, err := e.x.OpenPosition(ctx, in.Side, in.Size)
	if err != nil {
		return e.orderFailed("pyramid", err)
	}
	e.machine.SetPosition(pyramid.Apply(pos, fill, in.Size))
	e.record(journal.ActionRecord{
		ID: id.New(), Time: now, Symbol: opts.Symbol,
		Action: "pyramid", Side: in.Side, Price: fill, Size: in.Size,
		Reason: in.Reason, Variant: e.variant.Name(),
	})
	e.publish(slog.LevelInfo, "pyramid added",
		fmt.Sprintf("added %.4f to %s at %.2f (%d/%d)", in.Size, opts.Symbol, fill,
			e.machine.Current().PyramidCount, opts.MaxPyramids))
	return nil
}

// orderFailed reports an order failure; the loop continues unless the
// venue is in a fatal state.
func (e *Engine) orderFailed(op string, err error) error {
	e.publish(slog.LevelError, "order failed", fmt.Sprintf("%s: %v", op, err))
	if venue.IsFatal(err) {
		return err
	}
	e.log.Error("order failed", "op", op, "error", err)
	return nil
}

func (e *Engine) record(a journal.ActionRecord) {
	if err := e.jnl.RecordAction(a); err != nil {
		e.log.Warn("journal action failed", "error", err)
	}
}

func (e *Engine) publish(level slog.Level, title, msg string) {
	if e.hub == nil {
		e.log.Log(context.Background(), level, title, "message", msg)
		return
	}
	e.hub.Publish(notify.Event{Level: level, Title: title, Message: msg})
}
