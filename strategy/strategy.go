// Package strategy ties the pieces together: a registry of trading
// variants, the engine that executes their decisions against a venue,
// and the runner that drives the decision loop.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rustyeddy/swingbot/config"
	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/risk"
	"github.com/rustyeddy/swingbot/signal"
	"github.com/rustyeddy/swingbot/venue"
)

// ErrNotImplemented marks a registered variant that has no decision
// logic yet. Selecting one fails fast at engine construction.
var ErrNotImplemented = errors.New("strategy variant not implemented")

// IntentKind is the kind of action a variant wants executed.
type IntentKind int

const (
	Hold IntentKind = iota
	Open
	Close
	Pyramid
)

func (k IntentKind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	case Pyramid:
		return "pyramid"
	default:
		return "hold"
	}
}

// Intent is a variant's decision for one cycle. The engine executes
// at most one intent per cycle; variants never place orders
// themselves.
type Intent struct {
	Kind   IntentKind
	Side   market.Side
	Size   float64 // order size for Open and Pyramid
	Rule   string  // which rule produced a Close
	Reason string
}

func hold(reason string) Intent { return Intent{Kind: Hold, Reason: reason} }

// Env is the read-only view of the world a variant decides from. The
// engine assembles one per cycle.
type Env struct {
	Exchange venue.Exchange
	Options  config.Options
	Position market.Position
	Price    float64
	Window   *risk.VolatilityWindow
	Detector *signal.Detector
	Now      time.Time
	Log      *slog.Logger
}

// Variant is one trading strategy. Decide inspects the environment
// and returns a single intent; it must not mutate shared state.
type Variant interface {
	Name() string
	Decide(ctx context.Context, env *Env) (Intent, error)
}

// ByName constructs the named variant. Names are matched
// case-insensitively with dashes and underscores interchangeable.
func ByName(name string) (Variant, error) {
	switch config.NormalizeVariant(name) {
	case "triple_signal":
		return &TripleSignal{}, nil
	case "original":
		return &Original{}, nil
	case "trend_following":
		return placeholder{name: "trend_following"}, nil
	case "volatility_breakout":
		return placeholder{name: "volatility_breakout"}, nil
	case "mean_reversion":
		return placeholder{name: "mean_reversion"}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)",
			name, strings.Join(Variants(), ", "))
	}
}

// Variants lists the selectable variant names.
func Variants() []string {
	return config.Variants
}

// Implemented reports whether the named variant has decision logic.
func Implemented(name string) bool {
	v, err := ByName(name)
	if err != nil {
		return false
	}
	_, isPlaceholder := v.(placeholder)
	return !isPlaceholder
}

// placeholder reserves a registry slot for a variant that is not
// built yet.
type placeholder struct {
	name string
}

func (p placeholder) Name() string { return p.name }

func (p placeholder) Decide(ctx context.Context, env *Env) (Intent, error) {
	return Intent{}, fmt.Errorf("%s: %w", p.name, ErrNotImplemented)
}
