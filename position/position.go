// Package position owns the canonical view of the current position.
// Transitions happen only on confirmed venue acknowledgements, and the
// view is resynchronized from the venue's position report each cycle.
package position

import (
	"fmt"
	"time"

	"github.com/rustyeddy/swingbot/market"
	"github.com/rustyeddy/swingbot/venue"
)

// State is the lifecycle stage of the machine. Opening and Closing are
// transient: the decision loop awaits the venue acknowledgement before
// doing anything else, so they never persist across cycles.
type State int

const (
	StateFlat State = iota
	StateOpening
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "flat"
	}
}

// Event describes what a venue resync did to the canonical view.
type Event int

const (
	EventNone    Event = iota
	EventAdopted       // a position not matching memory was adopted as-is
	EventUpdated       // same side, venue-reported size/entry refreshed
	EventClosed        // venue reports zero size, memory went flat
)

func (e Event) String() string {
	switch e {
	case EventAdopted:
		return "adopted"
	case EventUpdated:
		return "updated"
	case EventClosed:
		return "closed"
	default:
		return "none"
	}
}

// Reconcile merges the venue's authoritative position report into the
// previous canonical view. A position whose side differs from memory
// (including one opened manually or by another process) is adopted
// as-is with the pyramid count reset and the entry time restamped,
// since prior pyramid history cannot be inferred.
func Reconcile(prev market.Position, observed []venue.OpenPosition, now time.Time) (market.Position, Event) {
	var current *venue.OpenPosition
	for i := range observed {
		if observed[i].Size > 0 && observed[i].Side != market.Flat {
			current = &observed[i]
			break
		}
	}

	if current == nil {
		if prev.Open() {
			return market.Position{}, EventClosed
		}
		return market.Position{}, EventNone
	}

	if prev.Side == current.Side {
		prev.Size = current.Size
		prev.EntryPrice = current.AvgPrice
		return prev, EventUpdated
	}

	return market.Position{
		Side:             current.Side,
		EntryPrice:       current.AvgPrice,
		Size:             current.Size,
		EntryTime:        now,
		PyramidCount:     0,
		LastPyramidPrice: current.AvgPrice,
	}, EventAdopted
}

// Machine guards the canonical position with explicit state
// transitions. It is owned by the single decision goroutine.
type Machine struct {
	state State
	pos   market.Position
}

func NewMachine() *Machine { return &Machine{} }

func (m *Machine) State() State             { return m.state }
func (m *Machine) Current() market.Position { return m.pos }

// Resync applies the venue report and settles the state accordingly.
func (m *Machine) Resync(observed []venue.OpenPosition, now time.Time) Event {
	pos, ev := Reconcile(m.pos, observed, now)
	m.pos = pos
	if pos.Open() {
		m.state = StateOpen
	} else {
		m.state = StateFlat
	}
	return ev
}

// BeginOpen marks an order in flight. Rejected while a position exists,
// which makes duplicate entry signals idempotent.
func (m *Machine) BeginOpen() error {
	if m.state != StateFlat {
		return fmt.Errorf("cannot open: position is %s", m.state)
	}
	m.state = StateOpening
	return nil
}

// ConfirmOpen records the venue acknowledgement of the opening fill.
func (m *Machine) ConfirmOpen(side market.Side, fillPrice, size float64, now time.Time) error {
	if m.state != StateOpening {
		return fmt.Errorf("unexpected open confirmation in state %s", m.state)
	}
	m.state = StateOpen
	m.pos = market.Position{
		Side:             side,
		EntryPrice:       fillPrice,
		Size:             size,
		EntryTime:        now,
		PyramidCount:     0,
		LastPyramidPrice: fillPrice,
	}
	return nil
}

// AbortOpen rolls back after a rejected or failed opening order.
func (m *Machine) AbortOpen() {
	if m.state == StateOpening {
		m.state = StateFlat
	}
}

// BeginClose marks a closing order in flight.
func (m *Machine) BeginClose() error {
	if m.state != StateOpen {
		return fmt.Errorf("cannot close: position is %s", m.state)
	}
	m.state = StateClosing
	return nil
}

// ConfirmClose records the venue acknowledgement of the close.
func (m *Machine) ConfirmClose() error {
	if m.state != StateClosing {
		return fmt.Errorf("unexpected close confirmation in state %s", m.state)
	}
	m.state = StateFlat
	m.pos = market.Position{}
	return nil
}

// AbortClose rolls back after a rejected or failed closing order; the
// position is still open.
func (m *Machine) AbortClose() {
	if m.state == StateClosing {
		m.state = StateOpen
	}
}

// SetPosition replaces the canonical view after a confirmed
// modification, e.g. a pyramid fill folded in by the caller.
func (m *Machine) SetPosition(pos market.Position) {
	m.pos = pos
	if pos.Open() {
		m.state = StateOpen
	} else {
		m.state = StateFlat
	}
}
