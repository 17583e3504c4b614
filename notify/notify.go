// Package notify fans trading events out to interested sinks without
// ever blocking the decision loop.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Event is one notable occurrence: an action taken, a stop fired, a
// venue problem.
type Event struct {
	Time    time.Time
	Level   slog.Level
	Title   string
	Message string
}

// Notifier delivers a single event. Implementations must not block
// for long; slow sinks belong behind a Hub.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, ev Event) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Log(ctx, ev.Level, ev.Title, "message", ev.Message)
	return nil
}

// Hub buffers events and delivers them from its own goroutine. Publish
// never blocks: when the buffer is full the event is dropped and a
// counter incremented, because a stalled notifier must not stall
// trading.
type Hub struct {
	sinks   []Notifier
	events  chan Event
	dropped int
	log     *slog.Logger
}

const hubBuffer = 128

func NewHub(log *slog.Logger, sinks ...Notifier) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		sinks:  sinks,
		events: make(chan Event, hubBuffer),
		log:    log.With("component", "notify"),
	}
}

// Publish enqueues an event, dropping it if the buffer is full.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	select {
	case h.events <- ev:
	default:
		h.dropped++
		h.log.Warn("notification dropped, buffer full", "title", ev.Title, "dropped", h.dropped)
	}
}

// Run delivers buffered events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			for _, s := range h.sinks {
				if err := s.Notify(ctx, ev); err != nil {
					h.log.Warn("notifier failed", "title", ev.Title, "error", err)
				}
			}
		}
	}
}
