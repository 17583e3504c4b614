package config

import (
	"fmt"
	"sync"
	"time"
)

// Store guards live options for concurrent readers. Setters validate
// the resulting option set and keep the previous value on failure, so
// a bad runtime update can never leave the store inconsistent.
type Store struct {
	mu   sync.RWMutex
	opts Options
}

func NewStore(opts Options) (*Store, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Store{opts: opts}, nil
}

// Snapshot returns a copy of the current options.
func (s *Store) Snapshot() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

func (s *Store) update(mutate func(*Options)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.opts
	mutate(&next)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("rejected update: %w", err)
	}
	s.opts = next
	return nil
}

func (s *Store) SetStopLossPct(pct float64) error {
	return s.update(func(o *Options) { o.StopLossPct = pct })
}

func (s *Store) SetTakeProfitPct(pct float64) error {
	return s.update(func(o *Options) { o.TakeProfitPct = pct })
}

func (s *Store) SetBaseSize(size float64) error {
	return s.update(func(o *Options) { o.BaseSize = size })
}

func (s *Store) SetPyramiding(enabled bool, max int) error {
	return s.update(func(o *Options) {
		o.PyramidEnabled = enabled
		o.MaxPyramids = max
	})
}

func (s *Store) SetCheckInterval(d time.Duration) error {
	return s.update(func(o *Options) { o.CheckInterval = d })
}

func (s *Store) SetVariant(name string) error {
	return s.update(func(o *Options) { o.Variant = name })
}
