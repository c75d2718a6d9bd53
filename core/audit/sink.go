package audit

import (
	"context"
	"time"

	"github.com/kilianp07/hems/core/metrics"
)

// Sink records every solved day in a Store.
type Sink struct {
	store   Store
	timeout time.Duration
}

// NewSink wraps store as a metrics.Recorder.
func NewSink(store Store) *Sink {
	return &Sink{store: store, timeout: 5 * time.Second}
}

// RecordDay appends the day to the store.
func (s *Sink) RecordDay(ev metrics.DayEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.store.Append(ctx, NewRecord(ev))
}

// Close closes the store.
func (s *Sink) Close() error { return s.store.Close() }
