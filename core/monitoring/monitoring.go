// Package monitoring reports failed days to an error tracker.
package monitoring

import (
	"errors"
	"time"

	"github.com/kilianp07/hems/core/metrics"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

// FlushTimeout bounds the wait for buffered events on Close.
const FlushTimeout = 2 * time.Second

// FailureSink forwards every failed day to a Monitor, tagged with the
// scenario, run, day and failure kind. Solved days are ignored.
type FailureSink struct {
	mon Monitor
}

// NewFailureSink returns a sink reporting to mon.
func NewFailureSink(mon Monitor) *FailureSink {
	if mon == nil {
		mon = NopMonitor{}
	}
	return &FailureSink{mon: mon}
}

func (s *FailureSink) RecordDay(metrics.DayEvent) error { return nil }

// RecordFailure captures the failure.
func (s *FailureSink) RecordFailure(ev metrics.FailureEvent) error {
	s.mon.CaptureException(errors.New(ev.Err), map[string]string{
		"scenario": ev.Scenario,
		"run_id":   ev.RunID,
		"day":      ev.Day.Format(time.DateOnly),
		"kind":     ev.Kind,
	})
	return nil
}

// Close flushes buffered events.
func (s *FailureSink) Close() error {
	s.mon.Flush(FlushTimeout)
	return nil
}
