package metrics

import (
	"time"

	"github.com/kilianp07/hems/core/model"
)

// DayEvent is emitted once per solved day.
type DayEvent struct {
	Scenario      string
	RunID         string
	Result        model.DayResult
	SolveDuration time.Duration
	Time          time.Time
}

// Recorder records solved days.
type Recorder interface {
	RecordDay(ev DayEvent) error
}

// FailureEvent describes a day the optimizer could not solve.
type FailureEvent struct {
	Scenario string
	RunID    string
	Day      time.Time
	// Kind is one of "horizon", "build", "infeasible" or "solver".
	Kind string
	Err  string
	Time time.Time
}

// FailureRecorder records aborted days.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// RunEvent summarizes a completed multi-day run.
type RunEvent struct {
	Scenario string
	RunID    string
	Summary  model.Summary
	Duration time.Duration
	Time     time.Time
}

// RunRecorder records run summaries.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDay(DayEvent) error         { return nil }
func (NopSink) RecordFailure(FailureEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error         { return nil }
