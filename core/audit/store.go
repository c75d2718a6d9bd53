// Package audit keeps a durable trail of solved days: the costs, the LP that
// was solved and what the solver reported.
package audit

import (
	"context"
	"time"

	"github.com/kilianp07/hems/core/metrics"
	"github.com/kilianp07/hems/core/model"
)

// Record captures one solved day.
type Record struct {
	Timestamp       time.Time        `json:"timestamp"`
	Scenario        string           `json:"scenario"`
	RunID           string           `json:"run_id"`
	Day             time.Time        `json:"day"`
	Cost            model.Cost       `json:"cost"`
	BatteryKWhAtSoD float64          `json:"battery_kwh_at_sod"`
	BatteryKWhAtEoD float64          `json:"battery_kwh_at_eod"`
	CurtailedPVKWh  float64          `json:"curtailed_pv_kwh"`
	Spec            model.SystemSpec `json:"spec"`
	Model           string           `json:"model"`
	SolverOutput    string           `json:"solver_output"`
}

// NewRecord builds the audit record of a solved day event.
func NewRecord(ev metrics.DayEvent) Record {
	r := ev.Result
	return Record{
		Timestamp:       ev.Time,
		Scenario:        ev.Scenario,
		RunID:           ev.RunID,
		Day:             r.Day,
		Cost:            r.Cost,
		BatteryKWhAtSoD: r.BatteryKWhAtSoD,
		BatteryKWhAtEoD: r.BatteryKWhAtEoD,
		CurtailedPVKWh:  r.CurtailedPVKWh,
		Spec:            r.Spec,
		Model:           r.Model,
		SolverOutput:    r.SolverOutput,
	}
}

// Query filters records. Zero fields match everything; Start and End bound
// the solved day, inclusive.
type Query struct {
	Start    time.Time
	End      time.Time
	Scenario string
	RunID    string
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Day.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Day.After(q.End) {
		return false
	}
	if q.Scenario != "" && r.Scenario != q.Scenario {
		return false
	}
	return q.RunID == "" || r.RunID == q.RunID
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
