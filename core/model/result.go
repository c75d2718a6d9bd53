package model

import "time"

// Cost aggregates the monetary outcome of one day.
type Cost struct {
	// Total is the optimized cost: imports net of export revenue.
	Total float64 `json:"total"`
	// OnlyUncontrolledLoad is the cost of buying the whole load from the grid,
	// without battery, PV or export.
	OnlyUncontrolledLoad float64 `json:"only_uncontrolled_load"`
}

// DayResult is the solved schedule for the 24 reported hours of a day.
// A DayResult is never modified after creation.
type DayResult struct {
	Day        time.Time   `json:"day"`
	Timestamps []time.Time `json:"timestamps"`

	ImportKW           []float64 `json:"import_kw"`
	ExportKW           []float64 `json:"export_kw"`
	BatteryKW          []float64 `json:"battery_kw"` // positive discharges into the house
	PVKW               []float64 `json:"pv_kw"`      // PV power actually used
	PVAvailableKW      []float64 `json:"pv_available_kw"`
	UncontrolledLoadKW []float64 `json:"uncontrolled_load_kw"`
	BatteryKWh         []float64 `json:"battery_kwh"`
	ImportPrice        []float64 `json:"import_price"`
	ExportPrice        []float64 `json:"export_price"`

	BatteryKWhAtSoD float64 `json:"battery_kwh_at_sod"`
	BatteryKWhAtEoD float64 `json:"battery_kwh_at_eod"`
	CurtailedPVKWh  float64 `json:"curtailed_pv_kwh"`
	Cost            Cost    `json:"cost"`

	Spec         SystemSpec `json:"spec"`
	Model        string     `json:"model,omitempty"`
	SolverOutput string     `json:"solver_output,omitempty"`
}

// Name returns the day formatted as YYYY-MM-DD.
func (r DayResult) Name() string { return r.Day.Format(time.DateOnly) }

// Savings is the baseline cost minus the optimized cost.
func (r DayResult) Savings() float64 {
	return r.Cost.OnlyUncontrolledLoad - r.Cost.Total
}

// Summary accumulates the costs of a sequence of days.
type Summary struct {
	Days                 int     `json:"days"`
	Total                float64 `json:"total"`
	OnlyUncontrolledLoad float64 `json:"only_uncontrolled_load"`
	CurtailedPVKWh       float64 `json:"curtailed_pv_kwh"`
	ImportKWh            float64 `json:"import_kwh"`
	ExportKWh            float64 `json:"export_kwh"`
}

// Summarize folds a sequence of day results into a Summary.
func Summarize(results []DayResult) Summary {
	var s Summary
	for _, r := range results {
		s.Days++
		s.Total += r.Cost.Total
		s.OnlyUncontrolledLoad += r.Cost.OnlyUncontrolledLoad
		s.CurtailedPVKWh += r.CurtailedPVKWh
		for h := range r.ImportKW {
			s.ImportKWh += r.ImportKW[h]
			s.ExportKWh += r.ExportKW[h]
		}
	}
	return s
}

// Savings is the baseline cost minus the optimized cost over all days.
func (s Summary) Savings() float64 { return s.OnlyUncontrolledLoad - s.Total }
