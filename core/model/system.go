package model

import "fmt"

// SystemSpec describes the physical limits of the household installation.
// All fields except BatteryKWhAtSoD stay constant across a multi-day run.
type SystemSpec struct {
	BatteryKW       float64 `json:"battery_kw"`         // inverter power limit, both directions
	BatteryKWh      float64 `json:"battery_kwh"`        // usable storage capacity
	BatteryKWhAtSoD float64 `json:"battery_kwh_at_sod"` // stored energy at the start of the day
	PVKW            float64 `json:"pv_kw"`              // installed PV nameplate capacity
	MaxImportKW     float64 `json:"max_import_kw"`
	MaxExportKW     float64 `json:"max_export_kw"`
}

// Validate checks that all limits are non-negative and the start-of-day charge
// fits the battery.
func (s SystemSpec) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"battery_kw", s.BatteryKW},
		{"battery_kwh", s.BatteryKWh},
		{"battery_kwh_at_sod", s.BatteryKWhAtSoD},
		{"pv_kw", s.PVKW},
		{"max_import_kw", s.MaxImportKW},
		{"max_export_kw", s.MaxExportKW},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", f.name, f.v)
		}
	}
	if s.BatteryKWhAtSoD > s.BatteryKWh {
		return fmt.Errorf("battery_kwh_at_sod %v exceeds battery_kwh %v", s.BatteryKWhAtSoD, s.BatteryKWh)
	}
	return nil
}

// WithStartOfDay returns a copy of the spec with a new start-of-day charge.
func (s SystemSpec) WithStartOfDay(kwh float64) SystemSpec {
	s.BatteryKWhAtSoD = kwh
	return s
}
