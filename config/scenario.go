package config

import "github.com/kilianp07/hems/core/model"

// ScenarioConfig overrides parts of the base system for a comparison run.
// Unset fields keep the base value.
type ScenarioConfig struct {
	Name            string   `json:"name"`
	BatteryKW       *float64 `json:"battery_kw"`
	BatteryKWh      *float64 `json:"battery_kwh"`
	BatteryKWhAtSoD *float64 `json:"battery_kwh_at_sod"`
	PVKW            *float64 `json:"pv_kw"`
	MaxImportKW     *float64 `json:"max_import_kw"`
	MaxExportKW     *float64 `json:"max_export_kw"`
}

// Apply returns base with the scenario overrides applied.
func (s ScenarioConfig) Apply(base model.SystemSpec) model.SystemSpec {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.BatteryKW, s.BatteryKW)
	set(&base.BatteryKWh, s.BatteryKWh)
	set(&base.BatteryKWhAtSoD, s.BatteryKWhAtSoD)
	set(&base.PVKW, s.PVKW)
	set(&base.MaxImportKW, s.MaxImportKW)
	set(&base.MaxExportKW, s.MaxExportKW)
	return base
}
