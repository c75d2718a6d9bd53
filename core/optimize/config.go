package optimize

import (
	"fmt"

	"github.com/kilianp07/hems/core/model"
)

// Config selects the formulation built for each day.
type Config struct {
	// HorizonHours is the number of hours modeled per day, lookahead included.
	HorizonHours int `json:"horizon_hours"`
	// Curtailment lets the optimizer use less PV than available. When false
	// all available PV must be absorbed by load, battery or export.
	Curtailment *bool `json:"curtailment"`
	// IdleFirstHour pins the battery power of hour 0 to zero. Hour 0 has no
	// continuity constraint, so its battery power does not move the state of
	// charge.
	IdleFirstHour bool `json:"idle_first_hour"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.HorizonHours == 0 {
		c.HorizonHours = model.HorizonHours
	}
	if c.Curtailment == nil {
		on := true
		c.Curtailment = &on
	}
}

// Validate checks the horizon length.
func (c Config) Validate() error {
	if c.HorizonHours < model.ReportHours || c.HorizonHours > model.HorizonHours {
		return fmt.Errorf("horizon_hours must be between %d and %d, got %d",
			model.ReportHours, model.HorizonHours, c.HorizonHours)
	}
	return nil
}

// CurtailmentEnabled reports whether PV may be curtailed. Unset means true.
func (c Config) CurtailmentEnabled() bool {
	return c.Curtailment == nil || *c.Curtailment
}
