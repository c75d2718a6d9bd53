package config

import (
	"fmt"

	"github.com/kilianp07/hems/infra/ingest"
)

// InputConfig selects where hourly records come from. Either Records points
// to a resolved CSV, or Consumption is merged with a PVWatts yield curve read
// from PVWattsFile or fetched with PVWatts.
type InputConfig struct {
	Records     string               `json:"records"`
	Consumption string               `json:"consumption"`
	PVWattsFile string               `json:"pvwatts_file"`
	PVWatts     *ingest.PVWattsQuery `json:"pvwatts"`
	PVWattsURL  string               `json:"pvwatts_url"`
	// PVWattsCapacityKW is the array size PVWattsFile was computed for.
	// A fetched dataset uses the query's system_capacity instead.
	PVWattsCapacityKW float64 `json:"pvwatts_capacity_kw"`
	// AlignTZ shifts the yield curve by the station's UTC offset.
	AlignTZ bool `json:"align_tz"`
}

// SetDefaults applies sane defaults.
func (c *InputConfig) SetDefaults() {
	if c.PVWatts != nil {
		c.PVWatts.SetDefaults()
		if c.PVWattsURL == "" {
			c.PVWattsURL = ingest.DefaultPVWattsURL
		}
	}
}

// Validate checks that exactly one input source is described.
func (c InputConfig) Validate() error {
	if c.Records != "" {
		if c.Consumption != "" {
			return fmt.Errorf("records and consumption are mutually exclusive")
		}
		return nil
	}
	if c.Consumption == "" {
		return fmt.Errorf("records or consumption is required")
	}
	switch {
	case c.PVWattsFile == "" && c.PVWatts == nil:
		return fmt.Errorf("pvwatts_file or pvwatts is required with consumption")
	case c.PVWattsFile != "" && c.PVWatts != nil:
		return fmt.Errorf("pvwatts_file and pvwatts are mutually exclusive")
	case c.PVWatts != nil && c.PVWatts.APIKey == "":
		return fmt.Errorf("pvwatts.api_key is required")
	}
	return nil
}

// OutputConfig defines where results are exported.
type OutputConfig struct {
	// Path selects the format by extension: .json or .csv. Empty disables export.
	Path string `json:"path"`
	// WithModel includes the LP text and solver output in JSON exports.
	WithModel bool `json:"with_model"`
}
