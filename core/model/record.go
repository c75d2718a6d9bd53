package model

import (
	"fmt"
	"time"
)

const (
	// ReportHours is the number of hours reported for each solved day.
	ReportHours = 24
	// HorizonHours is the default number of hours modeled per day, lookahead included.
	HorizonHours = 48
)

// HourlyRecord is the exogenous input for one clock hour.
type HourlyRecord struct {
	Timestamp      time.Time `json:"timestamp"`       // start of the hour, UTC
	ConsumptionKWh float64   `json:"consumption_kwh"` // uncontrolled load during the hour
	ImportPrice    float64   `json:"import_price"`    // currency per kWh bought from the grid
	ExportPrice    float64   `json:"export_price"`    // currency per kWh sold to the grid
	// PVNormalized is the output in kW of a PV array with 1 kW installed capacity.
	PVNormalized float64 `json:"pv_normalized"`
}

// DayWindow is a UTC calendar day together with the horizon modeled for it.
// Records starts at Day and may extend past the end of the day as lookahead.
type DayWindow struct {
	Day     time.Time      `json:"day"`
	Records []HourlyRecord `json:"records"`
}

// Name returns the day formatted as YYYY-MM-DD.
func (w DayWindow) Name() string {
	return w.Day.Format(time.DateOnly)
}

// Hours returns the number of hourly records in the horizon.
func (w DayWindow) Hours() int { return len(w.Records) }

// Validate checks that the horizon starts at Day and is hourly contiguous.
func (w DayWindow) Validate() error {
	if len(w.Records) == 0 {
		return fmt.Errorf("day %s: empty horizon", w.Name())
	}
	if !w.Records[0].Timestamp.Equal(w.Day) {
		return fmt.Errorf("day %s: horizon starts at %s", w.Name(), w.Records[0].Timestamp.Format(time.RFC3339))
	}
	for i := 1; i < len(w.Records); i++ {
		if d := w.Records[i].Timestamp.Sub(w.Records[i-1].Timestamp); d != time.Hour {
			return fmt.Errorf("day %s: record %d is %s after its predecessor", w.Name(), i, d)
		}
	}
	return nil
}

// StartOfDay truncates t to its UTC midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
