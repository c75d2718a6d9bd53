package ingest

import (
	"fmt"
	"time"
)

const (
	hoursPerYear     = 8760
	hoursPerLeapYear = 8784
)

// YieldCurve holds one year of hourly PV output for a 1 kW array, in kW.
// Values are looked up by calendar position rather than by offset from the
// first hour, so a curve can be reused for any year.
type YieldCurve struct {
	values []float64
	offset time.Duration
}

// NewYieldCurve wraps an hourly year of values. A 8760 value curve follows
// a common year; 8784 values follow a leap year.
func NewYieldCurve(values []float64) (YieldCurve, error) {
	if len(values) != hoursPerYear && len(values) != hoursPerLeapYear {
		return YieldCurve{}, fmt.Errorf("yield curve has %d hours, want %d or %d",
			len(values), hoursPerYear, hoursPerLeapYear)
	}
	return YieldCurve{values: values}, nil
}

// WithOffset returns a copy of the curve whose values are indexed in a clock
// running offset ahead of UTC, e.g. a PV dataset in local standard time.
func (c YieldCurve) WithOffset(offset time.Duration) YieldCurve {
	c.offset = offset
	return c
}

// Len returns the number of hourly values.
func (c YieldCurve) Len() int { return len(c.values) }

// At returns the normalized PV output for the hour starting at t. 29 February
// is served by 28 February on a common-year curve.
func (c YieldCurve) At(t time.Time) float64 {
	t = t.UTC().Add(c.offset)
	year := 2023
	if len(c.values) == hoursPerLeapYear {
		year = 2024
	}
	month, day := t.Month(), t.Day()
	if year == 2023 && month == time.February && day == 29 {
		day = 28
	}
	ref := time.Date(year, month, day, t.Hour(), 0, 0, 0, time.UTC)
	idx := int(ref.Sub(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)) / time.Hour)
	return c.values[idx]
}
