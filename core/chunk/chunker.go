package chunk

import (
	"fmt"
	"iter"
	"time"

	"github.com/kilianp07/hems/core/model"
)

// Chunker yields one DayWindow per UTC calendar day of a record series.
// It is not safe for concurrent use; create one Chunker per consumer.
type Chunker struct {
	records []model.HourlyRecord
	horizon int
	start   int // index of the first record at a day boundary
	next    int // index of the next day to emit
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithHorizon sets the number of records per window. It must lie between
// model.ReportHours and model.HorizonHours.
func WithHorizon(hours int) Option {
	return func(c *Chunker) error {
		if hours < model.ReportHours || hours > model.HorizonHours {
			return fmt.Errorf("horizon must be between %d and %d hours, got %d",
				model.ReportHours, model.HorizonHours, hours)
		}
		c.horizon = hours
		return nil
	}
}

// New validates records and returns a Chunker positioned on the first day.
// records must be ordered, gap-free and hourly spaced.
func New(records []model.HourlyRecord, opts ...Option) (*Chunker, error) {
	c := &Chunker{records: records, horizon: model.HorizonHours}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Sub(records[i-1].Timestamp) != time.Hour {
			return nil, &GapError{Index: i, Prev: records[i-1].Timestamp, Next: records[i].Timestamp}
		}
	}
	c.start = -1
	for i, r := range records {
		if r.Timestamp.Equal(model.StartOfDay(r.Timestamp)) {
			c.start = i
			break
		}
	}
	if c.start < 0 {
		e := &MisalignedSeriesError{Records: len(records)}
		if len(records) > 0 {
			e.First = records[0].Timestamp
		}
		return nil, e
	}
	c.next = c.start
	return c, nil
}

// Next returns the next day window. The second result is false once no day
// with a full horizon remains.
func (c *Chunker) Next() (model.DayWindow, bool) {
	if c.next+c.horizon > len(c.records) {
		return model.DayWindow{}, false
	}
	recs := c.records[c.next : c.next+c.horizon : c.next+c.horizon]
	w := model.DayWindow{Day: model.StartOfDay(recs[0].Timestamp), Records: recs}
	c.next += model.ReportHours
	return w, true
}

// Reset rewinds the chunker to the first day.
func (c *Chunker) Reset() { c.next = c.start }

// Len returns the total number of windows the chunker emits.
func (c *Chunker) Len() int {
	avail := len(c.records) - c.start - c.horizon
	if avail < 0 {
		return 0
	}
	return avail/model.ReportHours + 1
}

// All returns an iterator over every window, starting from the first day
// regardless of the chunker's current position.
func (c *Chunker) All() iter.Seq[model.DayWindow] {
	return func(yield func(model.DayWindow) bool) {
		cp := *c
		cp.Reset()
		for {
			w, ok := cp.Next()
			if !ok || !yield(w) {
				return
			}
		}
	}
}

// Windows materializes every window.
func (c *Chunker) Windows() []model.DayWindow {
	out := make([]model.DayWindow, 0, c.Len())
	for w := range c.All() {
		out = append(out, w)
	}
	return out
}

// Split is a convenience wrapper returning all windows of records.
func Split(records []model.HourlyRecord, opts ...Option) ([]model.DayWindow, error) {
	c, err := New(records, opts...)
	if err != nil {
		return nil, err
	}
	return c.Windows(), nil
}
