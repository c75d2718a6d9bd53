package chunk

import (
	"fmt"
	"time"
)

// MisalignedSeriesError is returned when no record starts at a UTC day boundary.
type MisalignedSeriesError struct {
	First   time.Time
	Records int
}

func (e *MisalignedSeriesError) Error() string {
	if e.Records == 0 {
		return "series is empty: no record starts at a UTC day boundary"
	}
	return fmt.Sprintf("no record starts at a UTC day boundary (%d records from %s)",
		e.Records, e.First.Format(time.RFC3339))
}

// GapError is returned when two consecutive records are not one hour apart.
type GapError struct {
	Index int
	Prev  time.Time
	Next  time.Time
}

func (e *GapError) Error() string {
	return fmt.Sprintf("record %d at %s does not follow %s by one hour",
		e.Index, e.Next.Format(time.RFC3339), e.Prev.Format(time.RFC3339))
}
