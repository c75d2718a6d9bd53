// Package chunk splits a contiguous hourly series into calendar-day windows.
//
// Each window starts at a UTC midnight and carries a lookahead horizon past its
// own 24 hours so the optimizer can see tomorrow's prices and PV before deciding
// where today's battery charge should end.
package chunk
