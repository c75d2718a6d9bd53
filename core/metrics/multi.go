package metrics

import "errors"

// MultiSink fans events out to several recorders.
type MultiSink struct {
	Sinks []Recorder
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Recorder) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDay forwards the event to every sink and joins their errors.
func (m *MultiSink) RecordDay(ev DayEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordDay(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordFailure forwards the event to sinks implementing FailureRecorder.
func (m *MultiSink) RecordFailure(ev FailureEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if fr, ok := s.(FailureRecorder); ok {
			if err := fr.RecordFailure(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordRun forwards the event to sinks implementing RunRecorder.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rr, ok := s.(RunRecorder); ok {
			if err := rr.RecordRun(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
