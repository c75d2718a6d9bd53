package optimize

import (
	"fmt"
	"time"

	"github.com/kilianp07/hems/core/model"
)

// InsufficientHorizonError is returned for a window shorter than the 24
// reported hours.
type InsufficientHorizonError struct {
	Day      time.Time
	Hours    int
	Required int
}

func (e *InsufficientHorizonError) Error() string {
	return fmt.Sprintf("day %s: horizon has %d hours, need at least %d",
		e.Day.Format(time.DateOnly), e.Hours, e.Required)
}

// ModelInfeasibleError is returned when the day's LP has no feasible or no
// bounded optimum. It carries everything needed to reproduce the solve.
type ModelInfeasibleError struct {
	Window model.DayWindow
	Spec   model.SystemSpec
	Model  string
	Err    error
}

func (e *ModelInfeasibleError) Error() string {
	return fmt.Sprintf("day %s: model has no optimum: %v", e.Window.Name(), e.Err)
}

func (e *ModelInfeasibleError) Unwrap() error { return e.Err }

// SolverFailureError is returned when the solver could not produce a usable
// answer for a well-formed model.
type SolverFailureError struct {
	Window model.DayWindow
	Spec   model.SystemSpec
	Model  string
	Err    error
}

func (e *SolverFailureError) Error() string {
	return fmt.Sprintf("day %s: solver failure: %v", e.Window.Name(), e.Err)
}

func (e *SolverFailureError) Unwrap() error { return e.Err }
