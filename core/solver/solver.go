// Package solver defines the boundary between the optimizer and LP solvers.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/hems/core/lpmodel"
)

// Status is the outcome reported by a solver.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "failed"
	}
}

// Solution holds the primal values of an optimal solve keyed by variable name.
type Solution struct {
	Status    Status
	Objective float64
	Values    map[string]float64
	// Raw is the solver's own report, kept for audit.
	Raw string
}

// Value returns the primal value of the named variable.
func (s Solution) Value(name string) (float64, bool) {
	v, ok := s.Values[name]
	return v, ok
}

// Solver solves a linear program. Implementations return a Solution only
// when the status is optimal; other outcomes are reported as errors wrapping
// ErrInfeasible, ErrUnbounded or a *FailureError.
type Solver interface {
	Solve(ctx context.Context, m *lpmodel.Model) (Solution, error)
}

var (
	// ErrInfeasible indicates the LP has no feasible point.
	ErrInfeasible = errors.New("lp infeasible")
	// ErrUnbounded indicates the LP objective is unbounded.
	ErrUnbounded = errors.New("lp unbounded")
)

// FailureError reports a solver that could not produce an answer, for
// numerical, resource or parsing reasons.
type FailureError struct {
	Backend string
	Raw     string
	Err     error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s solver failed: %v", e.Backend, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

// IsModelError reports whether err says the model itself has no optimum.
func IsModelError(err error) bool {
	return errors.Is(err, ErrInfeasible) || errors.Is(err, ErrUnbounded)
}
