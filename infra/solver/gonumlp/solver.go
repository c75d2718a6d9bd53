// Package gonumlp solves LP models in process with the simplex implementation
// of gonum.
package gonumlp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/hems/core/factory"
	"github.com/kilianp07/hems/core/lpmodel"
	"github.com/kilianp07/hems/core/solver"
)

// Name is the registry key of this backend.
const Name = "gonum"

// DefaultTolerance is the simplex pivoting tolerance.
const DefaultTolerance = 1e-9

// Config holds the backend settings.
type Config struct {
	Tolerance float64 `json:"tolerance"`
}

// Solver implements solver.Solver with gonum's simplex. It is safe for
// concurrent use.
type Solver struct {
	tol float64
}

// lpSimplex points to the function used to solve the standard-form LP. It can
// be overridden in tests to simulate solver failures.
var lpSimplex = lp.Simplex

func init() {
	_ = solver.Register(Name, func(conf map[string]any) (solver.Solver, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(c), nil
	})
}

// New returns a gonum backed solver.
func New(cfg Config) *Solver {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	return &Solver{tol: cfg.Tolerance}
}

// Solve presolves m, runs the simplex on what remains and returns a value for
// every declared variable.
func (s *Solver) Solve(ctx context.Context, m *lpmodel.Model) (solver.Solution, error) {
	if err := ctx.Err(); err != nil {
		return solver.Solution{}, &solver.FailureError{Backend: Name, Err: err}
	}
	if err := m.Validate(); err != nil {
		return solver.Solution{}, &solver.FailureError{Backend: Name, Err: err}
	}
	p, err := presolve(m)
	if err != nil {
		return solver.Solution{}, err
	}

	var dims [2]int
	if len(p.rows) > 0 {
		sf := toStandard(p)
		dims[0], dims[1] = sf.A.Dims()
		y, err := s.simplex(sf)
		if err != nil {
			return solver.Solution{}, err
		}
		sf.assign(p, y)
	}

	values := make(map[string]float64, len(m.Vars))
	for i, v := range m.Vars {
		values[v.Name] = p.value[i]
	}
	sol := solver.Solution{
		Status:    solver.StatusOptimal,
		Objective: lpmodel.Eval(m.Objective, values),
		Values:    values,
	}
	sol.Raw = report(m, sol, p.stats, dims)
	return sol, nil
}

func (s *Solver) simplex(sf *standardForm) (y []float64, err error) {
	rows, cols := sf.A.Dims()
	if rows > cols {
		return nil, &solver.FailureError{Backend: Name, Err: fmt.Errorf("%d rows exceed %d columns after presolve", rows, cols)}
	}
	defer func() {
		if r := recover(); r != nil {
			y, err = nil, &solver.FailureError{Backend: Name, Err: fmt.Errorf("simplex panic: %v", r)}
		}
	}()
	_, y, err = lpSimplex(sf.c, mat.Matrix(sf.A), sf.b, s.tol, nil)
	switch {
	case err == nil:
		return y, nil
	case errors.Is(err, lp.ErrInfeasible):
		return nil, fmt.Errorf("simplex: %w", solver.ErrInfeasible)
	case errors.Is(err, lp.ErrUnbounded):
		return nil, fmt.Errorf("simplex: %w", solver.ErrUnbounded)
	default:
		return nil, &solver.FailureError{Backend: Name, Err: err}
	}
}

func report(m *lpmodel.Model, sol solver.Solution, st presolveStats, dims [2]int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Model: %s\n", m.Name)
	fmt.Fprintf(&sb, "Status: %s\n", sol.Status)
	fmt.Fprintf(&sb, "Objective: %s\n", strconv.FormatFloat(sol.Objective, 'g', -1, 64))
	fmt.Fprintf(&sb, "Presolve: %d columns fixed, %d rows removed\n", st.fixedColumns, st.removedRows)
	fmt.Fprintf(&sb, "Simplex: %d rows, %d columns\n", dims[0], dims[1])
	fmt.Fprintf(&sb, "# Columns %d\n", len(m.Vars))
	for _, v := range m.Vars {
		fmt.Fprintf(&sb, "%s %s\n", v.Name, strconv.FormatFloat(sol.Values[v.Name], 'g', -1, 64))
	}
	return sb.String()
}
