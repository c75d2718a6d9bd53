// Package lpmodel is a solver-independent representation of a linear program
// with equality constraints and per-variable bounds.
package lpmodel

import (
	"errors"
	"fmt"
	"math"
)

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "Maximize"
	}
	return "Minimize"
}

// Var is a continuous decision variable. Infinite bounds are allowed.
type Var struct {
	Name  string
	Lower float64
	Upper float64
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  string
	Coef float64
}

// Constraint is a linear equality: Σ terms = RHS.
type Constraint struct {
	Name  string
	Terms []Term
	RHS   float64
}

// Model is a linear program.
type Model struct {
	Name        string
	Sense       Sense
	Objective   []Term
	Vars        []Var
	Constraints []Constraint

	index map[string]int
}

// ErrDuplicateName is returned when a variable or constraint name is reused.
var ErrDuplicateName = errors.New("duplicate name")

// New returns an empty model.
func New(name string, sense Sense) *Model {
	return &Model{Name: name, Sense: sense, index: make(map[string]int)}
}

// VarName builds the unique variable name for a role at an hour index.
func VarName(role string, hour int) string {
	return fmt.Sprintf("%s_h%d", role, hour)
}

// AddVar declares a variable with the given bounds.
func (m *Model) AddVar(name string, lower, upper float64) error {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, ok := m.index[name]; ok {
		return fmt.Errorf("variable %s: %w", name, ErrDuplicateName)
	}
	m.index[name] = len(m.Vars)
	m.Vars = append(m.Vars, Var{Name: name, Lower: lower, Upper: upper})
	return nil
}

// SetBounds replaces the bounds of a declared variable.
func (m *Model) SetBounds(name string, lower, upper float64) error {
	i, ok := m.index[name]
	if !ok {
		return fmt.Errorf("unknown variable %s", name)
	}
	m.Vars[i].Lower, m.Vars[i].Upper = lower, upper
	return nil
}

// Var returns the declared variable with the given name.
func (m *Model) Var(name string) (Var, bool) {
	i, ok := m.index[name]
	if !ok {
		return Var{}, false
	}
	return m.Vars[i], true
}

// VarIndex returns the position of a variable in Vars.
func (m *Model) VarIndex(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// AddObjective appends a term to the objective. Zero coefficients are dropped.
func (m *Model) AddObjective(name string, coef float64) {
	if coef == 0 {
		return
	}
	m.Objective = append(m.Objective, Term{Var: name, Coef: coef})
}

// AddConstraint appends an equality constraint.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// Validate checks internal consistency of the model.
func (m *Model) Validate() error {
	for _, v := range m.Vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) {
			return fmt.Errorf("variable %s: NaN bound", v.Name)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("variable %s: lower bound %v exceeds upper bound %v", v.Name, v.Lower, v.Upper)
		}
	}
	if err := m.checkTerms("objective", m.Objective); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(m.Constraints))
	for _, c := range m.Constraints {
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("constraint %s: %w", c.Name, ErrDuplicateName)
		}
		seen[c.Name] = struct{}{}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("constraint %s: non-finite right-hand side", c.Name)
		}
		if err := m.checkTerms(c.Name, c.Terms); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) checkTerms(owner string, terms []Term) error {
	for _, t := range terms {
		if _, ok := m.index[t.Var]; !ok {
			return fmt.Errorf("%s: unknown variable %s", owner, t.Var)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return fmt.Errorf("%s: non-finite coefficient for %s", owner, t.Var)
		}
	}
	return nil
}

// Eval returns the value of terms for the given variable assignment.
func Eval(terms []Term, values map[string]float64) float64 {
	var sum float64
	for _, t := range terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}
