package gonumlp

import (
	"fmt"
	"math"

	"github.com/kilianp07/hems/core/lpmodel"
	"github.com/kilianp07/hems/core/solver"
)

// feasTol is the absolute slack allowed when presolve checks a fixing
// against bounds or an emptied row against its right-hand side.
const feasTol = 1e-7

type row struct {
	name string
	idx  []int
	coef []float64
	rhs  float64
}

type presolveStats struct {
	fixedColumns int
	removedRows  int
}

// problem is the minimization form of a model after presolve. Columns that
// presolve could determine are marked fixed; the remaining rows reference only
// free columns.
type problem struct {
	vars  []lpmodel.Var
	cost  []float64
	fixed []bool
	value []float64
	rows  []row
	stats presolveStats
}

func (p *problem) fix(i int, v float64) {
	lo, hi := p.vars[i].Lower, p.vars[i].Upper
	p.value[i] = math.Min(math.Max(v, lo), hi)
	p.fixed[i] = true
	p.stats.fixedColumns++
}

// substitute removes fixed columns from r, moving their contribution to the
// right-hand side.
func (p *problem) substitute(r row) row {
	out := row{name: r.name, rhs: r.rhs}
	for k, i := range r.idx {
		if p.fixed[i] {
			out.rhs -= r.coef[k] * p.value[i]
			continue
		}
		out.idx = append(out.idx, i)
		out.coef = append(out.coef, r.coef[k])
	}
	return out
}

// presolve fixes columns with equal bounds, repeatedly turns singleton rows
// into fixings and drops emptied rows, then settles columns that no longer
// appear in any row at their cheapest bound.
func presolve(m *lpmodel.Model) (*problem, error) {
	n := len(m.Vars)
	p := &problem{
		vars:  m.Vars,
		cost:  make([]float64, n),
		fixed: make([]bool, n),
		value: make([]float64, n),
	}
	sign := 1.0
	if m.Sense == lpmodel.Maximize {
		sign = -1
	}
	for _, t := range m.Objective {
		i, _ := m.VarIndex(t.Var)
		p.cost[i] += sign * t.Coef
	}
	for i, v := range m.Vars {
		if v.Lower == v.Upper {
			p.fix(i, v.Lower)
		}
	}

	rows := make([]row, 0, len(m.Constraints))
	for _, c := range m.Constraints {
		acc := make(map[int]float64, len(c.Terms))
		var order []int
		for _, t := range c.Terms {
			i, _ := m.VarIndex(t.Var)
			if _, seen := acc[i]; !seen {
				order = append(order, i)
			}
			acc[i] += t.Coef
		}
		r := row{name: c.Name, rhs: c.RHS}
		for _, i := range order {
			if acc[i] != 0 {
				r.idx = append(r.idx, i)
				r.coef = append(r.coef, acc[i])
			}
		}
		rows = append(rows, r)
	}

	for changed := true; changed; {
		changed = false
		active := rows[:0]
		for _, r := range rows {
			r = p.substitute(r)
			switch len(r.idx) {
			case 0:
				if math.Abs(r.rhs) > feasTol*math.Max(1, math.Abs(r.rhs)) {
					return nil, fmt.Errorf("constraint %s: residual %v: %w", r.name, r.rhs, solver.ErrInfeasible)
				}
				p.stats.removedRows++
			case 1:
				i := r.idx[0]
				v := r.rhs / r.coef[0]
				lo, hi := p.vars[i].Lower, p.vars[i].Upper
				if v < lo-feasTol || v > hi+feasTol {
					return nil, fmt.Errorf("constraint %s forces %s = %v outside [%v, %v]: %w",
						r.name, p.vars[i].Name, v, lo, hi, solver.ErrInfeasible)
				}
				p.fix(i, v)
				p.stats.removedRows++
				changed = true
			default:
				active = append(active, r)
			}
		}
		rows = active
	}
	p.rows = rows

	used := make([]bool, n)
	for _, r := range rows {
		for _, i := range r.idx {
			used[i] = true
		}
	}
	for i, v := range p.vars {
		if p.fixed[i] || used[i] {
			continue
		}
		c := p.cost[i]
		switch {
		case c > 0 && math.IsInf(v.Lower, -1), c < 0 && math.IsInf(v.Upper, 1):
			return nil, fmt.Errorf("column %s: %w", v.Name, solver.ErrUnbounded)
		case c > 0:
			p.fix(i, v.Lower)
		case c < 0:
			p.fix(i, v.Upper)
		case !math.IsInf(v.Lower, -1):
			p.fix(i, v.Lower)
		case !math.IsInf(v.Upper, 1):
			p.fix(i, v.Upper)
		default:
			p.fix(i, 0)
		}
	}
	return p, nil
}
