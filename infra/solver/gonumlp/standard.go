package gonumlp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// column maps a standard-form column back to a model variable:
// x[v] = shift[v] + Σ sign * y over the variable's columns.
type column struct {
	v    int
	sign float64
}

type boundRow struct {
	col   int
	width float64
}

// standardForm is min cᵀy s.t. Ay = b, y >= 0, with b >= 0.
type standardForm struct {
	c     []float64
	A     *mat.Dense
	b     []float64
	cols  []column
	shift []float64
}

// toStandard converts the free part of p. Finite lower bounds shift the
// column, a finite upper bound alone mirrors it, unbounded columns are split
// into a positive and a negative part. Each finite range adds a row y + s = hi - lo.
func toStandard(p *problem) *standardForm {
	sf := &standardForm{shift: make([]float64, len(p.vars))}
	colsOf := make(map[int][]int)
	var bounds []boundRow
	addCol := func(v int, sign float64) int {
		sf.cols = append(sf.cols, column{v: v, sign: sign})
		k := len(sf.cols) - 1
		colsOf[v] = append(colsOf[v], k)
		return k
	}
	for _, r := range p.rows {
		for _, v := range r.idx {
			if _, done := colsOf[v]; done {
				continue
			}
			lo, hi := p.vars[v].Lower, p.vars[v].Upper
			switch {
			case !math.IsInf(lo, -1):
				sf.shift[v] = lo
				k := addCol(v, 1)
				if !math.IsInf(hi, 1) {
					bounds = append(bounds, boundRow{col: k, width: hi - lo})
				}
			case !math.IsInf(hi, 1):
				sf.shift[v] = hi
				addCol(v, -1)
			default:
				addCol(v, 1)
				addCol(v, -1)
			}
		}
	}

	nStruct := len(sf.cols)
	rows := len(p.rows) + len(bounds)
	cols := nStruct + len(bounds)
	sf.A = mat.NewDense(rows, cols, nil)
	sf.b = make([]float64, rows)
	sf.c = make([]float64, cols)
	for k, col := range sf.cols {
		sf.c[k] = p.cost[col.v] * col.sign
	}
	for i, r := range p.rows {
		rhs := r.rhs
		for t, v := range r.idx {
			a := r.coef[t]
			rhs -= a * sf.shift[v]
			for _, k := range colsOf[v] {
				sf.A.Set(i, k, sf.A.At(i, k)+a*sf.cols[k].sign)
			}
		}
		sf.b[i] = rhs
	}
	for q, br := range bounds {
		i := len(p.rows) + q
		sf.A.Set(i, br.col, 1)
		sf.A.Set(i, nStruct+q, 1)
		sf.b[i] = br.width
	}
	for i := range sf.b {
		if sf.b[i] < 0 {
			sf.b[i] = -sf.b[i]
			for j := 0; j < cols; j++ {
				sf.A.Set(i, j, -sf.A.At(i, j))
			}
		}
	}
	return sf
}

// assign writes the standard-form solution y back onto the free columns of p.
func (sf *standardForm) assign(p *problem, y []float64) {
	acc := make(map[int]float64)
	for k, col := range sf.cols {
		acc[col.v] += col.sign * y[k]
	}
	for v, d := range acc {
		lo, hi := p.vars[v].Lower, p.vars[v].Upper
		p.value[v] = math.Min(math.Max(sf.shift[v]+d, lo), hi)
	}
}
