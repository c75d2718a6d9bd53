package lpmodel

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// termsPerLine keeps rendered lines well under the 255 character limit some
// LP readers enforce.
const termsPerLine = 8

// Render writes the model in CPLEX LP format.
func (m *Model) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(m.Sense.String())
	bw.WriteString("\n obj:")
	writeTerms(bw, m.Objective)
	bw.WriteString("\nSubject To\n")
	for _, c := range m.Constraints {
		bw.WriteString(" ")
		bw.WriteString(c.Name)
		bw.WriteString(":")
		writeTerms(bw, c.Terms)
		bw.WriteString(" = ")
		bw.WriteString(formatNumber(c.RHS))
		bw.WriteString("\n")
	}
	bw.WriteString("Bounds\n")
	for _, v := range m.Vars {
		if line := boundLine(v); line != "" {
			bw.WriteString(" ")
			bw.WriteString(line)
			bw.WriteString("\n")
		}
	}
	bw.WriteString("End\n")
	return bw.Flush()
}

// String renders the model, see Render.
func (m *Model) String() string {
	var sb strings.Builder
	_ = m.Render(&sb)
	return sb.String()
}

func writeTerms(bw *bufio.Writer, terms []Term) {
	if len(terms) == 0 {
		bw.WriteString(" 0")
		return
	}
	for i, t := range terms {
		if i > 0 && i%termsPerLine == 0 {
			bw.WriteString("\n   ")
		}
		coef := t.Coef
		switch {
		case coef < 0:
			bw.WriteString(" - ")
			coef = -coef
		case i > 0:
			bw.WriteString(" + ")
		default:
			bw.WriteString(" ")
		}
		if coef != 1 {
			bw.WriteString(formatNumber(coef))
			bw.WriteString(" ")
		}
		bw.WriteString(t.Var)
	}
}

// boundLine renders the bound of v, or "" when v has the LP default [0, +inf).
func boundLine(v Var) string {
	lo, hi := v.Lower, v.Upper
	switch {
	case lo == 0 && math.IsInf(hi, 1):
		return ""
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return v.Name + " free"
	case lo == hi:
		return v.Name + " = " + formatNumber(lo)
	case math.IsInf(hi, 1):
		return v.Name + " >= " + formatNumber(lo)
	case math.IsInf(lo, -1):
		return "-inf <= " + v.Name + " <= " + formatNumber(hi)
	default:
		return formatNumber(lo) + " <= " + v.Name + " <= " + formatNumber(hi)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
