package highs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// result is the content of a HiGHS raw solution file.
type result struct {
	modelStatus  string
	primalStatus string
	objective    float64
	columns      map[string]float64
}

// parseSolution reads the "raw" solution format written by
// `highs --solution_file`.
func parseSolution(r io.Reader) (result, error) {
	res := result{columns: make(map[string]float64)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	next := func() (string, bool) {
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				return line, true
			}
		}
		return "", false
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		switch {
		case line == "Model status":
			if res.modelStatus, ok = next(); !ok {
				return res, fmt.Errorf("solution file: missing model status")
			}
		case line == "# Primal solution values":
			if res.primalStatus, ok = next(); !ok {
				return res, fmt.Errorf("solution file: missing primal status")
			}
		case strings.HasPrefix(line, "Objective "):
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Objective ")), 64)
			if err != nil {
				return res, fmt.Errorf("solution file: objective: %w", err)
			}
			res.objective = v
		case strings.HasPrefix(line, "# Columns ") && len(res.columns) == 0:
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Columns ")))
			if err != nil {
				return res, fmt.Errorf("solution file: column count: %w", err)
			}
			for i := 0; i < n; i++ {
				l, ok := next()
				if !ok {
					return res, fmt.Errorf("solution file: expected %d columns, got %d", n, i)
				}
				fields := strings.Fields(l)
				if len(fields) != 2 {
					return res, fmt.Errorf("solution file: malformed column line %q", l)
				}
				v, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return res, fmt.Errorf("solution file: column %s: %w", fields[0], err)
				}
				res.columns[fields[0]] = v
			}
		case line == "# Dual solution values":
			return res, sc.Err()
		}
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	if res.modelStatus == "" {
		return res, fmt.Errorf("solution file: no model status")
	}
	return res, nil
}
