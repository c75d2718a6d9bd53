// Package highs solves LP models with the external HiGHS command line solver.
package highs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/hems/core/factory"
	"github.com/kilianp07/hems/core/lpmodel"
	"github.com/kilianp07/hems/core/solver"
)

// Name is the registry key of this backend.
const Name = "highs"

// Config holds the backend settings.
type Config struct {
	// Binary is the HiGHS executable, looked up in PATH when not absolute.
	Binary string `json:"binary"`
	// TimeLimit bounds a single solve in seconds. Zero leaves HiGHS' default.
	TimeLimit float64 `json:"time_limit"`
	// Threads caps the solver's thread count. Zero leaves HiGHS' default.
	Threads int `json:"threads"`
	// WorkDir holds the temporary model and solution files. Empty uses the
	// system temporary directory.
	WorkDir string `json:"work_dir"`
}

// Solver runs one HiGHS process per solve. It is safe for concurrent use.
type Solver struct {
	cfg Config
}

// runCommand executes the solver binary. It can be overridden in tests.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func init() {
	_ = solver.Register(Name, func(conf map[string]any) (solver.Solver, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(c), nil
	})
}

// New returns a HiGHS backed solver.
func New(cfg Config) *Solver {
	if cfg.Binary == "" {
		cfg.Binary = "highs"
	}
	return &Solver{cfg: cfg}
}

func (s *Solver) args(modelPath, solutionPath string) []string {
	args := []string{"--model_file", modelPath, "--solution_file", solutionPath}
	if s.cfg.TimeLimit > 0 {
		args = append(args, "--time_limit", strconv.FormatFloat(s.cfg.TimeLimit, 'g', -1, 64))
	}
	if s.cfg.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(s.cfg.Threads))
	}
	return args
}

// Solve writes m as an LP file, runs HiGHS on it and reads back the primal
// values.
func (s *Solver) Solve(ctx context.Context, m *lpmodel.Model) (solver.Solution, error) {
	fail := func(raw string, err error) (solver.Solution, error) {
		return solver.Solution{}, &solver.FailureError{Backend: Name, Raw: raw, Err: err}
	}
	dir, err := os.MkdirTemp(s.cfg.WorkDir, "hems-highs-")
	if err != nil {
		return fail("", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	modelPath := filepath.Join(dir, "model.lp")
	solutionPath := filepath.Join(dir, "solution.txt")
	var buf bytes.Buffer
	if err := m.Render(&buf); err != nil {
		return fail("", err)
	}
	if err := os.WriteFile(modelPath, buf.Bytes(), 0o600); err != nil {
		return fail("", err)
	}

	out, runErr := runCommand(ctx, s.cfg.Binary, s.args(modelPath, solutionPath)...)
	raw := string(out)
	f, err := os.Open(solutionPath)
	if err != nil {
		if runErr != nil {
			return fail(raw, fmt.Errorf("run %s: %w", s.cfg.Binary, runErr))
		}
		return fail(raw, fmt.Errorf("no solution file: %w", err))
	}
	defer func() { _ = f.Close() }()
	res, err := parseSolution(f)
	if err != nil {
		return fail(raw, err)
	}

	switch strings.ToLower(res.modelStatus) {
	case "optimal":
	case "infeasible", "primal infeasible or unbounded":
		return solver.Solution{}, fmt.Errorf("highs: %s: %w", res.modelStatus, solver.ErrInfeasible)
	case "unbounded":
		return solver.Solution{}, fmt.Errorf("highs: %s: %w", res.modelStatus, solver.ErrUnbounded)
	default:
		return fail(raw, errors.New("model status "+res.modelStatus))
	}
	for _, v := range m.Vars {
		if _, ok := res.columns[v.Name]; !ok {
			return fail(raw, fmt.Errorf("solution lacks column %s", v.Name))
		}
	}
	return solver.Solution{
		Status:    solver.StatusOptimal,
		Objective: res.objective,
		Values:    res.columns,
		Raw:       raw,
	}, nil
}
