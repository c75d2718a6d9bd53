package optimize

import (
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/kilianp07/hems/core/logger"
	"github.com/kilianp07/hems/core/metrics"
	"github.com/kilianp07/hems/core/model"
	"github.com/kilianp07/hems/core/solver"
)

// Engine solves consecutive days, carrying the battery charge from one day to
// the next. An Engine holds no per-run state and may be shared by concurrent
// runs as long as its solver is safe for concurrent use.
type Engine struct {
	builder  *Builder
	solver   solver.Solver
	log      logger.Logger
	rec      metrics.Recorder
	scenario string
	runID    string
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for progress messages.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRecorder sets the recorder notified of every solved or failed day.
func WithRecorder(r metrics.Recorder) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// WithScenario labels events with a scenario name and run identifier.
func WithScenario(name, runID string) EngineOption {
	return func(e *Engine) {
		e.scenario = name
		e.runID = runID
	}
}

// NewEngine returns an Engine using b to build and s to solve each day.
func NewEngine(b *Builder, s solver.Solver, opts ...EngineOption) *Engine {
	e := &Engine{
		builder: b,
		solver:  s,
		log:     logger.NopLogger{},
		rec:     metrics.NopSink{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SolveDay builds, solves and extracts a single day.
func (e *Engine) SolveDay(ctx context.Context, w model.DayWindow, spec model.SystemSpec) (model.DayResult, error) {
	start := e.now()
	m, err := e.builder.Build(w, spec)
	if err != nil {
		kind := "build"
		var ih *InsufficientHorizonError
		if errors.As(err, &ih) {
			kind = "horizon"
		}
		e.recordFailure(w, kind, err)
		return model.DayResult{}, err
	}
	text := m.String()

	sol, err := e.solver.Solve(ctx, m)
	if err != nil {
		if solver.IsModelError(err) {
			e.recordFailure(w, "infeasible", err)
			return model.DayResult{}, &ModelInfeasibleError{Window: w, Spec: spec, Model: text, Err: err}
		}
		e.recordFailure(w, "solver", err)
		return model.DayResult{}, &SolverFailureError{Window: w, Spec: spec, Model: text, Err: err}
	}

	res, err := Extract(w, spec, sol, text)
	if err != nil {
		e.recordFailure(w, "solver", err)
		return model.DayResult{}, &SolverFailureError{Window: w, Spec: spec, Model: text, Err: err}
	}

	elapsed := e.now().Sub(start)
	e.log.Debugw("day solved", map[string]any{
		"scenario":   e.scenario,
		"day":        w.Name(),
		"cost_total": res.Cost.Total,
		"baseline":   res.Cost.OnlyUncontrolledLoad,
		"soc_eod":    res.BatteryKWhAtEoD,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if err := e.rec.RecordDay(metrics.DayEvent{
		Scenario:      e.scenario,
		RunID:         e.runID,
		Result:        res,
		SolveDuration: elapsed,
		Time:          e.now(),
	}); err != nil {
		e.log.Warnf("record day %s: %v", w.Name(), err)
	}
	return res, nil
}

// Run solves days in order starting from spec.BatteryKWhAtSoD. Each day's
// end-of-day charge becomes the next day's start-of-day charge. The first
// failing day stops the run: the days solved so far are returned together
// with the unmodified error.
func (e *Engine) Run(ctx context.Context, days iter.Seq[model.DayWindow], spec model.SystemSpec) ([]model.DayResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	start := e.now()
	var results []model.DayResult
	cur := spec
	for w := range days {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := e.SolveDay(ctx, w, cur)
		if err != nil {
			e.log.Errorf("scenario %q stopped at %s after %d days: %v", e.scenario, w.Name(), len(results), err)
			return results, err
		}
		results = append(results, res)
		cur = cur.WithStartOfDay(res.BatteryKWhAtEoD)
	}

	sum := model.Summarize(results)
	e.log.Infow("run complete", map[string]any{
		"scenario": e.scenario,
		"days":     sum.Days,
		"total":    sum.Total,
		"baseline": sum.OnlyUncontrolledLoad,
		"savings":  sum.Savings(),
	})
	if rr, ok := e.rec.(metrics.RunRecorder); ok {
		if err := rr.RecordRun(metrics.RunEvent{
			Scenario: e.scenario,
			RunID:    e.runID,
			Summary:  sum,
			Duration: e.now().Sub(start),
			Time:     e.now(),
		}); err != nil {
			e.log.Warnf("record run: %v", err)
		}
	}
	return results, nil
}

// RunWindows is Run over a materialized slice of windows.
func (e *Engine) RunWindows(ctx context.Context, windows []model.DayWindow, spec model.SystemSpec) ([]model.DayResult, error) {
	return e.Run(ctx, slices.Values(windows), spec)
}

func (e *Engine) recordFailure(w model.DayWindow, kind string, err error) {
	fr, ok := e.rec.(metrics.FailureRecorder)
	if !ok {
		return
	}
	if rerr := fr.RecordFailure(metrics.FailureEvent{
		Scenario: e.scenario,
		RunID:    e.runID,
		Day:      w.Day,
		Kind:     kind,
		Err:      err.Error(),
		Time:     e.now(),
	}); rerr != nil {
		e.log.Warnf("record failure %s: %v", w.Name(), errors.Join(rerr, err))
	}
}
