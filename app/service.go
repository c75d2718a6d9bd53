// Package app wires the optimizer, its solver backend and its sinks from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kilianp07/hems/config"
	"github.com/kilianp07/hems/core/audit"
	"github.com/kilianp07/hems/core/chunk"
	coremetrics "github.com/kilianp07/hems/core/metrics"
	"github.com/kilianp07/hems/core/model"
	"github.com/kilianp07/hems/core/optimize"
	"github.com/kilianp07/hems/core/solver"
	"github.com/kilianp07/hems/infra/logger"
	"github.com/kilianp07/hems/infra/metrics"
	"github.com/kilianp07/hems/pkg/export"

	// Backends and sinks register themselves by name.
	_ "github.com/kilianp07/hems/infra/monitoring"
	_ "github.com/kilianp07/hems/infra/mqtt"
	_ "github.com/kilianp07/hems/infra/solver/gonumlp"
	_ "github.com/kilianp07/hems/infra/solver/highs"
)

// BaseScenario names the run of the configured system without overrides.
const BaseScenario = "base"

// Report is the outcome of one scenario run. Results holds the days solved
// before Err stopped the run, if any.
type Report struct {
	Scenario string
	RunID    string
	Spec     model.SystemSpec
	Results  []model.DayResult
	Summary  model.Summary
	Err      error
}

// Service orchestrates input loading, optimization and export.
type Service struct {
	cfg      *config.Config
	builder  *optimize.Builder
	solver   solver.Solver
	sink     *coremetrics.MultiSink
	log      logger.Logger
	newRunID func() string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	b, err := optimize.NewBuilder(cfg.Optimizer)
	if err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}
	s, err := solver.New(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	rec, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	sink := coremetrics.NewMultiSink(rec)
	if cfg.Audit.Enabled() {
		store, err := audit.Open(cfg.Audit)
		if err != nil {
			_ = sink.Close()
			return nil, fmt.Errorf("audit store: %w", err)
		}
		sink.Sinks = append(sink.Sinks, audit.NewSink(store))
	}
	return &Service{
		cfg:      cfg,
		builder:  b,
		solver:   s,
		sink:     sink,
		log:      logger.New("service"),
		newRunID: uuid.NewString,
	}, nil
}

// ServeMetrics exposes Prometheus metrics until ctx is cancelled. It returns
// immediately when no address is configured.
func (s *Service) ServeMetrics(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusAddr == "" {
		return nil
	}
	return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr, s.log)
}

// Windows loads the configured input and splits it into day windows.
func (s *Service) Windows(ctx context.Context) ([]model.DayWindow, error) {
	records, err := LoadRecords(ctx, s.cfg.Input, s.cfg.Tariff, s.log)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	windows, err := chunk.Split(records, chunk.WithHorizon(s.cfg.Optimizer.HorizonHours))
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("input holds %d records, no day has %d hours ahead", len(records), s.cfg.Optimizer.HorizonHours)
	}
	s.log.Infof("loaded %d records, %d days from %s", len(records), len(windows), windows[0].Name())
	return windows, nil
}

// Run optimizes windows for one scenario.
func (s *Service) Run(ctx context.Context, scenario string, spec model.SystemSpec, windows []model.DayWindow) Report {
	rep := Report{Scenario: scenario, RunID: s.newRunID(), Spec: spec}
	eng := optimize.NewEngine(s.builder, s.solver,
		optimize.WithLogger(logger.New("optimizer")),
		optimize.WithRecorder(s.sink),
		optimize.WithScenario(scenario, rep.RunID),
	)
	rep.Results, rep.Err = eng.RunWindows(ctx, windows, spec)
	rep.Summary = model.Summarize(rep.Results)
	return rep
}

// Optimize runs the configured system over the configured input and exports
// the results. The report is returned even when a day fails.
func (s *Service) Optimize(ctx context.Context) (Report, error) {
	windows, err := s.Windows(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := s.Run(ctx, BaseScenario, s.cfg.System, windows)
	if err := s.export(rep, s.cfg.Output.Path); err != nil {
		return rep, errors.Join(rep.Err, err)
	}
	return rep, rep.Err
}

func (s *Service) export(rep Report, path string) error {
	if path == "" || len(rep.Results) == 0 {
		return nil
	}
	if err := export.WriteFile(path, rep.Scenario, rep.RunID, rep.Results, s.cfg.Output.WithModel); err != nil {
		return fmt.Errorf("export %s: %w", rep.Scenario, err)
	}
	s.log.Infof("wrote %d days of %s to %s", len(rep.Results), rep.Scenario, path)
	return nil
}

// scenarioPath inserts the scenario name before the extension of path.
func scenarioPath(path, scenario string) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + scenario + ext
}

// Close flushes and releases every sink.
func (s *Service) Close() error { return s.sink.Close() }
