package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Compare runs every configured scenario over the same input. Scenarios run
// concurrently, at most cfg.Parallelism at a time, while the days of one
// scenario are solved in order. A failing scenario does not stop the others;
// the returned error joins every failure. Reports follow the configuration
// order, with the base system alone when no scenario is configured.
func (s *Service) Compare(ctx context.Context) ([]Report, error) {
	windows, err := s.Windows(ctx)
	if err != nil {
		return nil, err
	}
	scenarios := s.cfg.Scenarios
	reports := make([]Report, max(len(scenarios), 1))
	if len(scenarios) == 0 {
		reports[0] = s.Run(ctx, BaseScenario, s.cfg.System, windows)
	} else {
		var g errgroup.Group
		if s.cfg.Parallelism > 0 {
			g.SetLimit(s.cfg.Parallelism)
		}
		for i, sc := range scenarios {
			g.Go(func() error {
				reports[i] = s.Run(ctx, sc.Name, sc.Apply(s.cfg.System), windows)
				return nil
			})
		}
		_ = g.Wait()
	}

	var errs []error
	for _, rep := range reports {
		if rep.Err != nil {
			errs = append(errs, fmt.Errorf("scenario %s: %w", rep.Scenario, rep.Err))
		}
		if err := s.export(rep, scenarioPath(s.cfg.Output.Path, rep.Scenario)); err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}
