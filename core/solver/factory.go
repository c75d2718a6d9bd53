package solver

import "github.com/kilianp07/hems/core/factory"

// DefaultBackend is used when the configuration does not name a solver.
const DefaultBackend = "gonum"

var registry = factory.NewRegistry[Solver]()

// Register adds a solver factory identified by name.
func Register(name string, f factory.Factory[Solver]) error {
	return registry.Register(name, f)
}

// New creates the solver described by cfg.
func New(cfg factory.ModuleConfig) (Solver, error) {
	if cfg.Type == "" {
		cfg.Type = DefaultBackend
	}
	return registry.Create(cfg)
}
