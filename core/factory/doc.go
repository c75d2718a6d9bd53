// Package factory instantiates pluggable modules (solvers, metrics sinks) from
// configuration. A module is described by a type string and a map of raw
// settings; each registered factory decodes the settings into its own typed
// struct and returns the concrete implementation.
//
//	reg := factory.NewRegistry[solver.Solver]()
//	_ = reg.Register("highs", func(conf map[string]any) (solver.Solver, error) {
//	    var c struct{ Binary string `json:"binary"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return highs.New(c.Binary), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "highs", Conf: map[string]any{"binary": "highs"}})
package factory
