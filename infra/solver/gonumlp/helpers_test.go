package gonumlp

import "github.com/kilianp07/hems/core/factory"

func factoryConfig(conf map[string]any) factory.ModuleConfig {
	return factory.ModuleConfig{Type: Name, Conf: conf}
}
