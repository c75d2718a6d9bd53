// Package config loads the optimizer configuration from YAML or JSON files
// with optional K_ prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/hems/core/audit"
	"github.com/kilianp07/hems/core/factory"
	"github.com/kilianp07/hems/core/metrics"
	"github.com/kilianp07/hems/core/model"
	"github.com/kilianp07/hems/core/optimize"
	"github.com/kilianp07/hems/infra/ingest"
)

// DefaultSolver is the backend used when none is configured.
const DefaultSolver = "gonum"

type Config struct {
	System    model.SystemSpec     `json:"system"`
	Optimizer optimize.Config      `json:"optimizer"`
	Solver    factory.ModuleConfig `json:"solver"`
	Tariff    ingest.Tariff        `json:"tariff"`
	Input     InputConfig          `json:"input"`
	Output    OutputConfig         `json:"output"`
	Metrics   metrics.Config       `json:"metrics"`
	Audit     audit.Config         `json:"audit"`
	// LogLevel is used when LOG_LEVEL is not set in the environment.
	LogLevel  string           `json:"log_level"`
	Scenarios []ScenarioConfig `json:"scenarios"`
	// Parallelism caps the scenarios solved at once. Zero means no limit.
	Parallelism int `json:"parallelism"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, nested with "__": K_SYSTEM__PV_KW.
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "k_")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Optimizer.SetDefaults()
	if c.Solver.Type == "" {
		c.Solver.Type = DefaultSolver
	}
	c.Input.SetDefaults()
	c.Audit.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.System.Validate(); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	seen := make(map[string]bool, len(c.Scenarios))
	for i, s := range c.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenarios[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("scenarios[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		if err := s.Apply(c.System).Validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	return nil
}
