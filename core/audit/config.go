package audit

import "fmt"

// Config defines where solved days are recorded.
type Config struct {
	// Backend selects the store type: "" (disabled), "jsonl", "rotating" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// Enabled reports whether a store is configured.
func (c Config) Enabled() bool { return c.Backend != "" }

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if !c.Enabled() {
		return
	}
	if c.Path == "" {
		c.Path = "audit.jsonl"
		if c.Backend == "sqlite" {
			c.Path = "audit.db"
		}
	}
	if c.Backend == "rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 100
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "", "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown audit backend %s", c.Backend)
	}
	if c.Enabled() && c.Path == "" {
		return fmt.Errorf("audit path is required")
	}
	return nil
}

// Open returns the store selected by cfg.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("audit store disabled")
	}
}
