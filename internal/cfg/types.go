// Package cfg loads codesearch's configuration, grounded on the
// teacher's internal/config package: koanf-backed YAML-plus-env loading
// with the same path/permission hardening and env-var transformer
// convention.
package cfg

import "fmt"

// Config is codesearch's top-level configuration.
//
// There is deliberately no search/merge-tuning section: the schema
// hash, merge threshold, and merge cooldown are fixed constants in
// internal/searchindex for bug-for-bug on-disk compatibility, not
// operator-configurable knobs.
type Config struct {
	DataDir    string           `koanf:"data_dir"`
	Logging    LoggingConfig    `koanf:"logging"`
	Connectors ConnectorsConfig `koanf:"connectors"`
}

// LoggingConfig mirrors the teacher's observability section, scaled
// down to what a CLI tool needs.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ConnectorsConfig lets an operator restrict which connectors run, and
// override any connector's per-agent data root without an env var.
type ConnectorsConfig struct {
	Enabled   []string          `koanf:"enabled"`
	DataRoots map[string]string `koanf:"data_roots"`
}

// Validate reports configuration errors that defaults can't paper over.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be 'console' or 'json', got %q", c.Logging.Format)
	}
	return nil
}
