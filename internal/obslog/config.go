// Package obslog wraps zap with the context-aware logger shape and
// stdout/OTEL dual-core construction used by the teacher's
// internal/logging package, scaled down to what a single-binary CLI
// needs: no multi-tenant context propagation, no sampling, no
// redaction — just level/format/caller/OTEL-bridge knobs driven by
// internal/cfg.
package obslog

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration, built from internal/cfg.LoggingConfig
// by the CLI entry point rather than loaded independently.
type Config struct {
	Level  zapcore.Level
	Format string // "json" or "console"
	Caller CallerConfig
	OTEL   OTELConfig
}

// CallerConfig controls caller-location annotation on log entries.
type CallerConfig struct {
	Enabled bool
	Skip    int
}

// OTELConfig optionally bridges log entries into an OpenTelemetry
// LoggerProvider in addition to stdout.
type OTELConfig struct {
	Enabled bool
}

// DefaultConfig returns sane CLI defaults: info level, console format,
// caller annotation on, OTEL bridge off.
func DefaultConfig() Config {
	return Config{
		Level:  zapcore.InfoLevel,
		Format: "console",
		Caller: CallerConfig{Enabled: true, Skip: 1},
	}
}

// Validate reports configuration errors not already caught by defaults.
func (c Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("obslog: format must be 'json' or 'console', got %q", c.Format)
	}
	if c.Caller.Enabled && c.Caller.Skip < 0 {
		return fmt.Errorf("obslog: caller skip must be >= 0, got %d", c.Caller.Skip)
	}
	return nil
}
