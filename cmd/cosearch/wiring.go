package main

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/codesearch/internal/cfg"
	"github.com/fyrsmithlabs/codesearch/internal/obslog"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/aider"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/amp"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/claudecode"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/cline"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/codex"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/gemini"
)

// loadConfig applies the --config/--data-dir flags over internal/cfg's
// file+env precedence.
func loadConfig() (*cfg.Config, error) {
	c, err := cfg.LoadWithFile(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	return c, nil
}

func newLogger(lc cfg.LoggingConfig) (*obslog.Logger, error) {
	level, err := obslog.LevelFromString(lc.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	oc := obslog.DefaultConfig()
	oc.Level = level
	oc.Format = lc.Format
	return obslog.New(oc, nil)
}

// defaultRegistry returns every connector cosearch ships, in the fixed
// order runIndex scans them.
func defaultRegistry() *connectors.Registry {
	r := connectors.NewRegistry()
	r.Register(aider.New())
	r.Register(codex.New())
	r.Register(claudecode.New())
	r.Register(cline.New())
	r.Register(gemini.New())
	r.Register(amp.New())
	return r
}

// dataRootFor resolves a per-connector root override from config,
// falling back to the connector's own default resolution (env var,
// then hardcoded path) when none is configured.
func dataRootFor(c *cfg.Config, slug string) string {
	if c == nil {
		return ""
	}
	return c.Connectors.DataRoots[slug]
}
