package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codesearch/internal/apperr"
	"github.com/fyrsmithlabs/codesearch/internal/searchindex"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors"
)

var flagFull bool

func init() {
	indexCmd.Flags().BoolVar(&flagFull, "full", false, "ignore bookkeeping and re-scan every connector from scratch")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Scan every configured connector and update the search index",
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return apperr.IOFatal("load-config", flagConfig, err)
	}

	logger, err := newLogger(c.Logging)
	if err != nil {
		return apperr.IOFatal("build-logger", "", err)
	}
	defer logger.Sync()

	idx, err := searchindex.OpenOrCreate(searchindex.IndexDir(c.DataDir), logger.Underlying())
	if err != nil {
		return apperr.IndexCorrupt(searchindex.IndexDir(c.DataDir), err)
	}
	defer idx.Close()

	state, err := loadScanState(c.DataDir)
	if err != nil {
		return apperr.IOFatal("load-scan-state", statePath(c.DataDir), err)
	}

	ctx := context.Background()
	registry := defaultRegistry()

	totalConvs, totalMsgs := 0, 0
	for _, connector := range registry.All() {
		slug := connector.Slug()

		if len(c.Connectors.Enabled) > 0 {
			enabled := false
			for _, s := range c.Connectors.Enabled {
				if s == slug {
					enabled = true
					break
				}
			}
			if !enabled {
				logger.Debug(ctx, "connector not enabled in config, skipping", zap.String("agent", slug))
				continue
			}
		}

		detection := connector.Detect(ctx)
		if !detection.Detected {
			logger.Debug(ctx, "connector not detected, skipping", zap.String("agent", slug))
			continue
		}

		var sinceTS *int64
		if !flagFull {
			if ts, ok := state.LastScanTS[slug]; ok {
				t := ts
				sinceTS = &t
			}
		}

		convs, err := connector.Scan(ctx, connectors.ScanContext{
			DataRoot: dataRootFor(c, slug),
			SinceTS:  sinceTS,
		})
		if err != nil {
			logger.Warn(ctx, "connector scan failed, continuing with other connectors",
				zap.String("agent", slug), zap.Error(err))
			continue
		}

		for i := range convs {
			idx.AddConversation(&convs[i])
			totalMsgs += len(convs[i].Messages)
		}
		totalConvs += len(convs)
		state.LastScanTS[slug] = nowMillis()

		logger.Info(ctx, "connector scanned", zap.String("agent", slug), zap.Int("conversations", len(convs)))
	}

	if err := idx.Commit(); err != nil {
		return apperr.IndexWriteFatal(err)
	}
	if err := state.save(c.DataDir); err != nil {
		return apperr.IOFatal("save-scan-state", statePath(c.DataDir), err)
	}

	fmt.Printf("indexed %d conversations (%d messages) across %d segments\n",
		totalConvs, totalMsgs, idx.SegmentCount())

	merged, err := idx.OptimizeIfIdle(logger.Underlying())
	if err != nil {
		logger.Warn(ctx, "background merge check failed", zap.Error(err))
	} else if merged {
		fmt.Println("merged segments")
	}

	return nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
