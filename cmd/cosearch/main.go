// Command cosearch indexes and searches local conversation histories
// from every supported coding-assistant tool through one ranked
// full-text search interface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/codesearch/internal/apperr"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportAndExit(err)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cosearch",
	Short:         "Unified ranked search over local coding-assistant conversation history",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var (
	flagDataDir string
	flagConfig  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the index/bookkeeping directory (default: from config, or ~/.local/share/codesearch)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yaml (default: ~/.config/codesearch/config.yaml)")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
}

// reportAndExit renders err as the robot-mode JSON envelope when it
// carries apperr structure, otherwise a plain message, then exits with
// the error's code (or 1 for anything unstructured).
func reportAndExit(err error) {
	var appErr *apperr.Error
	if e, ok := err.(*apperr.Error); ok {
		appErr = e
	}

	if appErr == nil {
		fmt.Fprintf(os.Stderr, "cosearch: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, envelopeJSON(appErr))
	os.Exit(appErr.Code())
}
