// Command oraclefeed runs the normalization/aggregation/scheduling core
// as a standalone process: load config, wire collaborators, start the
// fetch orchestrator and the debug HTTP surface, and shut down cleanly
// on SIGINT/SIGTERM.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/oraclefeed/internal/config"
	"github.com/aristath/oraclefeed/pkg/logger"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oraclefeed",
		Short: "Multi-source price normalization and aggregation core",
	}
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newAggregateOnceCmd())
	return cmd
}

func loadLogger(cfg *config.Config) zerolog.Logger {
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  isatty(),
		Service: "oraclefeed",
	})
	logger.SetGlobalLogger(log)
	return log
}

// isatty is a conservative stand-in: pretty console output is only worth
// it when something is likely to actually watch stdout interactively, so
// this defaults to false outside of an explicit DEV_MODE flag.
func isatty() bool {
	return os.Getenv("DEV_MODE") == "true"
}
