package main

import (
	"fmt"
	"log/slog"
	"os"

	"walink/internal/config"
	"walink/pkg/logger"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "walinkctl",
	Short:        "Operator tools for the walink server",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the same .env and environment as the server
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.NewWithFormat(level, "text", os.Stderr).Logger
}
