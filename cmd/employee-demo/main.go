package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/upb/employee-management/config"
	"github.com/upb/employee-management/internal/observability"
)

var configFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "employee-demo",
		Short: "Employee management with pluggable web, database, async and ml adapters",
		Long: `employee-demo wires the attendance, leave and performance services to
adapters created through the adapter registry.

Use "run" for a one-shot walkthrough of every adapter category and
"serve" to expose the employee API over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a JSON or YAML settings file")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())
	return rootCmd
}

// loadSettings reads the environment, builds the logger and layers the
// optional settings file on top
func loadSettings(ctx context.Context, customize func(*config.Config)) (*config.Manager, *zap.Logger, error) {
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if customize != nil {
		customize(cfg)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	manager, err := config.NewManager(cfg, configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("settings_file", manager.Path()))
	return manager, logger, nil
}
