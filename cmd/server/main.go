// Package main provides the entry point for the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appConfig "github.com/hacktopia/platform/internal/config"
	"github.com/hacktopia/platform/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "Team competition platform API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// bootstrap loads and validates configuration and builds the logger.
func bootstrap() (appConfig.Config, *zap.SugaredLogger, error) {
	cfg := appConfig.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}
