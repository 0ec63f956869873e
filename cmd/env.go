package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/conneroisu/starlay/internal/config"
	"github.com/conneroisu/starlay/internal/injection"
	"github.com/conneroisu/starlay/internal/logging"
	"github.com/conneroisu/starlay/internal/prelude"
	"github.com/conneroisu/starlay/internal/semantics"
)

// loadConfigAndLogger loads the configuration and builds the logger it
// describes.
func loadConfigAndLogger() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	return cfg, logger, nil
}

// buildEnvironment runs the full injection sequence: stock catalog,
// semantics store from config, then exports evaluation and sealing.
func buildEnvironment(ctx context.Context) (*config.Config, *injection.Result, error) {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return nil, nil, err
	}

	reg, err := prelude.NewRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build registry: %w", err)
	}

	store := semantics.NewStore(cfg.Flags)

	result, err := injection.Run(ctx, reg, store, cfg.Exports.Paths, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("injection failed: %w", err)
	}

	return cfg, result, nil
}
