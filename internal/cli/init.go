// Package cli holds the start-up and shutdown steps shared by the budget subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"budget/internal/config"
	"budget/internal/log"
)

// SetupLogger builds the process logger and installs it as the slog default.
func SetupLogger(level, format string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     lvl,
		Format:    format,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads .env for local development. A missing file is not an error.
func LoadEnvFile() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadAndValidateConfig reads the environment and rejects invalid settings.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ShutdownStep is one named unit of teardown work.
type ShutdownStep struct {
	Name string
	Run  func(context.Context) error
}

// GracefulShutdown runs steps in order under a shared deadline.
// Every step runs even if an earlier one fails; all failures are returned joined.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, steps ...ShutdownStep) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Shutting down", log.FieldOperation, log.OpShutdown, "timeout", timeout.String())

	var errs []error
	for _, step := range steps {
		if err := step.Run(ctx); err != nil {
			logger.Error("Shutdown step failed", "step", step.Name, log.FieldError, err)
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}
		logger.Debug("Shutdown step completed", "step", step.Name)
	}

	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached")
	} else {
		logger.Info("Shutdown complete")
	}
	return errors.Join(errs...)
}
