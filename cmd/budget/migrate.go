package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/log"
	"budget/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply the embedded schema migrations to the configured SQL backend.

The server also migrates on start-up; this command exists for deploy pipelines
that prefer an explicit step.`,
		RunE: runMigrate,
	}
	cmd.Flags().Bool("status", false, "Show current migration version without applying changes")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	backendCfg, err := backend.FromAppConfig(appConfig)
	if err != nil {
		return err
	}
	dialect, dsn, err := backendCfg.DSN()
	if err != nil {
		return err
	}
	if dialect == storage.DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(backendCfg.SQLiteDBPath), 0o755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	logger := appLogger.Slog().With(log.FieldComponent, log.ComponentStorage, "dialect", dialect)

	if !status {
		logger.Info("Running database migrations", log.FieldOperation, log.OpMigrate)
		if err := storage.RunMigrations(dialect, dsn); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	current, err := storage.CurrentMigration(dialect, dsn)
	if err != nil {
		return fmt.Errorf("read migration status: %w", err)
	}
	level := slog.LevelInfo
	if current.Dirty {
		level = slog.LevelWarn
	}
	logger.Log(cmd.Context(), level, "Database migration status", "version", current.Version, "dirty", current.Dirty)
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", current.Version, current.Dirty)
	return nil
}
