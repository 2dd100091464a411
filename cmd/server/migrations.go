package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationsSourceDir is where -migrate=create writes new files, relative to
// the repository root.
var migrationsSourceDir = filepath.Join("internal", "platform", "postgres", postgres.MigrationsDir)

var allowedMigrationCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"create":  true,
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger. It does not exit; the error reaches main
// through the goose return value.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// handleMigrations runs one goose command against the configured database.
// Migrations are read from the SQL files embedded in the postgres package.
func handleMigrations(cfg *config.Config, command, name string) error {
	if !allowedMigrationCommands[command] {
		return fmt.Errorf("unknown migration command %q", command)
	}

	log := slog.Default().With("component", "migrations")
	goose.SetLogger(&slogGooseLogger{logger: log})

	if command == "create" {
		if name == "" {
			return fmt.Errorf("migration name is required for create")
		}
		goose.SetBaseFS(nil)
		return goose.Create(nil, migrationsSourceDir, name, "sql")
	}

	if cfg.Database.Backend != "postgres" {
		return fmt.Errorf("migrations require the postgres backend, got %q", cfg.Database.Backend)
	}

	ctx := context.Background()
	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(postgres.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	log.Info("Executing migrations", "command", command)
	if err := goose.RunContext(ctx, command, db.DB, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	return nil
}
