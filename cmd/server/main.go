// Package main implements the entry point for the TaskHub API server, which
// manages users' tasks, runs background task generation and relays chat
// sessions with an AI assistant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a database migration command: up, down, status, version or create")
	migrationName := flag.String("name", "", "Name of the migration to create (used with -migrate=create)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", redact.Error(err))
	}

	appLogger, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer func() { _ = closer.Close() }()

	if *migrateCmd != "" {
		if err := handleMigrations(cfg, *migrateCmd, *migrationName); err != nil {
			appLogger.Error("Migration failed", "command", *migrateCmd, "error", redact.Error(err))
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("Server stopped with error", "error", redact.Error(err))
		os.Exit(1)
	}
}

// run wires the application and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage_backend", cfg.Database.Backend)

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.start(ctx); err != nil {
		app.cleanup()
		return fmt.Errorf("failed to start background workers: %w", err)
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}
