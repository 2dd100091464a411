package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskhub-api/internal/chat"
	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/events"
	"github.com/phrazzld/taskhub-api/internal/jobs"
	"github.com/phrazzld/taskhub-api/internal/platform/gemini"
	"github.com/phrazzld/taskhub-api/internal/platform/memory"
	"github.com/phrazzld/taskhub-api/internal/platform/postgres"
	"github.com/phrazzld/taskhub-api/internal/service"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
	"github.com/phrazzld/taskhub-api/internal/store"
)

// messageIDNode is the snowflake node of this process. A single API process
// writes chat messages, so one node is enough.
const messageIDNode = 1

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore
	chatStore store.ChatStore
	jobStore  jobs.Store

	// Services
	authService *auth.Service
	taskService service.TaskService
	chatService service.ChatService

	// Background work and realtime
	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
	scheduler    *jobs.Scheduler
	chatManager  *chat.Manager
}

// newApplication builds every component for cfg. With the postgres backend it
// also opens the database pool.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.setupStores(ctx); err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	var txBeginner store.TxBeginner
	if app.db != nil {
		txBeginner = app.db
	}
	app.taskService = service.NewTaskService(app.taskStore, txBeginner, app.eventEmitter, logger)

	app.authService = auth.NewService(
		app.userStore,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		tokens,
		cfg.Auth.TokenLifetime(),
		logger,
	)
	logger.Info("Authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.setupJobs()

	assistant, err := newAssistant(ctx, cfg.Assistant, logger)
	if err != nil {
		app.closeDB()
		return nil, err
	}

	ids, err := snowflake.NewNode(messageIDNode)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create message id generator: %w", err)
	}

	app.chatService = service.NewChatService(app.chatStore, assistant, ids, cfg.Assistant.HistoryLimit, logger)
	app.chatManager = chat.NewManager(app.chatService, logger)

	return app, nil
}

func (app *application) setupStores(ctx context.Context) error {
	switch app.config.Database.Backend {
	case "memory":
		app.userStore = memory.NewUserStore()
		app.taskStore = memory.NewTaskStore()
		app.chatStore = memory.NewChatStore()
		app.jobStore = memory.NewJobStore()
		app.logger.Warn("Using in-memory storage; data is lost on restart")
	case "postgres":
		db, err := setupAppDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		app.userStore = postgres.NewPostgresUserStore(db, app.logger)
		app.taskStore = postgres.NewPostgresTaskStore(db, app.logger)
		app.chatStore = postgres.NewPostgresChatStore(db, app.logger)
		app.jobStore = postgres.NewPostgresJobStore(db, app.logger)
	default:
		return fmt.Errorf("unsupported storage backend %q", app.config.Database.Backend)
	}
	return nil
}

// setupJobs wires task generation: events become jobs, jobs run on the runner,
// and the scheduler submits the periodic job.
func (app *application) setupJobs() {
	cfg := app.config.Jobs

	generator := jobs.NewTaskGenerator(app.taskService, app.userStore, app.logger)
	registry := jobs.NewRegistry()
	generator.Register(registry)

	app.jobRunner = jobs.NewRunner(app.jobStore, registry, jobs.RunnerConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		StuckJobAge: time.Duration(cfg.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)
	app.jobRunner.SetErrorHandler(func(job jobs.Job, err error) {
		app.logger.Error("background job failed",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"error", err)
	})

	app.eventEmitter.RegisterHandler(jobs.NewEventHandler(generator, app.jobRunner, app.logger))

	if cfg.PeriodicEnabled {
		app.scheduler = jobs.NewScheduler(cfg.PeriodicInterval, app.jobRunner, generator, app.logger)
	}
}

// newAssistant picks Gemini when an API key is configured, falling back to
// canned replies whenever the model fails.
func newAssistant(ctx context.Context, cfg config.AssistantConfig, logger *slog.Logger) (service.Assistant, error) {
	canned := chat.NewCannedResponder()
	if cfg.GeminiAPIKey == "" {
		logger.Info("No Gemini API key configured, using canned assistant replies")
		return canned, nil
	}

	responder, err := gemini.NewResponder(ctx, cfg, logger, gemini.WithFallback(canned))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini assistant: %w", err)
	}
	logger.Info("Gemini assistant initialized", "model", cfg.ModelName)
	return responder, nil
}

// start launches the job runner, which first recovers unfinished jobs, and
// the periodic scheduler.
func (app *application) start(ctx context.Context) error {
	if err := app.jobRunner.Start(); err != nil {
		return err
	}
	if app.scheduler != nil {
		app.scheduler.Start(ctx)
	}
	return nil
}

// cleanup stops background work and releases the database pool.
func (app *application) cleanup() {
	app.chatManager.Close()
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	app.jobRunner.Stop()
	app.closeDB()
}

func (app *application) closeDB() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database", "error", err)
	}
}
