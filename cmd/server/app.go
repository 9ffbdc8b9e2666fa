package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/labelwise/labelwise-api/internal/config"
	"github.com/labelwise/labelwise-api/internal/events"
	"github.com/labelwise/labelwise-api/internal/pipeline"
	"github.com/labelwise/labelwise-api/internal/platform/postgres"
	"github.com/labelwise/labelwise-api/internal/service"
	"github.com/labelwise/labelwise-api/internal/service/auth"
	"github.com/labelwise/labelwise-api/internal/store"
)

// application holds the server's initialized dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Auth components
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	// Stores
	projectStore   store.ProjectStore
	taskStore      store.TaskStore
	annotatorStore store.AnnotatorStore
	feedbackStore  store.FeedbackStore

	// Pipeline
	queue     *postgres.PostgresQueue
	publisher *pipeline.Publisher

	// Event system
	broadcaster events.Broadcaster

	// Services
	annotatorService service.AnnotatorService
	projectService   service.ProjectService
	reviewService    service.ReviewService
	feedbackService  service.FeedbackService
}

// newApplication creates an application instance with all dependencies
// initialized. The configuration, logger, and database connection must be
// established before this is called.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.projectStore = postgres.NewPostgresProjectStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.annotatorStore = postgres.NewPostgresAnnotatorStore(db, logger)
	app.feedbackStore = postgres.NewPostgresFeedbackStore(db, logger)

	app.queue = postgres.NewPostgresQueue(db, postgres.QueueOptions{
		Name:            cfg.Queue.Name,
		Lease:           cfg.Queue.Lease(),
		MaxRedeliveries: cfg.Queue.MaxRedeliveries,
	}, logger)

	app.publisher = pipeline.NewPublisher(
		app.taskStore,
		app.projectStore,
		app.queue,
		logger,
		pipeline.WithBatchSize(cfg.Queue.BatchSize),
	)

	app.broadcaster = events.NewInMemoryBroadcaster(logger)

	app.annotatorService, err = service.NewAnnotatorService(
		app.annotatorStore,
		app.jwtService,
		app.passwordVerifier,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotator service: %w", err)
	}

	app.projectService, err = service.NewProjectService(
		db,
		app.projectStore,
		app.taskStore,
		app.publisher,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %w", err)
	}

	app.reviewService, err = service.NewReviewService(
		db,
		app.taskStore,
		app.annotatorStore,
		service.NewInMemoryCorrectionLog(),
		app.broadcaster,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	app.feedbackService, err = service.NewFeedbackService(
		db,
		app.taskStore,
		app.feedbackStore,
		app.broadcaster,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
