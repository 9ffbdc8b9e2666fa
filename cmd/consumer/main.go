// Package main implements the entry point for the labeling consumer,
// the worker process that claims queued labeling work, calls the model,
// and moves tasks into review.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/labelwise/labelwise-api/internal/config"
	"github.com/labelwise/labelwise-api/internal/domain"
	"github.com/labelwise/labelwise-api/internal/events"
	"github.com/labelwise/labelwise-api/internal/labeling"
	"github.com/labelwise/labelwise-api/internal/pipeline"
	"github.com/labelwise/labelwise-api/internal/platform/gemini"
	"github.com/labelwise/labelwise-api/internal/platform/logger"
	"github.com/labelwise/labelwise-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("consumer failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("consumer configuration loaded",
		"queue", cfg.Queue.Name,
		"retry_policy", cfg.Queue.RetryPolicy,
		"lease_seconds", cfg.Queue.LeaseSeconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("error closing database connection", "error", err)
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db, appLogger)

	queue := postgres.NewPostgresQueue(db, postgres.QueueOptions{
		Name:            cfg.Queue.Name,
		Lease:           cfg.Queue.Lease(),
		MaxRedeliveries: cfg.Queue.MaxRedeliveries,
	}, appLogger)

	nerLabeler, err := gemini.NewLabeler(ctx, appLogger, cfg.Labeler)
	if err != nil {
		return fmt.Errorf("failed to initialize labeler: %w", err)
	}

	registry := labeling.NewRegistry()
	registry.Register(domain.TaskTypeNER, nerLabeler)

	broadcaster := events.NewInMemoryBroadcaster(appLogger)

	consumer := pipeline.NewConsumer(
		taskStore,
		queue,
		registry,
		broadcaster,
		appLogger,
		pipeline.WithRetryPolicy(cfg.Queue.RetryPolicy),
	)

	sweeper := pipeline.NewSweeper(
		taskStore,
		cfg.Queue.StuckTaskAge(),
		cfg.Queue.SweepInterval(),
		appLogger,
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("consumer loop stopped", "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("sweeper loop stopped", "error", err)
		}
	}()

	appLogger.Info("consumer started")
	wg.Wait()

	appLogger.Info("consumer shutdown completed")
	return nil
}
