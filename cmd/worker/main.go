// Command worker refreshes the stored article snapshot on a cron schedule.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pgRepo "news-aggregator/internal/infra/adapter/persistence/postgres"
	"news-aggregator/internal/infra/catalog"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/infra/worker"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/tracing"
	"news-aggregator/internal/usecase/aggregate"
	"news-aggregator/internal/usecase/dedup"
	"news-aggregator/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	tp := tracing.Setup()
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	if err := run(logger); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := worker.LoadConfigFromEnv(logger)
	logger.Info("worker configuration loaded",
		slog.String("schedule", cfg.Schedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("timeout", cfg.Timeout),
		slog.Int("per_source_limit", cfg.PerSourceLimit),
		slog.String("category", cfg.Category),
		slog.Duration("retention", cfg.Retention))

	svc, err := buildAggregator(logger)
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger)

	health := worker.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	healthDone := make(chan struct{})
	go func() {
		defer close(healthDone)
		if err := health.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server exited", slog.Any("error", err))
		}
	}()

	refresher := worker.NewRefresher(svc, pgRepo.NewSnapshotRepo(database), cfg, logger, health)

	if config.GetEnvBool("REFRESH_ON_START", true) {
		stats, err := refresher.RunOnce(ctx)
		if err != nil {
			logger.Warn("initial snapshot refresh failed", slog.Any("error", err))
		} else {
			logger.Info("initial snapshot refresh completed",
				slog.Int("articles", stats.Articles),
				slog.Any("failed_sources", stats.FailedSources),
				slog.Duration("duration", stats.Duration))
		}
	}

	scheduler, err := refresher.Start(ctx)
	if err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}
	health.SetReady(true)

	<-ctx.Done()
	logger.Info("shutting down worker...")
	health.SetReady(false)

	// wait for an in-flight run to finish
	select {
	case <-scheduler.Stop().Done():
	case <-time.After(cfg.Timeout):
		logger.Warn("timed out waiting for running refresh")
	}
	<-healthDone

	logger.Info("worker stopped")
	return nil
}

func buildAggregator(logger *slog.Logger) (*aggregate.Service, error) {
	cat, err := catalog.Load(config.GetEnvString("SOURCES_FILE", "sources.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	sources, err := catalog.Build(cat, logger)
	if err != nil {
		return nil, fmt.Errorf("build sources: %w", err)
	}
	strategy, err := dedup.ParseStrategy(config.GetEnvString("DEDUP_STRATEGY", dedup.Combined.String()))
	if err != nil {
		return nil, fmt.Errorf("DEDUP_STRATEGY: %w", err)
	}
	return aggregate.NewService(sources, strategy, aggregate.WithLogger(logger))
}

func openDatabase(ctx context.Context) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, config.GetEnvString("DATABASE_URL", ""), db.LoadConnectionConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}
