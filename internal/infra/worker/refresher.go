package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/observability/tracing"
	"news-aggregator/internal/repository"
	"news-aggregator/internal/usecase/aggregate"
)

// ErrNoSourceSucceeded is returned when every source failed during a refresh.
// The stored snapshot is left untouched in that case.
var ErrNoSourceSucceeded = errors.New("no source returned articles")

// Snapshotter produces one aggregated article set.
type Snapshotter interface {
	Snapshot(ctx context.Context, category string, perSourceLimit int) (*aggregate.SnapshotResult, error)
}

// RunStats summarizes one refresh run.
type RunStats struct {
	Articles      int
	FailedSources []string
	Pruned        int64
	Duration      time.Duration
}

// Refresher aggregates all sources on a schedule and persists the result.
type Refresher struct {
	snapshotter Snapshotter
	store       repository.SnapshotRepository
	cfg         RefresherConfig
	logger      *slog.Logger
	health      *HealthServer
}

// NewRefresher creates a refresher. health may be nil.
func NewRefresher(s Snapshotter, store repository.SnapshotRepository, cfg RefresherConfig, logger *slog.Logger, health *HealthServer) *Refresher {
	return &Refresher{snapshotter: s, store: store, cfg: cfg, logger: logger, health: health}
}

// RunOnce performs a single refresh bounded by the configured timeout.
func (r *Refresher) RunOnce(ctx context.Context) (stats RunStats, err error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	ctx, span := tracing.GetTracer().Start(ctx, "refresher.run")
	defer func() {
		stats.Duration = time.Since(start)
		metrics.RecordSnapshotRun(err == nil, stats.Articles, stats.Duration)
		span.SetAttributes(attribute.Int("articles", stats.Articles))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := r.snapshotter.Snapshot(ctx, r.cfg.Category, r.cfg.PerSourceLimit)
	if err != nil {
		return stats, fmt.Errorf("snapshot: %w", err)
	}

	for _, s := range res.Sources {
		if s.Err != nil {
			stats.FailedSources = append(stats.FailedSources, s.Name)
		}
	}
	if len(res.Sources) > 0 && len(stats.FailedSources) == len(res.Sources) {
		return stats, ErrNoSourceSucceeded
	}
	stats.Articles = len(res.Articles)

	if err := r.store.Save(ctx, res.Articles, res.TakenAt); err != nil {
		return stats, fmt.Errorf("save snapshot: %w", err)
	}

	if r.cfg.Retention > 0 {
		pruned, err := r.store.Prune(ctx, res.TakenAt.Add(-r.cfg.Retention))
		if err != nil {
			// retried on the next run
			r.logger.Warn("snapshot pruning failed", slog.Any("error", err))
		} else {
			stats.Pruned = pruned
			metrics.RecordSnapshotPruned(pruned)
		}
	}

	if r.health != nil {
		r.health.MarkSuccess(res.TakenAt)
	}
	return stats, nil
}

// Start schedules RunOnce on the configured cron schedule and starts the scheduler.
// Overlapping runs are skipped and panics are recovered. Runs stop being scheduled when
// ctx is cancelled; callers should still call Stop on the returned scheduler.
func (r *Refresher) Start(ctx context.Context) (*cron.Cron, error) {
	loc, err := time.LoadLocation(r.cfg.Timezone)
	if err != nil {
		r.logger.Error("invalid timezone, using UTC",
			slog.String("timezone", r.cfg.Timezone),
			slog.Any("error", err))
		loc = time.UTC
	}

	cronLog := cronLogger{logger: r.logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if _, err := c.AddFunc(r.cfg.Schedule, func() { r.run(ctx) }); err != nil {
		return nil, fmt.Errorf("add refresh job: %w", err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	r.logger.Info("snapshot refresher started",
		slog.String("schedule", r.cfg.Schedule),
		slog.String("timezone", loc.String()))
	return c, nil
}

func (r *Refresher) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	r.logger.Info("snapshot refresh started")

	stats, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.Error("snapshot refresh failed",
			slog.Any("error", err),
			slog.Any("failed_sources", stats.FailedSources),
			slog.Duration("duration", stats.Duration))
		return
	}
	r.logger.Info("snapshot refresh completed",
		slog.Int("articles", stats.Articles),
		slog.Any("failed_sources", stats.FailedSources),
		slog.Int64("pruned", stats.Pruned),
		slog.Duration("duration", stats.Duration))
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
