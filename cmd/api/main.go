// Command api serves the aggregated news over HTTP.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-aggregator/internal/common/pagination"
	hhttp "news-aggregator/internal/handler/http"
	harticle "news-aggregator/internal/handler/http/article"
	"news-aggregator/internal/handler/http/requestid"
	hsnapshot "news-aggregator/internal/handler/http/snapshot"
	hsource "news-aggregator/internal/handler/http/source"
	pgRepo "news-aggregator/internal/infra/adapter/persistence/postgres"
	"news-aggregator/internal/infra/catalog"
	"news-aggregator/internal/infra/db"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/tracing"
	"news-aggregator/internal/usecase/aggregate"
	"news-aggregator/internal/usecase/dedup"
	"news-aggregator/pkg/config"
)

func main() {
	logger := initLogger()

	tp := tracing.Setup()
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	svc := initAggregator(logger)
	database := initDatabase(logger)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	version := config.GetEnvString("VERSION", "dev")
	handler := setupServer(logger, svc, database, version)
	runServer(logger, handler, version)
}

// initLogger installs the JSON logger configured by LOG_LEVEL and LOG_FORMAT as default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initAggregator builds every configured source and the aggregation service.
// Any configuration error stops the process.
func initAggregator(logger *slog.Logger) *aggregate.Service {
	path := config.GetEnvString("SOURCES_FILE", "sources.yaml")
	cat, err := catalog.Load(path)
	if err != nil {
		logger.Error("failed to load sources file", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}

	sources, err := catalog.Build(cat, logger)
	if err != nil {
		logger.Error("failed to build sources", slog.Any("error", err))
		os.Exit(1)
	}

	strategy, err := dedup.ParseStrategy(config.GetEnvString("DEDUP_STRATEGY", dedup.Combined.String()))
	if err != nil {
		logger.Error("invalid DEDUP_STRATEGY", slog.Any("error", err))
		os.Exit(1)
	}

	svc, err := aggregate.NewService(sources, strategy, aggregate.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create aggregation service", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("aggregation service ready",
		slog.Any("sources", svc.SourceNames()),
		slog.String("dedup_strategy", strategy.String()))
	return svc
}

// initDatabase connects to the snapshot database when DATABASE_URL is set.
// It returns nil when snapshots are disabled.
func initDatabase(logger *slog.Logger) *sql.DB {
	dsn := config.GetEnvString("DATABASE_URL", "")
	if dsn == "" {
		logger.Info("DATABASE_URL not set, snapshot endpoints disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx, dsn, db.LoadConnectionConfigFromEnv())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupServer registers every route and wraps the mux with the middleware chain.
func setupServer(logger *slog.Logger, svc *aggregate.Service, database *sql.DB, version string) http.Handler {
	paginationCfg := pagination.LoadFromEnv()
	mux := http.NewServeMux()

	searchLimiter := hhttp.NewRateLimiter(
		config.GetEnvInt("SEARCH_RATE_LIMIT_PER_MINUTE", 60),
		config.GetEnvInt("SEARCH_RATE_LIMIT_BURST", 10),
	)
	harticle.Register(mux, harticle.Deps{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		PoolSize:      config.GetEnvInt("FILTER_POOL_SIZE", harticle.DefaultPoolSize),
		Logger:        logger,
	}, searchLimiter.Limit)
	hsource.Register(mux, svc, svc.Strategy().String())

	if database != nil {
		hsnapshot.Register(mux, pgRepo.NewSnapshotRepo(database), paginationCfg)
	}

	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Sources: svc.SourceNames(), Version: version})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return applyMiddleware(logger, mux, config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second))
}

// applyMiddleware wraps handler, outermost first:
// request ID, tracing, recovery, logging, input validation, timeout, metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler, timeout time.Duration) http.Handler {
	// metrics must wrap the mux directly to read the matched route pattern
	chain := hhttp.MetricsMiddleware(handler)
	chain = hhttp.Timeout(timeout)(chain)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer serves until SIGINT or SIGTERM, then shuts down gracefully.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := config.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
