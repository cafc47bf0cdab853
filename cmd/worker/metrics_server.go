package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news-aggregator/pkg/config"
)

const defaultMetricsPort = 9090

// startMetricsServer serves GET /metrics on METRICS_PORT until ctx is cancelled,
// then shuts down within 5 seconds.
func startMetricsServer(ctx context.Context, logger *slog.Logger) *http.Server {
	port := getMetricsPort(logger)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
			return
		}
		logger.Info("metrics server stopped")
	}()

	return server
}

// getMetricsPort reads METRICS_PORT, falling back to 9090 when it is unset or invalid.
func getMetricsPort(logger *slog.Logger) int {
	res := config.LoadWithFallback("METRICS_PORT", defaultMetricsPort, config.ParseInt, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	if res.FallbackApplied {
		logger.Warn("invalid METRICS_PORT, using default",
			slog.Int("port", res.Value),
			slog.String("warning", res.Warning))
	}
	return res.Value
}
