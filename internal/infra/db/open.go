// Package db opens and prepares the PostgreSQL database used to store aggregation snapshots.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"news-aggregator/internal/resilience/retry"
	"news-aggregator/pkg/config"
)

// ErrNoDSN is returned by Open when no connection string is configured.
var ErrNoDSN = errors.New("database url not set")

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
// Snapshot writes are batched, so the pool stays small.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// LoadConnectionConfigFromEnv reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Non-positive or malformed values keep
// the defaults.
func LoadConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()
	positiveInt := func(v int) error { return config.ValidateIntRange(v, 1, 10_000) }

	cfg.MaxOpenConns = config.LoadWithFallback("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns, config.ParseInt, positiveInt).Value
	cfg.MaxIdleConns = config.LoadWithFallback("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns, config.ParseInt, positiveInt).Value
	cfg.ConnMaxLifetime = config.LoadWithFallback("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime,
		config.ParseDuration, config.ValidatePositiveDuration).Value
	cfg.ConnMaxIdleTime = config.LoadWithFallback("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime,
		config.ParseDuration, config.ValidatePositiveDuration).Value
	return cfg
}

// Open creates a pgx-backed connection pool for dsn, applies cfg and verifies the
// connection. The pool is closed again if verification fails.
func Open(ctx context.Context, dsn string, cfg ConnectionConfig) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	Configure(db, cfg)

	if err := Verify(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("database connection established successfully")
	return db, nil
}

// Configure applies pool limits to db.
func Configure(db *sql.DB, cfg ConnectionConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))
}

// Verify pings db, retrying transient failures with the database retry policy.
// Each attempt is bounded to 5 seconds.
func Verify(ctx context.Context, db *sql.DB) error {
	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
