// Package worker runs the scheduled snapshot refresher: a cron job that aggregates every
// configured source and persists the merged articles.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"news-aggregator/internal/observability/metrics"
	"news-aggregator/pkg/config"
)

// RefresherConfig holds the refresher settings.
type RefresherConfig struct {
	// Schedule is a five-field cron expression or descriptor such as "@hourly".
	Schedule string

	// Timezone is the IANA location the schedule is evaluated in.
	Timezone string

	// Timeout bounds one refresh run, fetch and save included.
	Timeout time.Duration

	// PerSourceLimit is the number of latest articles requested from each source.
	PerSourceLimit int

	// Category optionally restricts the refresh to one category. Empty means all.
	Category string

	// Retention is how long stored articles are kept after they were last seen.
	// Zero disables pruning.
	Retention time.Duration

	// HealthPort is the port of the liveness/readiness server.
	HealthPort int
}

// DefaultConfig returns the default refresher configuration.
func DefaultConfig() RefresherConfig {
	return RefresherConfig{
		Schedule:       "*/15 * * * *",
		Timezone:       "UTC",
		Timeout:        2 * time.Minute,
		PerSourceLimit: 50,
		Retention:      7 * 24 * time.Hour,
		HealthPort:     9091,
	}
}

// Validate reports every invalid field at once.
func (c *RefresherConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.Timeout, 5*time.Second, time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.PerSourceLimit, 1, 500); err != nil {
		errs = append(errs, fmt.Errorf("per source limit: %w", err))
	}
	if c.Retention < 0 {
		errs = append(errs, fmt.Errorf("retention: must not be negative, got %v", c.Retention))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv builds the configuration from REFRESH_* environment variables.
// Invalid values fall back to their defaults with a warning and a metric; loading never
// fails.
//
//   - REFRESH_SCHEDULE, REFRESH_TIMEZONE, REFRESH_TIMEOUT
//   - REFRESH_PER_SOURCE_LIMIT, REFRESH_CATEGORY, REFRESH_RETENTION
//   - WORKER_HEALTH_PORT
func LoadConfigFromEnv(logger *slog.Logger) RefresherConfig {
	cfg := DefaultConfig()

	warn := func(field string, fallback bool, warning string) {
		if !fallback {
			return
		}
		metrics.RecordConfigFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.LoadWithFallback("REFRESH_SCHEDULE", cfg.Schedule, config.ParseString, config.ValidateCronSchedule)
	warn("schedule", schedule.FallbackApplied, schedule.Warning)
	cfg.Schedule = schedule.Value

	tz := config.LoadWithFallback("REFRESH_TIMEZONE", cfg.Timezone, config.ParseString, config.ValidateTimezone)
	warn("timezone", tz.FallbackApplied, tz.Warning)
	cfg.Timezone = tz.Value

	timeout := config.LoadWithFallback("REFRESH_TIMEOUT", cfg.Timeout, config.ParseDuration, func(d time.Duration) error {
		return config.ValidateDuration(d, 5*time.Second, time.Hour)
	})
	warn("timeout", timeout.FallbackApplied, timeout.Warning)
	cfg.Timeout = timeout.Value

	limit := config.LoadWithFallback("REFRESH_PER_SOURCE_LIMIT", cfg.PerSourceLimit, config.ParseInt, func(v int) error {
		return config.ValidateIntRange(v, 1, 500)
	})
	warn("per_source_limit", limit.FallbackApplied, limit.Warning)
	cfg.PerSourceLimit = limit.Value

	cfg.Category = config.GetEnvString("REFRESH_CATEGORY", cfg.Category)

	retention := config.LoadWithFallback("REFRESH_RETENTION", cfg.Retention, config.ParseDuration, func(d time.Duration) error {
		if d < 0 {
			return fmt.Errorf("must not be negative")
		}
		return nil
	})
	warn("retention", retention.FallbackApplied, retention.Warning)
	cfg.Retention = retention.Value

	port := config.LoadWithFallback("WORKER_HEALTH_PORT", cfg.HealthPort, config.ParseInt, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	warn("health_port", port.FallbackApplied, port.Warning)
	cfg.HealthPort = port.Value

	return cfg
}
