// Package config provides helpers for reading typed values from environment variables.
//
// Every helper falls back to the supplied default when the variable is unset. Malformed
// values also fall back, with a warning logged through slog, so a typo in the environment
// never prevents the aggregator from starting.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the value of key, or defaultValue when it is unset or empty.
//
//	addr := GetEnvString("HTTP_ADDR", ":8080")
func GetEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt returns key parsed as a decimal integer.
func GetEnvInt(key string, defaultValue int) int {
	return getEnv(key, defaultValue, strconv.Atoi)
}

// GetEnvFloat returns key parsed as a float64.
//
//	rps := GetEnvFloat("NEWSAPI_RPS", 1)
func GetEnvFloat(key string, defaultValue float64) float64 {
	return getEnv(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvBool returns key parsed with strconv.ParseBool ("1", "t", "true", "0", "false", ...).
func GetEnvBool(key string, defaultValue bool) bool {
	return getEnv(key, defaultValue, strconv.ParseBool)
}

// GetEnvDuration returns key parsed with time.ParseDuration ("30s", "1h30m", ...).
//
//	timeout := GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return getEnv(key, defaultValue, time.ParseDuration)
}

// GetEnvStringList returns a comma-separated list from key. Entries are trimmed and empty
// ones dropped; a list with no entries left yields defaultValue.
//
//	// EXTRA_FEEDS="https://a.example/rss, https://b.example/atom"
//	feeds := GetEnvStringList("EXTRA_FEEDS", nil)
func GetEnvStringList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnv parses the trimmed value of key. Unset, blank or malformed values yield
// defaultValue; malformed ones are logged.
func getEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := parse(raw)
	if err != nil {
		slog.Warn("invalid environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", fmt.Sprint(defaultValue)),
			slog.Any("error", err))
		return defaultValue
	}
	return value
}
