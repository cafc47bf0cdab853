package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one validated environment value.
// When FallbackApplied is true, Value holds the default and Warning explains why.
type LoadResult[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadWithFallback reads key, parses it and validates it. An unset variable yields the
// default silently; a value that fails parsing or validation yields the default with a
// warning. It never fails.
//
// Example:
//
//	res := LoadWithFallback("REFRESH_SCHEDULE", "*/15 * * * *", ParseString, ValidateCronSchedule)
//	if res.FallbackApplied {
//	    logger.Warn("configuration fallback applied", slog.String("warning", res.Warning))
//	}
func LoadWithFallback[T any](key string, defaultValue T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw := os.Getenv(key)
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(value)
	}
	if err != nil {
		return LoadResult[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", key, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}
	return LoadResult[T]{Value: value}
}

// ParseString accepts any string unchanged.
func ParseString(s string) (string, error) {
	return s, nil
}

// ParseInt parses a base-10 integer, ignoring surrounding whitespace.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// ParseDuration parses a Go duration string such as "90s" or "1h30m".
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(s))
}
