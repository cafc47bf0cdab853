package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/observability/metrics"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          20 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	require.NotNil(t, cb)
	assert.Equal(t, "test-circuit", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestExecute_TypedResult(t *testing.T) {
	cb := New(testConfig())

	got, err := Execute(cb, func() ([]string, error) {
		return []string{"a", "b"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestExecute_OpensAfterFailures(t *testing.T) {
	cb := New(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := Execute(cb, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.True(t, cb.IsOpen())

	calls := 0
	_, err := Execute(cb, func() (int, error) {
		calls++
		return 1, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Zero(t, calls)
}

func TestPresets(t *testing.T) {
	for _, cfg := range []Config{NewsAPIConfig("n"), FeedFetchConfig("f")} {
		assert.NotEmpty(t, cfg.Name)
		assert.Positive(t, cfg.MinRequests)
		assert.Greater(t, cfg.FailureThreshold, 0.0)
		assert.LessOrEqual(t, cfg.FailureThreshold, 1.0)
	}
}

func TestExecute_CancellationDoesNotTrip(t *testing.T) {
	cb := New(testConfig())

	for i := 0; i < 5; i++ {
		_, err := Execute(cb, func() (int, error) {
			return 0, fmt.Errorf("fetch: %w", context.Canceled)
		})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.False(t, cb.IsOpen())
}

func TestStateMetric(t *testing.T) {
	cfg := testConfig()
	cfg.Name = "metric-circuit"
	cb := New(cfg)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("metric-circuit")))

	for i := 0; i < 3; i++ {
		_, _ = Execute(cb, func() (int, error) { return 0, errors.New("boom") })
	}
	require.True(t, cb.IsOpen())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("metric-circuit")))
}
