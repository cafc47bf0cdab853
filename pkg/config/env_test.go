package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("NA_TEST_STRING", "")
	assert.Equal(t, "fallback", GetEnvString("NA_TEST_STRING", "fallback"))

	t.Setenv("NA_TEST_STRING", "value")
	assert.Equal(t, "value", GetEnvString("NA_TEST_STRING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("NA_TEST_INT", " 42 ")
	assert.Equal(t, 42, GetEnvInt("NA_TEST_INT", 1))

	t.Setenv("NA_TEST_INT", "forty")
	assert.Equal(t, 1, GetEnvInt("NA_TEST_INT", 1))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("NA_TEST_FLOAT", "2.5")
	assert.Equal(t, 2.5, GetEnvFloat("NA_TEST_FLOAT", 1))

	t.Setenv("NA_TEST_FLOAT", "x")
	assert.Equal(t, 1.0, GetEnvFloat("NA_TEST_FLOAT", 1))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("NA_TEST_BOOL", "true")
	assert.True(t, GetEnvBool("NA_TEST_BOOL", false))

	t.Setenv("NA_TEST_BOOL", "nope")
	assert.False(t, GetEnvBool("NA_TEST_BOOL", false))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("NA_TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("NA_TEST_DURATION", time.Second))

	t.Setenv("NA_TEST_DURATION", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("NA_TEST_DURATION", time.Second))
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("NA_TEST_LIST", " a, ,b ,c")
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvStringList("NA_TEST_LIST", nil))

	t.Setenv("NA_TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, GetEnvStringList("NA_TEST_LIST", []string{"x"}))
}
