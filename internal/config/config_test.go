package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SERVICE_ENVIRONMENT", "test")
	t.Setenv("TRACKER_BASE_URL", "http://tracker.local:8080")
	t.Setenv("TRACKER_API_KEY", "sk_test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Service.Environment)
	assert.Equal(t, "8080", cfg.Service.APIPort)
	assert.Equal(t, 10*time.Second, cfg.Tracker.Timeout())
	assert.Equal(t, 10, cfg.Dashboard.StreamMaxItems)
	assert.Equal(t, 20, cfg.Dashboard.StreamFetchLimit)
	assert.Equal(t, 2000, cfg.Dashboard.StreamPollIntervalMs)
	assert.False(t, cfg.SQS.Enabled())
	assert.False(t, cfg.ClickHouse.Enabled())
	assert.True(t, cfg.Valkey.IdempotencyEnabled)
	assert.True(t, cfg.Valkey.IdempotencyFailOpen)
	assert.Equal(t, 2000, cfg.Consumer.BatchSizeMax)
	assert.Equal(t, 10, cfg.Consumer.BatchTimeoutSec)
	assert.Equal(t, 10, cfg.Consumer.ShutdownTimeoutSec)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DASHBOARD_STREAM_MAX_ITEMS", "25")
	t.Setenv("TRACKER_TIMEOUT_SEC", "3")
	t.Setenv("SQS_QUEUE_URL", "http://localhost:9324/000000000000/observations")
	t.Setenv("CLICKHOUSE_HOST", "localhost")
	t.Setenv("CONSUMER_SHUTDOWN_TIMEOUT_SEC", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Dashboard.StreamMaxItems)
	assert.Equal(t, 3*time.Second, cfg.Tracker.Timeout())
	assert.True(t, cfg.SQS.Enabled())
	assert.True(t, cfg.ClickHouse.Enabled())
	assert.Equal(t, 30, cfg.Consumer.ShutdownTimeoutSec)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("SERVICE_ENVIRONMENT", "test")
	t.Setenv("TRACKER_BASE_URL", "")
	t.Setenv("TRACKER_API_KEY", "")
	require.NoError(t, os.Unsetenv("TRACKER_BASE_URL"))
	require.NoError(t, os.Unsetenv("TRACKER_API_KEY"))

	cfg, err := Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to process config")
}

func TestLoadTracker(t *testing.T) {
	t.Setenv("TRACKER_BASE_URL", "http://tracker.local:8080")
	t.Setenv("TRACKER_API_KEY", "sk_test")

	cfg, err := LoadTracker()
	require.NoError(t, err)

	assert.Equal(t, "http://tracker.local:8080", cfg.BaseURL)
	assert.Equal(t, "sk_test", cfg.APIKey)
	assert.Equal(t, 10, cfg.TimeoutSec)
}
