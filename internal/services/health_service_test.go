package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"bondscreen/internal/cache"
	"bondscreen/internal/config"
	"bondscreen/internal/infrastructure"
	"bondscreen/internal/shared/testutil"
)

func TestHealthService_HealthCheck(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", nil, nil, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "HealthService initialized")
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	store := cache.New(time.Minute, 4)
	t.Cleanup(store.Stop)
	store.Put("abc", testutil.SampleDataset(t))

	hs := NewHealthService("1.0.0", store, nil, testutil.DiscardLogger())
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "ready", status.Status)
	require.Contains(t, status.Services, "dataset_cache")
	require.Contains(t, status.Services, "sample_dataset")

	cacheHealth, ok := status.Services["dataset_cache"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "1 of 4 datasets cached", cacheHealth.Message)
	stats, ok := cacheHealth.Details.(cache.Stats)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Entries)
}

func TestHealthService_ReadinessCheck_NoCache(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, testutil.DiscardLogger())

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.Equal(t, "not_ready", status.Services["dataset_cache"].(ServiceHealth).Status)
}

func TestHealthService_LivenessCheck(t *testing.T) {
	t.Run("without system metrics", func(t *testing.T) {
		hs := NewHealthService("1.0.0", nil, nil, testutil.DiscardLogger())
		status := hs.LivenessCheck(context.Background())

		assert.Equal(t, "alive", status.Status)
		assert.Contains(t, status.Runtime, "goroutines")
		assert.Contains(t, status.Runtime, "go_version")
	})

	t.Run("with system metrics", func(t *testing.T) {
		sm, err := infrastructure.NewSystemMetrics(noop.NewMeterProvider().Meter("test"), time.Now().Add(-time.Minute))
		require.NoError(t, err)

		hs := NewHealthService("1.0.0", nil, sm, testutil.DiscardLogger())
		status := hs.LivenessCheck(context.Background())

		assert.Equal(t, "alive", status.Status)
		assert.Contains(t, status.Runtime, "memory_usage_mb")
		assert.Contains(t, status.Runtime, "go_version")
		assert.GreaterOrEqual(t, status.Runtime["uptime_seconds"].(float64), 60.0)
	})
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthServiceWithBuildInfo("2.0.0", "2025-04-09T00:00:00Z", "abc123", nil, nil, testutil.DiscardLogger())

	info := hs.Version()
	assert.Equal(t, config.AppName, info["name"])
	assert.Equal(t, "2.0.0", info["version"])
	assert.Equal(t, "2025-04-09T00:00:00Z", info["build_time"])
	assert.Equal(t, "abc123", info["build_id"])

	plain := NewHealthService("2.0.0", nil, nil, testutil.DiscardLogger()).Version()
	assert.NotContains(t, plain, "build_time")
	assert.NotContains(t, plain, "build_id")
}
