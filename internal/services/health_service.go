package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"bondscreen/internal/cache"
	"bondscreen/internal/config"
	"bondscreen/internal/dataprocessing"
	"bondscreen/internal/infrastructure"
)

// HealthService provides health check functionality
type HealthService struct {
	version       string
	buildTime     string
	buildID       string
	store         *cache.DatasetCache
	systemMetrics *infrastructure.SystemMetrics
	startTime     time.Time
	logger        *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Uptime  string      `json:"uptime,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewHealthService creates a new health service. systemMetrics may be nil.
func NewHealthService(version string, store *cache.DatasetCache, systemMetrics *infrastructure.SystemMetrics, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", store, systemMetrics, logger)
}

// NewHealthServiceWithBuildInfo creates a new health service with build information
func NewHealthServiceWithBuildInfo(version, buildTime, buildID string, store *cache.DatasetCache, systemMetrics *infrastructure.SystemMetrics, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:       version,
		buildTime:     buildTime,
		buildID:       buildID,
		store:         store,
		systemMetrics: systemMetrics,
		startTime:     time.Now(),
		logger:        logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether datasets can be loaded and stored
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["dataset_cache"] = hs.checkCacheHealth()
	status.Services["sample_dataset"] = hs.checkSampleHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	if hs.systemMetrics != nil {
		status.Runtime = hs.systemMetrics.Collect(ctx).FormatStats()
		status.Runtime["go_version"] = runtime.Version()
		return status
	}

	status.Runtime = map[string]interface{}{
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"name":         config.AppName,
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// checkCacheHealth checks the dataset store
func (hs *HealthService) checkCacheHealth() ServiceHealth {
	if hs.store == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "dataset cache not initialized",
		}
	}

	stats := hs.store.GetStats()
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d of %d datasets cached", stats.Entries, stats.MaxEntries),
		Uptime:  time.Since(hs.startTime).String(),
		Details: stats,
	}
}

// checkSampleHealth checks that the built-in listing still satisfies the schema
func (hs *HealthService) checkSampleHealth() ServiceHealth {
	if err := dataprocessing.ValidateSchema(dataprocessing.SampleTable().Headers); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("built-in dataset invalid: %v", err),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "built-in dataset available",
	}
}
