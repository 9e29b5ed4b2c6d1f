package config

import "time"

// Application constants
const (
	AppName     = "Bond Screener"
	AppVersion  = "1.0.0"
	ServiceName = "bondscreen"

	// EnvPrefix namespaces every environment override, e.g. BONDSCREEN_SERVER_PORT.
	EnvPrefix = "BONDSCREEN"

	// Server
	DefaultPort           = 8080
	DefaultRequestTimeout = 60 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Uploads
	DefaultMaxUploadBytes = 10 << 20 // 10MB

	// Cache Settings
	DatasetCacheDuration = 30 * time.Minute
	DatasetCacheEntries  = 32

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/bondscreen.log"
)

// API routes
const (
	APIBasePath      = "/api"
	DatasetsEndpoint = "/api/datasets"
	HealthEndpoint   = "/api/health"
	VersionEndpoint  = "/api/version"
	MetricsEndpoint  = "/metrics"
)
