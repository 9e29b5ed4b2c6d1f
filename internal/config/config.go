package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"bondscreen/internal/dataprocessing"
	apperrors "bondscreen/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Security      SecurityConfig      `yaml:"security" envconfig:"SECURITY"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Dataset       DatasetConfig       `yaml:"dataset" envconfig:"DATASET"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DatasetConfig controls how bond tables are loaded, enriched and cached.
type DatasetConfig struct {
	SheetName          string        `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	MaxUploadBytes     int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	CacheTTL           time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	CacheMaxEntries    int           `yaml:"cache_max_entries" envconfig:"CACHE_MAX_ENTRIES"`
	InflationDeduction float64       `yaml:"inflation_deduction" envconfig:"INFLATION_DEDUCTION"`
	PercentPolicy      string        `yaml:"percent_policy" envconfig:"PERCENT_POLICY"`
	ExportBOM          bool          `yaml:"export_bom" envconfig:"EXPORT_BOM"`
}

// ObservabilityConfig selects the metric and trace exporters.
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
}

// Load reads the configuration file found in the usual locations (if any)
// and then applies BONDSCREEN_* environment overrides.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom layers defaults, the YAML file at path and the environment, in
// that order. An empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values on cfg. Keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// ListenAddr returns the host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Policy returns the parsed percent policy. validate guarantees it parses.
func (d DatasetConfig) Policy() dataprocessing.PercentPolicy {
	p, err := dataprocessing.ParsePercentPolicy(d.PercentPolicy)
	if err != nil {
		return dataprocessing.PercentCoerce
	}
	return p
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if c.Dataset.SheetName == "" {
		c.Dataset.SheetName = dataprocessing.DefaultSheetName
	}

	if c.Dataset.MaxUploadBytes <= 0 {
		return fmt.Errorf("dataset max upload bytes must be positive")
	}

	if c.Dataset.CacheTTL < 0 {
		return fmt.Errorf("dataset cache ttl must not be negative")
	}
	if c.Dataset.CacheMaxEntries < 1 {
		return fmt.Errorf("dataset cache must hold at least one entry")
	}

	if c.Dataset.InflationDeduction < 0 || c.Dataset.InflationDeduction >= 1 {
		return fmt.Errorf("inflation deduction must be a fraction in [0, 1): %v", c.Dataset.InflationDeduction)
	}

	if _, err := dataprocessing.ParsePercentPolicy(c.Dataset.PercentPolicy); err != nil {
		return err
	}

	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = ServiceName
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "console",
			FilePath:    DefaultLogFile,
			Development: false,
		},
		Dataset: DatasetConfig{
			SheetName:          dataprocessing.DefaultSheetName,
			MaxUploadBytes:     DefaultMaxUploadBytes,
			CacheTTL:           DatasetCacheDuration,
			CacheMaxEntries:    DatasetCacheEntries,
			InflationDeduction: dataprocessing.DefaultInflationDeduction,
			PercentPolicy:      string(dataprocessing.PercentCoerce),
			ExportBOM:          false,
		},
		Observability: ObservabilityConfig{
			ServiceName:    ServiceName,
			MetricsEnabled: true,
			TracingEnabled: false,
		},
	}
}
