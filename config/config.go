package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
	StorageNone   = "none"
)

// Config holds all application configuration
type Config struct {
	API           APIConfig
	App           AppConfig
	Logging       LoggingConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
}

type APIConfig struct {
	BaseURL        string
	RateLimit      float64 // requests per second, 0 disables pacing
	RateLimitBurst int
}

type AppConfig struct {
	Env string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type StorageConfig struct {
	Backend        string
	Dir            string
	RedisURL       string
	RedisKeyPrefix string
}

type ObservabilityConfig struct {
	ExporterEndpoint string
	ServiceName      string
	PushgatewayURL   string // metrics are pushed on exit when set
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("BOOKING_API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("STORAGE_BACKEND", StorageFile)
	v.SetDefault("STORAGE_DIR", defaultStorageDir())
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_KEY_PREFIX", "booking:")
	v.SetDefault("REQUEST_RATE_LIMIT", 0)
	v.SetDefault("REQUEST_RATE_BURST", 1)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "booking-client")
	v.SetDefault("METRICS_PUSHGATEWAY_URL", "")

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		API: APIConfig{
			BaseURL:        strings.TrimSpace(v.GetString("BOOKING_API_BASE_URL")),
			RateLimit:      v.GetFloat64("REQUEST_RATE_LIMIT"),
			RateLimitBurst: v.GetInt("REQUEST_RATE_BURST"),
		},
		App: AppConfig{
			Env: v.GetString("APP_ENV"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(v.GetString("STORAGE_BACKEND")),
			Dir:            v.GetString("STORAGE_DIR"),
			RedisURL:       v.GetString("REDIS_URL"),
			RedisKeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:      v.GetString("O11Y_SERVICE_NAME"),
			PushgatewayURL:   strings.TrimSpace(v.GetString("METRICS_PUSHGATEWAY_URL")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".booking"
	}
	return filepath.Join(home, ".booking")
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("BOOKING_API_BASE_URL is required")
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("REQUEST_RATE_LIMIT must not be negative")
	}

	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("STORAGE_DIR is required for the file storage backend")
		}
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis storage backend")
		}
	case StorageMemory, StorageNone:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
