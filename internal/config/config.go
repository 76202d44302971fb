package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds runtime configuration for the server binary. Most values are
// fixed constants per the pipeline contract (chunk size, retry schedule,
// GC intervals) and are not configurable by design; only the knobs the
// deployment genuinely varies are read from the environment.
type Config struct {
	Port        int
	MetricsPort int

	StorageDir    string
	MaxUploadSize int64

	RedisURL string // optional; empty selects local (in-process) mode

	OTLPEndpoint string // optional; empty disables tracing

	Environment string
	LogLevel    string
	LogFormat   string
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Port = getEnvInt("PORT", 8080)
	cfg.MetricsPort = getEnvInt("METRICS_PORT", 9090)

	cfg.StorageDir = getEnvString("STORAGE_DIR", "./storage")
	cfg.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", 10*1024*1024*1024) // 10 GiB

	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	cfg.Environment = getEnvString("ENVIRONMENT", "development")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "json")

	return cfg, nil
}

// UsesExternalBroker reports whether the event bus and queue should
// attempt to reach Redis, or fall back to local in-process mode.
func (c *Config) UsesExternalBroker() bool {
	return c.RedisURL != ""
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxUploadSize < 1 {
		return fmt.Errorf("invalid max upload size: %d", c.MaxUploadSize)
	}
	if c.StorageDir == "" {
		return fmt.Errorf("storage dir must not be empty")
	}
	return nil
}
