// README: Config loader with env defaults for HTTP, DB, Redis, model and maps settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults shared with the command-line tools.
const (
	DefaultModelPath    = "models/model.json"
	DefaultBucketScheme = "v1"
)

type ModelConfig struct {
	Path         string
	BucketScheme string
}

type Config struct {
	HTTP struct {
		Addr           string
		RequestTimeout time.Duration
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr     string
		CacheTTL time.Duration
	}
	Model ModelConfig
	Maps  struct {
		APIKey string
	}
	Log struct {
		Level string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("DELIVERY_HTTP_ADDR", ":8000")
	cfg.HTTP.RequestTimeout = envOrDefaultDuration("DELIVERY_REQUEST_TIMEOUT", 5*time.Second)
	cfg.DB.DSN = os.Getenv("DELIVERY_DB_DSN")
	cfg.Redis.Addr = os.Getenv("DELIVERY_REDIS_ADDR")
	cfg.Redis.CacheTTL = envOrDefaultDuration("DELIVERY_CACHE_TTL", 10*time.Minute)
	cfg.Model.Path = envOrDefault("DELIVERY_MODEL_PATH", DefaultModelPath)
	cfg.Model.BucketScheme = envOrDefault("DELIVERY_BUCKET_SCHEME", DefaultBucketScheme)
	cfg.Maps.APIKey = os.Getenv("DELIVERY_MAPS_API_KEY")
	cfg.Log.Level = envOrDefault("DELIVERY_LOG_LEVEL", "info")

	if cfg.HTTP.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("DELIVERY_REQUEST_TIMEOUT must be positive, got %s", cfg.HTTP.RequestTimeout)
	}
	if cfg.Redis.CacheTTL <= 0 {
		return Config{}, fmt.Errorf("DELIVERY_CACHE_TTL must be positive, got %s", cfg.Redis.CacheTTL)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// bare integers are read as seconds
		if n := envOrDefaultInt(key, -1); n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
