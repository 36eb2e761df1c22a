package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"DELIVERY_HTTP_ADDR", "DELIVERY_REQUEST_TIMEOUT", "DELIVERY_DB_DSN", "DELIVERY_REDIS_ADDR",
		"DELIVERY_CACHE_TTL", "DELIVERY_MODEL_PATH", "DELIVERY_BUCKET_SCHEME", "DELIVERY_MAPS_API_KEY",
		"DELIVERY_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.RequestTimeout)
	assert.Empty(t, cfg.DB.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "models/model.json", cfg.Model.Path)
	assert.Equal(t, "v1", cfg.Model.BucketScheme)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DELIVERY_HTTP_ADDR", ":9090")
	t.Setenv("DELIVERY_CACHE_TTL", "30s")
	t.Setenv("DELIVERY_REQUEST_TIMEOUT", "2")
	t.Setenv("DELIVERY_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 2*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_RejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("DELIVERY_REQUEST_TIMEOUT", "0")
	_, err := Load()
	assert.ErrorContains(t, err, "DELIVERY_REQUEST_TIMEOUT")

	t.Setenv("DELIVERY_REQUEST_TIMEOUT", "")
	t.Setenv("DELIVERY_CACHE_TTL", "-1m")
	_, err = Load()
	assert.ErrorContains(t, err, "DELIVERY_CACHE_TTL")
}

func TestEnvOrDefaultDuration_Garbage(t *testing.T) {
	t.Setenv("DELIVERY_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, envOrDefaultDuration("DELIVERY_TEST_DURATION", time.Minute))
}
