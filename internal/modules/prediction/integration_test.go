// README: Redis cache and Postgres store tests. Skipped unless DELIVERY_TEST_REDIS / DELIVERY_TEST_DSN are set.
package prediction

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryeta/internal/types"
)

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("DELIVERY_TEST_REDIS")
	if addr == "" {
		t.Skip("DELIVERY_TEST_REDIS not set; skipping integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	cache := NewRedisCache(rdb, time.Minute)
	key := fmt.Sprintf("prediction:test:%d", time.Now().UnixNano())
	defer rdb.Del(ctx, key)

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, key, 26.5))
	v, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 26.5, v)

	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestPGStore(t *testing.T) {
	dsn := os.Getenv("DELIVERY_TEST_DSN")
	if dsn == "" {
		t.Skip("DELIVERY_TEST_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	applyMigration(t, pool)

	store := NewPGStore(pool)
	rec := Record{
		ID:           types.ID(fmt.Sprintf("test-%d", time.Now().UnixNano())),
		Raw:          sampleRaw(),
		Prediction:   26,
		ModelName:    "delivery_time_pred_model",
		ModelVersion: "1",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	rec.Features.Traffic = "high"
	rec.Features.Distance = 3.03
	defer pool.Exec(ctx, `DELETE FROM predictions WHERE id = $1`, string(rec.ID))

	require.NoError(t, store.Save(ctx, rec))
	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Raw, got.Raw)
	assert.Equal(t, rec.Features, got.Features)
	assert.Equal(t, rec.Prediction, got.Prediction)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

	_, err = store.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func applyMigration(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	b, err := os.ReadFile("../../../migrations/0001_predictions.sql")
	require.NoError(t, err)
	for _, stmt := range strings.Split(string(b), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := pool.Exec(context.Background(), stmt)
		require.NoError(t, err)
	}
}
