// README: Prediction service tests with in-memory cache and store.
package prediction

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/modules/scoring"
	"deliveryeta/internal/types"
)

type memCache struct {
	mu     sync.Mutex
	values map[string]float64
	err    error
}

func newMemCache() *memCache {
	return &memCache{values: map[string]float64{}}
}

func (c *memCache) Get(_ context.Context, key string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, false, c.err
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.values[key] = value
	return nil
}

type memStore struct {
	mu      sync.Mutex
	records map[types.ID]Record
	err     error
}

func newMemStore() *memStore {
	return &memStore{records: map[types.ID]Record{}}
}

func (s *memStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *memStore) Get(_ context.Context, id types.ID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

type countingScorer struct {
	*scoring.Service
	calls int
}

func (c *countingScorer) Predict(ctx context.Context, f features.FeatureRecord) (float64, error) {
	c.calls++
	return c.Service.Predict(ctx, f)
}

func newTestService(t *testing.T, cache Cache, store Store) (*Service, *countingScorer) {
	t.Helper()
	pipeline, err := features.NewPipeline(features.SchemeV1)
	require.NoError(t, err)
	artifact, err := scoring.LoadFile("../scoring/testdata/model.json")
	require.NoError(t, err)
	scorer := &countingScorer{Service: scoring.NewService(artifact)}
	return NewService(pipeline, scorer, cache, store, zaptest.NewLogger(t)), scorer
}

func sampleRaw() features.RawOrderRecord {
	return features.RawOrderRecord{
		ID:                        "0x4607",
		DeliveryPersonID:          "INDORES13DEL02",
		DeliveryPersonAge:         "37",
		DeliveryPersonRatings:     "4.9",
		RestaurantLatitude:        22.745049,
		RestaurantLongitude:       75.892471,
		DeliveryLocationLatitude:  22.765049,
		DeliveryLocationLongitude: 75.912471,
		OrderDate:                 "19-03-2022",
		TimeOrdered:               "11:30:00",
		TimeOrderPicked:           "11:45:00",
		WeatherConditions:         "conditions Sunny",
		RoadTrafficDensity:        "High ",
		VehicleCondition:          2,
		TypeOfOrder:               "Snack ",
		TypeOfVehicle:             "motorcycle ",
		MultipleDeliveries:        "0",
		Festival:                  "No ",
		City:                      "Urban ",
	}
}

func TestPredict_Sample(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	res, err := svc.Predict(context.Background(), sampleRaw())
	require.NoError(t, err)

	assert.Equal(t, 26.0, res.Prediction)
	assert.Equal(t, 3.03, res.Distance)
	assert.Equal(t, features.DistanceShort, res.DistanceType)
	assert.Equal(t, "delivery_time_pred_model", res.ModelName)
	assert.Equal(t, "1", res.ModelVersion)
	assert.False(t, res.Cached)
	assert.Empty(t, res.ID, "no store configured")
}

func TestPredict_UsesCache(t *testing.T) {
	cache := newMemCache()
	svc, scorer := newTestService(t, cache, nil)
	ctx := context.Background()

	first, err := svc.Predict(ctx, sampleRaw())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Predict(ctx, sampleRaw())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Prediction, second.Prediction)
	assert.Equal(t, 1, scorer.calls)
	assert.Len(t, cache.values, 1)
}

func TestPredict_CacheErrorsDoNotFail(t *testing.T) {
	cache := newMemCache()
	cache.err = errors.New("connection refused")
	svc, scorer := newTestService(t, cache, nil)

	res, err := svc.Predict(context.Background(), sampleRaw())
	require.NoError(t, err)
	assert.Equal(t, 26.0, res.Prediction)
	assert.Equal(t, 1, scorer.calls)
}

func TestPredict_SavesAuditRecord(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, nil, store)
	ctx := context.Background()

	res, err := svc.Predict(ctx, sampleRaw())
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)

	rec, err := svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "0x4607", rec.Raw.ID)
	assert.Equal(t, res.Prediction, rec.Prediction)
	assert.Equal(t, "high", rec.Features.Traffic)
	assert.Equal(t, "1", rec.ModelVersion)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestPredict_StoreErrorDoesNotFail(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	svc, _ := newTestService(t, nil, store)

	res, err := svc.Predict(context.Background(), sampleRaw())
	require.NoError(t, err)
	assert.Empty(t, res.ID)
}

func TestPredict_PipelineErrorSkipsScoring(t *testing.T) {
	svc, scorer := newTestService(t, newMemCache(), newMemStore())
	raw := sampleRaw()
	raw.DeliveryPersonAge = "NaN"

	_, err := svc.Predict(context.Background(), raw)
	var fde *features.FeatureDerivationError
	require.True(t, errors.As(err, &fde))
	assert.Equal(t, features.FieldAge, fde.Field)
	assert.Equal(t, 0, scorer.calls)
}

func TestPredict_CanceledContext(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Predict(ctx, sampleRaw())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGet_NoStore(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrStoreDisabled)
}

func TestGet_Unknown(t *testing.T) {
	svc, _ := newTestService(t, nil, newMemStore())
	_, err := svc.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeatures(t *testing.T) {
	svc, scorer := newTestService(t, nil, nil)
	f, err := svc.Features(sampleRaw())
	require.NoError(t, err)
	assert.Equal(t, features.TimeMorning, f.OrderTimeOfDay)
	assert.Equal(t, 0, scorer.calls)
}

func TestCacheKey(t *testing.T) {
	pipeline, err := features.NewPipeline(features.SchemeV1)
	require.NoError(t, err)
	f, err := pipeline.Transform(sampleRaw())
	require.NoError(t, err)

	v1 := scoring.ModelInfo{Name: "lgbm_model", Version: "1", BucketScheme: "v1"}
	v2 := v1
	v2.Version = "2"
	other := v1
	other.Name = "rf_model"
	rebucketed := v1
	rebucketed.BucketScheme = "v2"

	assert.Equal(t, cacheKey(v1, f), cacheKey(v1, f))
	assert.NotEqual(t, cacheKey(v1, f), cacheKey(v2, f))
	assert.NotEqual(t, cacheKey(v1, f), cacheKey(other, f))
	assert.NotEqual(t, cacheKey(v1, f), cacheKey(rebucketed, f))

	g := f
	g.Ratings = 4.0
	assert.NotEqual(t, cacheKey(v1, f), cacheKey(v1, g))

	// the order ID is not a feature, so it does not split the cache
	raw := sampleRaw()
	raw.ID = "0xffff"
	h, err := pipeline.Transform(raw)
	require.NoError(t, err)
	assert.Equal(t, cacheKey(v1, f), cacheKey(v1, h))
}

func TestPredict_SharedCacheSeparatesModels(t *testing.T) {
	cache := newMemCache()
	first, _ := newTestService(t, cache, nil)

	pipeline, err := features.NewPipeline(features.SchemeV1)
	require.NoError(t, err)
	artifact, err := scoring.LoadFile("../scoring/testdata/model.json")
	require.NoError(t, err)
	artifact.Name = "rf_model"
	artifact.Ensemble.BaseScore -= 8
	second := NewService(pipeline, &countingScorer{Service: scoring.NewService(artifact)}, cache, nil, zaptest.NewLogger(t))
	require.Equal(t, first.Model().Version, second.Model().Version)

	a, err := first.Predict(context.Background(), sampleRaw())
	require.NoError(t, err)
	b, err := second.Predict(context.Background(), sampleRaw())
	require.NoError(t, err)

	assert.Equal(t, 26.0, a.Prediction)
	assert.False(t, b.Cached)
	assert.Equal(t, 18.0, b.Prediction)
	assert.Equal(t, "rf_model", b.ModelName)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.03, round2(3.0254))
	assert.Equal(t, 26.0, round2(26.0))
	assert.Equal(t, 12.35, round2(12.345000001))
}
