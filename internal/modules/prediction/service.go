// README: Prediction service: pipeline, cache lookup, scoring, audit log.
package prediction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/modules/scoring"
	"deliveryeta/internal/types"
)

var (
	ErrNotFound      = errors.New("prediction not found")
	ErrStoreDisabled = errors.New("prediction store not configured")
)

type Scorer interface {
	Predict(ctx context.Context, f features.FeatureRecord) (float64, error)
	Model() scoring.ModelInfo
}

// Cache holds predictions keyed by model version and feature hash.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, value float64) error
}

type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, id types.ID) (*Record, error)
}

// Service is safe for concurrent use. cache and store may be nil.
type Service struct {
	pipeline *features.Pipeline
	scorer   Scorer
	cache    Cache
	store    Store
	log      *zap.Logger
	now      func() time.Time
}

func NewService(pipeline *features.Pipeline, scorer Scorer, cache Cache, store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		pipeline: pipeline,
		scorer:   scorer,
		cache:    cache,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Model() scoring.ModelInfo {
	return s.scorer.Model()
}

// Features runs the pipeline only.
func (s *Service) Features(raw features.RawOrderRecord) (features.FeatureRecord, error) {
	return s.pipeline.Transform(raw)
}

func (s *Service) Predict(ctx context.Context, raw features.RawOrderRecord) (Result, error) {
	f, err := s.pipeline.Transform(raw)
	if err != nil {
		return Result{}, err
	}
	model := s.scorer.Model()
	res := Result{
		Distance:     round2(f.Distance),
		DistanceType: f.DistanceType,
		ModelName:    model.Name,
		ModelVersion: model.Version,
	}

	key := cacheKey(model, f)
	if s.cache != nil {
		v, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("prediction cache get failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			res.Prediction = v
			res.Cached = true
		}
	}

	if !res.Cached {
		y, err := s.scorer.Predict(ctx, f)
		if err != nil {
			return Result{}, err
		}
		res.Prediction = round2(y)
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, res.Prediction); err != nil {
				s.log.Warn("prediction cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	if s.store != nil {
		rec := Record{
			ID:           types.ID(uuid.NewString()),
			Raw:          raw,
			Features:     f,
			Prediction:   res.Prediction,
			ModelName:    model.Name,
			ModelVersion: model.Version,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.store.Save(ctx, rec); err != nil {
			s.log.Error("prediction audit save failed", zap.String("order_id", raw.ID), zap.Error(err))
		} else {
			res.ID = rec.ID
		}
	}

	s.log.Debug("prediction",
		zap.String("order_id", raw.ID),
		zap.Float64("prediction", res.Prediction),
		zap.Float64("distance", res.Distance),
		zap.Bool("cached", res.Cached),
	)
	return res, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Record, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.Get(ctx, id)
}

// cacheKey scopes cached predictions to one model build, so models that share a
// version number never read each other's entries.
func cacheKey(model scoring.ModelInfo, f features.FeatureRecord) string {
	b, _ := json.Marshal(f)
	sum := sha256.Sum256(b)
	return "prediction:" + model.Name + ":" + model.Version + ":" + model.BucketScheme + ":" + hex.EncodeToString(sum[:])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
