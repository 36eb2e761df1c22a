// README: Scoring service: encodes a FeatureRecord and evaluates the loaded ensemble.
package scoring

import (
	"context"
	"errors"
	"math"

	"deliveryeta/internal/modules/features"
)

// ErrNonFinitePrediction is returned when the model yields NaN or Inf.
var ErrNonFinitePrediction = errors.New("model produced a non-finite prediction")

type ModelInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Stage        string `json:"stage"`
	BucketScheme string `json:"bucket_scheme"`
}

// Service is read-only after construction and safe for concurrent use.
type Service struct {
	artifact *Artifact
}

func NewService(artifact *Artifact) *Service {
	return &Service{artifact: artifact}
}

func (s *Service) Model() ModelInfo {
	return ModelInfo{
		Name:         s.artifact.Name,
		Version:      s.artifact.Version,
		Stage:        s.artifact.Stage,
		BucketScheme: s.artifact.BucketScheme,
	}
}

// Predict returns the predicted delivery time in minutes.
func (s *Service) Predict(ctx context.Context, f features.FeatureRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := s.artifact.Preprocessor.Encode(f)
	if err != nil {
		return 0, err
	}
	y := s.artifact.Ensemble.Evaluate(x)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrNonFinitePrediction
	}
	return y, nil
}
