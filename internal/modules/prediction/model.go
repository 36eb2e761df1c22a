// README: Prediction results returned to callers and the audit record persisted per request.
package prediction

import (
	"time"

	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/types"
)

// Result is one scored order. ID is empty when no audit store is configured.
type Result struct {
	ID           types.ID `json:"prediction_id,omitempty"`
	Prediction   float64  `json:"prediction"`
	Distance     float64  `json:"distance"`
	DistanceType string   `json:"distance_type"`
	ModelName    string   `json:"model_name"`
	ModelVersion string   `json:"model_version"`
	Cached       bool     `json:"cached"`
}

type Record struct {
	ID           types.ID                `json:"id"`
	Raw          features.RawOrderRecord `json:"raw"`
	Features     features.FeatureRecord  `json:"features"`
	Prediction   float64                 `json:"prediction"`
	ModelName    string                  `json:"model_name"`
	ModelVersion string                  `json:"model_version"`
	CreatedAt    time.Time               `json:"created_at"`
}
