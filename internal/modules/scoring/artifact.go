// README: Serialized model artifact: metadata, preprocessor and tree ensemble in one JSON file.
package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"deliveryeta/internal/modules/features"
)

// ErrInvalidModel is returned for artifacts that fail to decode or validate.
var ErrInvalidModel = errors.New("invalid model artifact")

// Artifact is a trained model as exported by the training pipeline.
type Artifact struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Stage        string       `json:"stage"`
	BucketScheme string       `json:"bucket_scheme"`
	Preprocessor Preprocessor `json:"preprocessor"`
	Ensemble     Ensemble     `json:"ensemble"`
}

// Load decodes and validates an artifact.
func Load(r io.Reader) (*Artifact, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return &a, nil
}

func LoadFile(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (a *Artifact) validate() error {
	if a.Name == "" || a.Version == "" {
		return fmt.Errorf("name and version are required")
	}
	if err := a.Preprocessor.validate(); err != nil {
		return err
	}
	return a.Ensemble.validate(a.Preprocessor.Width())
}

// CheckScheme fails when the artifact cannot consume what the pipeline
// produces: different bucket edges, a reordered ordinal column, or a schema
// column the preprocessor never encodes.
func (a *Artifact) CheckScheme(scheme features.BucketScheme) error {
	if a.BucketScheme != scheme.Version {
		return fmt.Errorf("model %s/%s expects bucket scheme %q, pipeline uses %q",
			a.Name, a.Version, a.BucketScheme, scheme.Version)
	}
	for _, c := range a.Preprocessor.Ordinal {
		var rank func(string) int
		var want []string
		switch c.Name {
		case features.FieldTraffic:
			rank, want = features.TrafficOrdinal, features.TrafficLevels
		case features.FieldDistanceType:
			rank, want = scheme.Distance.Ordinal, scheme.Distance.Labels
		default:
			continue
		}
		if !sameOrder(c.Categories, rank, len(want)) {
			return fmt.Errorf("model %s categories %v differ from pipeline %v", c.Name, c.Categories, want)
		}
	}
	encoded := a.Preprocessor.columns()
	for _, name := range features.FeatureColumns {
		if !encoded[name] {
			return fmt.Errorf("model %s/%s does not encode column %s", a.Name, a.Version, name)
		}
	}
	return nil
}

func sameOrder(categories []string, rank func(string) int, n int) bool {
	if len(categories) != n {
		return false
	}
	for i, c := range categories {
		if rank(c) != i {
			return false
		}
	}
	return true
}
