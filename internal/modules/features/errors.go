// README: Typed pipeline failures. Callers classify them with errors.As.
package features

import "fmt"

// Stage names reported in FeatureDerivationError. The rename and
// clean_lat_long stages cannot fail and have no constant.
const (
	StageClean        = "clean"
	StageHaversine    = "haversine"
	StageDistanceType = "distance_type"
	StagePrune        = "prune"
)

// MissingFieldError reports a required field that is absent or could not be parsed.
type MissingFieldError struct {
	Field string
	Value string
}

func (e *MissingFieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("missing field %s", e.Field)
	}
	return fmt.Sprintf("missing field %s (got %q)", e.Field, e.Value)
}

// OutOfRangeError reports a value outside physically sane bounds or outside a
// categorical vocabulary.
type OutOfRangeError struct {
	Field  string
	Value  any
	Reason string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("field %s out of range: %v (%s)", e.Field, e.Value, e.Reason)
}

// FeatureDerivationError wraps a MissingFieldError or OutOfRangeError with the
// stage that raised it.
type FeatureDerivationError struct {
	Stage string
	Field string
	Value any
	Err   error
}

func (e *FeatureDerivationError) Error() string {
	return fmt.Sprintf("feature derivation failed at stage %s: %v", e.Stage, e.Err)
}

func (e *FeatureDerivationError) Unwrap() error {
	return e.Err
}

func missing(stage, field, raw string) error {
	return &FeatureDerivationError{
		Stage: stage,
		Field: field,
		Value: raw,
		Err:   &MissingFieldError{Field: field, Value: raw},
	}
}

func outOfRange(stage, field string, value any, reason string) error {
	return &FeatureDerivationError{
		Stage: stage,
		Field: field,
		Value: value,
		Err:   &OutOfRangeError{Field: field, Value: value, Reason: reason},
	}
}
