// README: Bucket edges frozen at training time, versioned so a model can name the scheme it expects.
package features

import (
	"fmt"
	"math"
)

// Distance breakpoints in km. Distances at or beyond DistanceMaxKm were never
// seen in training.
const (
	DistanceShortMaxKm  = 5.0
	DistanceMediumMaxKm = 10.0
	DistanceLongMaxKm   = 15.0
	DistanceMaxKm       = 25.0
)

const (
	DistanceShort    = "short"
	DistanceMedium   = "medium"
	DistanceLong     = "long"
	DistanceVeryLong = "very_long"
)

// Order-hour breakpoints.
const (
	HourAfterMidnightEnd = 6
	HourMorningEnd       = 12
	HourAfternoonEnd     = 17
	HourEveningEnd       = 20
	HourNightEnd         = 24
)

const (
	TimeAfterMidnight = "after_midnight"
	TimeMorning       = "morning"
	TimeAfternoon     = "afternoon"
	TimeEvening       = "evening"
	TimeNight         = "night"
)

// Buckets assigns labels to half-open intervals between consecutive edges.
// RightClosed selects (a, b] over [a, b). IncludeLowest closes the outermost
// open end: the first interval's left edge when RightClosed, the last
// interval's right edge otherwise.
type Buckets struct {
	Edges         []float64
	Labels        []string
	RightClosed   bool
	IncludeLowest bool
}

// Label returns the bucket label for x, or false when x falls outside every bucket.
func (b Buckets) Label(x float64) (string, bool) {
	if math.IsNaN(x) {
		return "", false
	}
	last := len(b.Edges) - 2
	for i := 0; i <= last; i++ {
		lo, hi := b.Edges[i], b.Edges[i+1]
		var in bool
		if b.RightClosed {
			in = x > lo && x <= hi
			if i == 0 && b.IncludeLowest && x == lo {
				in = true
			}
		} else {
			in = x >= lo && x < hi
			if i == last && b.IncludeLowest && x == hi {
				in = true
			}
		}
		if in {
			return b.Labels[i], true
		}
	}
	return "", false
}

// Ordinal returns the position of label, or -1.
func (b Buckets) Ordinal(label string) int {
	return indexOf(b.Labels, label)
}

func (b Buckets) validate(name string) error {
	if len(b.Edges) < 2 || len(b.Labels) != len(b.Edges)-1 {
		return fmt.Errorf("%s buckets: %d edges for %d labels", name, len(b.Edges), len(b.Labels))
	}
	for i := 1; i < len(b.Edges); i++ {
		if b.Edges[i] <= b.Edges[i-1] {
			return fmt.Errorf("%s buckets: edges not increasing at %d", name, i)
		}
	}
	return nil
}

// BucketScheme is one frozen set of bucket edges.
type BucketScheme struct {
	Version   string
	Distance  Buckets
	TimeOfDay Buckets
}

func (s BucketScheme) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("bucket scheme: empty version")
	}
	if err := s.Distance.validate("distance"); err != nil {
		return err
	}
	return s.TimeOfDay.validate("time of day")
}

// SchemeV1 matches the data-cleaning step the current models were trained with.
var SchemeV1 = BucketScheme{
	Version: "v1",
	Distance: Buckets{
		Edges:  []float64{0, DistanceShortMaxKm, DistanceMediumMaxKm, DistanceLongMaxKm, DistanceMaxKm},
		Labels: []string{DistanceShort, DistanceMedium, DistanceLong, DistanceVeryLong},
	},
	TimeOfDay: Buckets{
		Edges:         []float64{0, HourAfterMidnightEnd, HourMorningEnd, HourAfternoonEnd, HourEveningEnd, HourNightEnd},
		Labels:        []string{TimeAfterMidnight, TimeMorning, TimeAfternoon, TimeEvening, TimeNight},
		RightClosed:   true,
		IncludeLowest: true,
	},
}

// Schemes lists every known scheme by version.
var Schemes = map[string]BucketScheme{
	SchemeV1.Version: SchemeV1,
}

func LookupScheme(version string) (BucketScheme, error) {
	s, ok := Schemes[version]
	if !ok {
		return BucketScheme{}, fmt.Errorf("unknown bucket scheme %q", version)
	}
	return s, nil
}
