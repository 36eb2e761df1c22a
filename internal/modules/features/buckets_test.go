package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceBuckets(t *testing.T) {
	tests := []struct {
		km    float64
		want  string
		found bool
	}{
		{0, DistanceShort, true},
		{4.999, DistanceShort, true},
		{5, DistanceMedium, true},
		{9.5, DistanceMedium, true},
		{10, DistanceLong, true},
		{15, DistanceVeryLong, true},
		{24.99, DistanceVeryLong, true},
		{25, "", false},
		{-0.1, "", false},
	}
	for _, tt := range tests {
		got, found := SchemeV1.Distance.Label(tt.km)
		assert.Equal(t, tt.found, found, "km=%v", tt.km)
		assert.Equal(t, tt.want, got, "km=%v", tt.km)
	}
}

func TestTimeOfDayBuckets_IncludeLowest(t *testing.T) {
	got, ok := SchemeV1.TimeOfDay.Label(0)
	require.True(t, ok)
	assert.Equal(t, TimeAfterMidnight, got)

	strict := SchemeV1.TimeOfDay
	strict.IncludeLowest = false
	_, ok = strict.Label(0)
	assert.False(t, ok)
}

func TestBuckets_IncludeLowestLeftClosedClosesLastEdge(t *testing.T) {
	b := SchemeV1.Distance
	b.IncludeLowest = true
	got, ok := b.Label(DistanceMaxKm)
	require.True(t, ok)
	assert.Equal(t, DistanceVeryLong, got)
}

func TestBuckets_Ordinal(t *testing.T) {
	assert.Equal(t, 0, SchemeV1.Distance.Ordinal(DistanceShort))
	assert.Equal(t, 3, SchemeV1.Distance.Ordinal(DistanceVeryLong))
	assert.Equal(t, -1, SchemeV1.Distance.Ordinal("far"))
	assert.Equal(t, 3, TrafficOrdinal("jam"))
	assert.Equal(t, -1, TrafficOrdinal("gridlock"))
}

func TestLookupScheme(t *testing.T) {
	s, err := LookupScheme("v1")
	require.NoError(t, err)
	assert.Equal(t, SchemeV1.Version, s.Version)

	_, err = LookupScheme("v0")
	assert.Error(t, err)
}
