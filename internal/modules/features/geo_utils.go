// README: Pure geographic helpers (haversine, coordinate cleaning).
package features

import (
	"math"

	"deliveryeta/internal/types"
)

const earthRadiusKm = 6371.0

// CoordinateThreshold is the smallest coordinate magnitude, in degrees, accepted as
// a real location. Anything below it is a (0,0)-style placeholder.
const CoordinateThreshold = 1.0

// HaversineKm returns the great-circle distance in kilometres between two points
// specified in decimal degrees.
func HaversineKm(a, b types.Point) float64 {
	return haversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push a a hair past 1 for antipodal points
	a = math.Min(a, 1)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// cleanCoordinate takes the absolute value (the dataset has sign-flipped rows) and
// treats near-zero magnitudes as missing.
func cleanCoordinate(v types.Optional[float64]) types.Optional[float64] {
	f, ok := v.Get()
	if !ok {
		return v
	}
	f = math.Abs(f)
	if math.IsNaN(f) || f < CoordinateThreshold {
		return types.None[float64]()
	}
	return types.Some(f)
}
