// README: Driving distance lookups via the Google Directions API.
package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"deliveryeta/internal/types"
)

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(apiKey string, opts ...maps.ClientOption) (*RouteService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// RoadEstimate is the first driving route between two points.
type RoadEstimate struct {
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration"`
	Summary    string        `json:"summary"`
}

// DrivingEstimate sums the legs of the first driving route from origin to destination.
func (s *RouteService) DrivingEstimate(ctx context.Context, origin, destination types.Point) (RoadEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(origin),
		Destination: latLng(destination),
		Mode:        maps.TravelModeDriving,
		Region:      "in",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return RoadEstimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return RoadEstimate{}, fmt.Errorf("no route found")
	}

	est := RoadEstimate{Summary: routes[0].Summary}
	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		est.Duration += leg.Duration
	}
	est.DistanceKm = float64(meters) / 1000
	return est, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
