// README: Restaurant lookup for order entry via the Google Places Nearby Search API.
package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/types"
)

const (
	// MaxRestaurants caps a single lookup.
	MaxRestaurants     = 100
	unnamedRestaurant  = "Unnamed Restaurant"
	defaultRadiusMeter = 5000
	// next_page_token is not valid immediately after it is issued.
	pageTokenDelay = 2 * time.Second
)

// Restaurant is a pickup candidate. DistanceKm is the straight-line distance
// from the search point.
type Restaurant struct {
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	PlaceID    string  `json:"place_id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Rating     float32 `json:"rating,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client    *maps.Client
	pageDelay time.Duration
}

// NewPlacesService creates a PlacesService with the given API key. Extra client
// options (e.g. maps.WithBaseURL) are passed through.
func NewPlacesService(apiKey string, opts ...maps.ClientOption) (*PlacesService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client, pageDelay: pageTokenDelay}, nil
}

// NearbyRestaurants returns up to limit restaurants within radiusMeters of point,
// following result pages until the limit is reached. Once one page is in hand,
// running out of time ends paging and returns what was collected.
func (s *PlacesService) NearbyRestaurants(ctx context.Context, point types.Point, radiusMeters uint, limit int) ([]Restaurant, error) {
	if limit <= 0 || limit > MaxRestaurants {
		limit = MaxRestaurants
	}
	if radiusMeters == 0 {
		radiusMeters = defaultRadiusMeter
	}

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: point.Lat, Lng: point.Lng},
		Radius:   radiusMeters,
		Type:     maps.PlaceTypeRestaurant,
	}

	var out []Restaurant
	seen := map[string]bool{}
	for {
		resp, err := s.client.NearbySearch(ctx, req)
		if err != nil {
			if len(out) > 0 && ctx.Err() != nil {
				return out, nil
			}
			return nil, fmt.Errorf("places api error: %w", err)
		}
		for _, r := range resp.Results {
			if seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true

			name := r.Name
			if name == "" {
				name = unnamedRestaurant
			}
			loc := types.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
			out = append(out, Restaurant{
				Name:       name,
				Address:    r.Vicinity,
				PlaceID:    r.PlaceID,
				Lat:        loc.Lat,
				Lon:        loc.Lng,
				Rating:     r.Rating,
				DistanceKm: features.HaversineKm(point, loc),
			})
			if len(out) >= limit {
				return out, nil
			}
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		// Stop when the deadline falls before the next token becomes valid.
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= s.pageDelay {
			return out, nil
		}

		select {
		case <-ctx.Done():
			return out, nil
		case <-time.After(s.pageDelay):
		}
		req = &maps.NearbySearchRequest{PageToken: resp.NextPageToken}
	}
}
