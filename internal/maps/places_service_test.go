// README: Places and directions tests against a stubbed Maps API server.
package maps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"deliveryeta/internal/types"
)

const nearbyPage = `{
  "status": "OK",
  "next_page_token": %q,
  "results": [
    {"name": "Cafe Mondegar", "place_id": "p1", "vicinity": "Colaba", "rating": 4.3,
     "geometry": {"location": {"lat": 18.9245, "lng": 72.8317}}},
    {"name": "", "place_id": "p2", "vicinity": "Fort",
     "geometry": {"location": {"lat": 18.9322, "lng": 72.8344}}}
  ]
}`

const lastPage = `{
  "status": "OK",
  "results": [
    {"name": "Britannia", "place_id": "p3", "geometry": {"location": {"lat": 18.9343, "lng": 72.8381}}},
    {"name": "Cafe Mondegar", "place_id": "p1", "geometry": {"location": {"lat": 18.9245, "lng": 72.8317}}}
  ]
}`

func newTestPlaces(t *testing.T, handler http.HandlerFunc) *PlacesService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := NewPlacesService("AIza-test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	svc.pageDelay = time.Millisecond
	return svc
}

func TestNearbyRestaurants(t *testing.T) {
	var calls int32
	svc := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pagetoken") == "" {
			assert.Equal(t, "restaurant", r.URL.Query().Get("type"))
			fmt.Fprintf(w, nearbyPage, "next")
			return
		}
		assert.Equal(t, int32(2), n)
		fmt.Fprint(w, lastPage)
	})

	origin := types.Point{Lat: 18.9220, Lng: 72.8347}
	got, err := svc.NearbyRestaurants(context.Background(), origin, 2000, 0)
	require.NoError(t, err)
	require.Len(t, got, 3, "duplicate place ids are dropped")

	assert.Equal(t, "Cafe Mondegar", got[0].Name)
	assert.Equal(t, "Colaba", got[0].Address)
	assert.InDelta(t, 0.42, got[0].DistanceKm, 0.01)
	assert.Equal(t, "Unnamed Restaurant", got[1].Name)
	assert.Equal(t, "Britannia", got[2].Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNearbyRestaurants_Limit(t *testing.T) {
	svc := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, nearbyPage, "next")
	})
	got, err := svc.NearbyRestaurants(context.Background(), types.Point{Lat: 18.92, Lng: 72.83}, 0, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNearbyRestaurants_DeadlineKeepsFirstPage(t *testing.T) {
	var calls int32
	svc := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, nearbyPage, "next")
	})
	svc.pageDelay = pageTokenDelay

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	start := time.Now()
	got, err := svc.NearbyRestaurants(ctx, types.Point{Lat: 18.92, Lng: 72.83}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Less(t, time.Since(start), pageTokenDelay, "does not sleep past the deadline")
}

func TestNearbyRestaurants_CanceledWhileWaiting(t *testing.T) {
	svc := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, nearbyPage, "next")
	})
	svc.pageDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	got, err := svc.NearbyRestaurants(ctx, types.Point{Lat: 18.92, Lng: 72.83}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestNearbyRestaurants_CanceledBeforeFirstPage(t *testing.T) {
	svc := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, nearbyPage, "")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.NearbyRestaurants(ctx, types.Point{Lat: 18.92, Lng: 72.83}, 0, 0)
	assert.Error(t, err)
}

func TestNearbyRestaurants_APIError(t *testing.T) {
	svc := newTestPlaces(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`)
	})
	_, err := svc.NearbyRestaurants(context.Background(), types.Point{Lat: 18.92, Lng: 72.83}, 1000, 10)
	assert.Error(t, err)
}

func TestDrivingEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
  "status": "OK",
  "routes": [{
    "summary": "Mumbai - Pune Expy",
    "legs": [{"distance": {"text": "149 km", "value": 149200}, "duration": {"text": "2 hours 50 mins", "value": 10200}}]
  }]
}`)
	}))
	defer srv.Close()

	svc, err := NewRouteService("AIza-test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	est, err := svc.DrivingEstimate(context.Background(),
		types.Point{Lat: 19.0760, Lng: 72.8777}, types.Point{Lat: 18.5204, Lng: 73.8567})
	require.NoError(t, err)
	assert.InDelta(t, 149.2, est.DistanceKm, 1e-9)
	assert.Equal(t, 170*time.Minute, est.Duration)
	assert.Equal(t, "Mumbai - Pune Expy", est.Summary)
}
