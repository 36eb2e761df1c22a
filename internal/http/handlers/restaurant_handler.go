// README: Restaurant lookup handler backing the order-entry front end.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"deliveryeta/internal/maps"
	"deliveryeta/internal/types"
)

type RestaurantFinder interface {
	NearbyRestaurants(ctx context.Context, point types.Point, radiusMeters uint, limit int) ([]maps.Restaurant, error)
}

type RestaurantHandler struct {
	places RestaurantFinder
}

// NewRestaurantHandler accepts a nil finder; requests then get 503.
func NewRestaurantHandler(places RestaurantFinder) *RestaurantHandler {
	return &RestaurantHandler{places: places}
}

type nearbyQuery struct {
	Lat    float64 `form:"lat" binding:"required,gte=8,lte=37"`
	Lon    float64 `form:"lon" binding:"required,gte=68,lte=97"`
	Radius uint    `form:"radius" binding:"omitempty,lte=50000"`
	Limit  int     `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

func (h *RestaurantHandler) Nearby(c *gin.Context) {
	if h.places == nil {
		writeError(c, http.StatusServiceUnavailable, "restaurant lookup not configured")
		return
	}
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	list, err := h.places.NearbyRestaurants(c.Request.Context(), types.Point{Lat: q.Lat, Lng: q.Lon}, q.Radius, q.Limit)
	if err != nil {
		_ = c.Error(err)
		writeError(c, http.StatusBadGateway, "restaurant lookup failed")
		return
	}
	if list == nil {
		list = []maps.Restaurant{}
	}
	writeJSON(c, http.StatusOK, gin.H{"restaurants": list})
}
