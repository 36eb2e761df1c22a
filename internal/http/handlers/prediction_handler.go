// README: Prediction handlers: predict, feature preview, audit lookup, model info.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/modules/prediction"
	"deliveryeta/internal/modules/scoring"
	"deliveryeta/internal/types"
)

type Predictor interface {
	Predict(ctx context.Context, raw features.RawOrderRecord) (prediction.Result, error)
	Features(raw features.RawOrderRecord) (features.FeatureRecord, error)
	Get(ctx context.Context, id types.ID) (*prediction.Record, error)
	Model() scoring.ModelInfo
}

type PredictionHandler struct {
	prediction Predictor
}

func NewPredictionHandler(svc Predictor) *PredictionHandler {
	return &PredictionHandler{prediction: svc}
}

// orderRequest mirrors features.RawOrderRecord. Text fields may be empty or "NaN";
// the pipeline decides whether that is acceptable.
type orderRequest struct {
	ID                        *string  `json:"ID" binding:"required"`
	DeliveryPersonID          *string  `json:"Delivery_person_ID" binding:"required"`
	DeliveryPersonAge         *string  `json:"Delivery_person_Age" binding:"required"`
	DeliveryPersonRatings     *string  `json:"Delivery_person_Ratings" binding:"required"`
	RestaurantLatitude        *float64 `json:"Restaurant_latitude" binding:"required,gte=8,lte=37"`
	RestaurantLongitude       *float64 `json:"Restaurant_longitude" binding:"required,gte=68,lte=97"`
	DeliveryLocationLatitude  *float64 `json:"Delivery_location_latitude" binding:"required,gte=8,lte=37"`
	DeliveryLocationLongitude *float64 `json:"Delivery_location_longitude" binding:"required,gte=68,lte=97"`
	OrderDate                 *string  `json:"Order_Date" binding:"required"`
	TimeOrdered               *string  `json:"Time_Orderd" binding:"required"`
	TimeOrderPicked           *string  `json:"Time_Order_picked" binding:"required"`
	WeatherConditions         *string  `json:"Weatherconditions" binding:"required"`
	RoadTrafficDensity        *string  `json:"Road_traffic_density" binding:"required"`
	VehicleCondition          *int     `json:"Vehicle_condition" binding:"required,gte=0,lte=3"`
	TypeOfOrder               *string  `json:"Type_of_order" binding:"required"`
	TypeOfVehicle             *string  `json:"Type_of_vehicle" binding:"required"`
	MultipleDeliveries        *string  `json:"multiple_deliveries" binding:"required"`
	Festival                  *string  `json:"Festival" binding:"required"`
	City                      *string  `json:"City" binding:"required"`
}

// raw is only valid after a successful bind.
func (r orderRequest) raw() features.RawOrderRecord {
	return features.RawOrderRecord{
		ID:                        *r.ID,
		DeliveryPersonID:          *r.DeliveryPersonID,
		DeliveryPersonAge:         *r.DeliveryPersonAge,
		DeliveryPersonRatings:     *r.DeliveryPersonRatings,
		RestaurantLatitude:        *r.RestaurantLatitude,
		RestaurantLongitude:       *r.RestaurantLongitude,
		DeliveryLocationLatitude:  *r.DeliveryLocationLatitude,
		DeliveryLocationLongitude: *r.DeliveryLocationLongitude,
		OrderDate:                 *r.OrderDate,
		TimeOrdered:               *r.TimeOrdered,
		TimeOrderPicked:           *r.TimeOrderPicked,
		WeatherConditions:         *r.WeatherConditions,
		RoadTrafficDensity:        *r.RoadTrafficDensity,
		VehicleCondition:          *r.VehicleCondition,
		TypeOfOrder:               *r.TypeOfOrder,
		TypeOfVehicle:             *r.TypeOfVehicle,
		MultipleDeliveries:        *r.MultipleDeliveries,
		Festival:                  *r.Festival,
		City:                      *r.City,
	}
}

func (h *PredictionHandler) bind(c *gin.Context) (features.RawOrderRecord, bool) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return features.RawOrderRecord{}, false
	}
	return req.raw(), true
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	raw, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.prediction.Predict(c.Request.Context(), raw)
	if err != nil {
		writePredictionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *PredictionHandler) Features(c *gin.Context) {
	raw, ok := h.bind(c)
	if !ok {
		return
	}
	f, err := h.prediction.Features(raw)
	if err != nil {
		writePredictionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, f)
}

func (h *PredictionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing prediction id")
		return
	}
	rec, err := h.prediction.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writePredictionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

func (h *PredictionHandler) Model(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.prediction.Model())
}
