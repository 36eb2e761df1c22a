// README: Raw order record accepted by the pipeline and the model-ready feature record it produces.
package features

// RawOrderRecord is one order as submitted by a client. Field names on the wire
// match the training dataset columns. Numeric fields the dataset stores as text
// stay strings here; the pipeline resolves them.
type RawOrderRecord struct {
	ID                        string  `json:"ID" csv:"ID"`
	DeliveryPersonID          string  `json:"Delivery_person_ID" csv:"Delivery_person_ID"`
	DeliveryPersonAge         string  `json:"Delivery_person_Age" csv:"Delivery_person_Age"`
	DeliveryPersonRatings     string  `json:"Delivery_person_Ratings" csv:"Delivery_person_Ratings"`
	RestaurantLatitude        float64 `json:"Restaurant_latitude" csv:"Restaurant_latitude"`
	RestaurantLongitude       float64 `json:"Restaurant_longitude" csv:"Restaurant_longitude"`
	DeliveryLocationLatitude  float64 `json:"Delivery_location_latitude" csv:"Delivery_location_latitude"`
	DeliveryLocationLongitude float64 `json:"Delivery_location_longitude" csv:"Delivery_location_longitude"`
	OrderDate                 string  `json:"Order_Date" csv:"Order_Date"`
	TimeOrdered               string  `json:"Time_Orderd" csv:"Time_Orderd"`
	TimeOrderPicked           string  `json:"Time_Order_picked" csv:"Time_Order_picked"`
	WeatherConditions         string  `json:"Weatherconditions" csv:"Weatherconditions"`
	RoadTrafficDensity        string  `json:"Road_traffic_density" csv:"Road_traffic_density"`
	VehicleCondition          int     `json:"Vehicle_condition" csv:"Vehicle_condition"`
	TypeOfOrder               string  `json:"Type_of_order" csv:"Type_of_order"`
	TypeOfVehicle             string  `json:"Type_of_vehicle" csv:"Type_of_vehicle"`
	MultipleDeliveries        string  `json:"multiple_deliveries" csv:"multiple_deliveries"`
	Festival                  string  `json:"Festival" csv:"Festival"`
	City                      string  `json:"City" csv:"City"`
}

// FeatureRecord is the fully derived representation of one order handed to the
// scoring model. Every field is populated; the pipeline never returns a partial record.
type FeatureRecord struct {
	Age                float64 `json:"age" csv:"age"`
	Ratings            float64 `json:"ratings" csv:"ratings"`
	Weather            string  `json:"weather" csv:"weather"`
	Traffic            string  `json:"traffic" csv:"traffic"`
	VehicleCondition   int     `json:"vehicle_condition" csv:"vehicle_condition"`
	TypeOfOrder        string  `json:"type_of_order" csv:"type_of_order"`
	TypeOfVehicle      string  `json:"type_of_vehicle" csv:"type_of_vehicle"`
	MultipleDeliveries float64 `json:"multiple_deliveries" csv:"multiple_deliveries"`
	Festival           string  `json:"festival" csv:"festival"`
	CityType           string  `json:"city_type" csv:"city_type"`
	IsWeekend          bool    `json:"is_weekend" csv:"is_weekend"`
	PickupTimeMinutes  float64 `json:"pickup_time_minutes" csv:"pickup_time_minutes"`
	OrderTimeOfDay     string  `json:"order_time_of_day" csv:"order_time_of_day"`
	Distance           float64 `json:"distance" csv:"distance"`
	DistanceType       string  `json:"distance_type" csv:"distance_type"`
}

// Internal column names, in the order the model was trained on.
const (
	FieldAge                = "age"
	FieldRatings            = "ratings"
	FieldWeather            = "weather"
	FieldTraffic            = "traffic"
	FieldVehicleCondition   = "vehicle_condition"
	FieldTypeOfOrder        = "type_of_order"
	FieldTypeOfVehicle      = "type_of_vehicle"
	FieldMultipleDeliveries = "multiple_deliveries"
	FieldFestival           = "festival"
	FieldCityType           = "city_type"
	FieldIsWeekend          = "is_weekend"
	FieldPickupTimeMinutes  = "pickup_time_minutes"
	FieldOrderTimeOfDay     = "order_time_of_day"
	FieldDistance           = "distance"
	FieldDistanceType       = "distance_type"

	FieldRestaurantLatitude  = "restaurant_latitude"
	FieldRestaurantLongitude = "restaurant_longitude"
	FieldDeliveryLatitude    = "delivery_latitude"
	FieldDeliveryLongitude   = "delivery_longitude"
	FieldOrderDate           = "order_date"
	FieldOrderTime           = "order_time"
	FieldOrderPickedTime     = "order_picked_time"
)

// FeatureColumns is the FeatureRecord schema. Everything else is pruned.
var FeatureColumns = []string{
	FieldAge,
	FieldRatings,
	FieldWeather,
	FieldTraffic,
	FieldVehicleCondition,
	FieldTypeOfOrder,
	FieldTypeOfVehicle,
	FieldMultipleDeliveries,
	FieldFestival,
	FieldCityType,
	FieldIsWeekend,
	FieldPickupTimeMinutes,
	FieldOrderTimeOfDay,
	FieldDistance,
	FieldDistanceType,
}

// Categorical vocabularies after normalization.
var (
	WeatherValues     = []string{"sunny", "stormy", "sandstorms", "cloudy", "fog", "windy"}
	TrafficLevels     = []string{"low", "medium", "high", "jam"} // ordinal, least to most congested
	OrderTypes        = []string{"snack", "meal", "drinks", "buffet"}
	VehicleTypes      = []string{"motorcycle", "scooter", "electric_scooter", "bicycle", "bike"}
	FestivalValues    = []string{"yes", "no"}
	CityTypes         = []string{"urban", "semi-urban", "metropolitian"}
	vehicleConditions = [2]int{0, 3}
)

// TrafficOrdinal returns the position of level in TrafficLevels, or -1.
func TrafficOrdinal(level string) int {
	return indexOf(TrafficLevels, level)
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
