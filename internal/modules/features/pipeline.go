// README: Feature pipeline: rename -> clean -> clean_lat_long -> haversine -> distance_type -> prune.
package features

import (
	"fmt"
	"math"
	"time"

	"deliveryeta/internal/types"
)

// Sane bounds enforced during cleaning.
const (
	MinRiderAge           = 18
	MaxRiderAge           = 100
	MinRating             = 0.0
	MaxRating             = 5.0
	MaxMultipleDeliveries = 3
)

// Pipeline turns raw order records into feature records. It holds no mutable
// state and is safe for concurrent use.
type Pipeline struct {
	scheme BucketScheme
}

func NewPipeline(scheme BucketScheme) (*Pipeline, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{scheme: scheme}, nil
}

func (p *Pipeline) Scheme() BucketScheme {
	return p.scheme
}

// Transform runs every stage in order. On failure the error is a
// *FeatureDerivationError and no record is returned.
func (p *Pipeline) Transform(raw RawOrderRecord) (FeatureRecord, error) {
	r := rename(raw)

	c, err := p.clean(r)
	if err != nil {
		return FeatureRecord{}, err
	}
	c = cleanLatLong(c)
	if c, err = haversine(c); err != nil {
		return FeatureRecord{}, err
	}
	if c, err = p.distanceType(c); err != nil {
		return FeatureRecord{}, err
	}
	return prune(r, c)
}

// renamed carries the raw values under internal names.
type renamed struct {
	id                 string
	riderID            string
	age                string
	ratings            string
	restaurantLat      float64
	restaurantLon      float64
	deliveryLat        float64
	deliveryLon        float64
	orderDate          string
	orderTime          string
	orderPickedTime    string
	weather            string
	traffic            string
	vehicleCondition   int
	typeOfOrder        string
	typeOfVehicle      string
	multipleDeliveries string
	festival           string
	cityType           string
}

func rename(raw RawOrderRecord) renamed {
	return renamed{
		id:                 raw.ID,
		riderID:            raw.DeliveryPersonID,
		age:                raw.DeliveryPersonAge,
		ratings:            raw.DeliveryPersonRatings,
		restaurantLat:      raw.RestaurantLatitude,
		restaurantLon:      raw.RestaurantLongitude,
		deliveryLat:        raw.DeliveryLocationLatitude,
		deliveryLon:        raw.DeliveryLocationLongitude,
		orderDate:          raw.OrderDate,
		orderTime:          raw.TimeOrdered,
		orderPickedTime:    raw.TimeOrderPicked,
		weather:            raw.WeatherConditions,
		traffic:            raw.RoadTrafficDensity,
		vehicleCondition:   raw.VehicleCondition,
		typeOfOrder:        raw.TypeOfOrder,
		typeOfVehicle:      raw.TypeOfVehicle,
		multipleDeliveries: raw.MultipleDeliveries,
		festival:           raw.Festival,
		cityType:           raw.City,
	}
}

// rawValue returns the submitted text behind a feature column, for error reports.
func (r renamed) rawValue(field string) string {
	switch field {
	case FieldAge:
		return r.age
	case FieldRatings:
		return r.ratings
	case FieldWeather:
		return r.weather
	case FieldTraffic:
		return r.traffic
	case FieldVehicleCondition:
		return fmt.Sprint(r.vehicleCondition)
	case FieldTypeOfOrder:
		return r.typeOfOrder
	case FieldTypeOfVehicle:
		return r.typeOfVehicle
	case FieldMultipleDeliveries:
		return r.multipleDeliveries
	case FieldFestival:
		return r.festival
	case FieldCityType:
		return r.cityType
	case FieldOrderDate:
		return r.orderDate
	case FieldOrderTime:
		return r.orderTime
	case FieldOrderPickedTime:
		return r.orderPickedTime
	}
	return ""
}

// missing reports a schema column absent at prune. Derived columns are
// reported under the raw field that failed to parse.
func (r renamed) missing(c cleaned, field string) error {
	if src, ok := c.unparsed[field]; ok {
		field = src
	}
	return missing(StagePrune, field, r.rawValue(field))
}

// cleaned carries typed values, any of which may still be missing.
type cleaned struct {
	age                types.Optional[float64]
	ratings            types.Optional[float64]
	restaurantLat      types.Optional[float64]
	restaurantLon      types.Optional[float64]
	deliveryLat        types.Optional[float64]
	deliveryLon        types.Optional[float64]
	weather            types.Optional[string]
	traffic            types.Optional[string]
	vehicleCondition   int
	typeOfOrder        types.Optional[string]
	typeOfVehicle      types.Optional[string]
	multipleDeliveries types.Optional[float64]
	festival           types.Optional[string]
	cityType           types.Optional[string]
	isWeekend          types.Optional[bool]
	pickupTimeMinutes  types.Optional[float64]
	orderTimeOfDay     types.Optional[string]
	distance           types.Optional[float64]
	distanceType       types.Optional[string]

	// unparsed maps a derived column to the raw field it could not be built from.
	unparsed map[string]string
}

func (p *Pipeline) clean(r renamed) (cleaned, error) {
	c := cleaned{
		age:                parseNumber(r.age),
		ratings:            parseNumber(r.ratings),
		restaurantLat:      finite(r.restaurantLat),
		restaurantLon:      finite(r.restaurantLon),
		deliveryLat:        finite(r.deliveryLat),
		deliveryLon:        finite(r.deliveryLon),
		weather:            normalizeWeather(r.weather),
		traffic:            normalizeCategory(r.traffic),
		vehicleCondition:   r.vehicleCondition,
		typeOfOrder:        normalizeCategory(r.typeOfOrder),
		typeOfVehicle:      normalizeCategory(r.typeOfVehicle),
		multipleDeliveries: parseNumber(r.multipleDeliveries),
		festival:           normalizeCategory(r.festival),
		cityType:           normalizeCity(r.cityType),
		unparsed:           map[string]string{},
	}

	if age, ok := c.age.Get(); ok && (age < MinRiderAge || age > MaxRiderAge) {
		return c, outOfRange(StageClean, FieldAge, age, fmt.Sprintf("want %d..%d", MinRiderAge, MaxRiderAge))
	}
	if rating, ok := c.ratings.Get(); ok && (rating < MinRating || rating > MaxRating) {
		return c, outOfRange(StageClean, FieldRatings, rating, "want 0..5")
	}
	if n, ok := c.multipleDeliveries.Get(); ok && (n < 0 || n > MaxMultipleDeliveries || n != math.Trunc(n)) {
		return c, outOfRange(StageClean, FieldMultipleDeliveries, n, "want whole number 0..3")
	}
	if c.vehicleCondition < vehicleConditions[0] || c.vehicleCondition > vehicleConditions[1] {
		return c, outOfRange(StageClean, FieldVehicleCondition, c.vehicleCondition, "want 0..3")
	}

	vocab := []struct {
		field  string
		value  types.Optional[string]
		values []string
	}{
		{FieldWeather, c.weather, WeatherValues},
		{FieldTraffic, c.traffic, TrafficLevels},
		{FieldTypeOfOrder, c.typeOfOrder, OrderTypes},
		{FieldTypeOfVehicle, c.typeOfVehicle, VehicleTypes},
		{FieldFestival, c.festival, FestivalValues},
		{FieldCityType, c.cityType, CityTypes},
	}
	for _, v := range vocab {
		if s, ok := v.value.Get(); ok && indexOf(v.values, s) < 0 {
			return c, outOfRange(StageClean, v.field, s, "unknown category")
		}
	}

	if d, ok := parseDate(r.orderDate).Get(); ok {
		wd := d.Weekday()
		c.isWeekend = types.Some(wd == time.Saturday || wd == time.Sunday)
	} else {
		c.unparsed[FieldIsWeekend] = FieldOrderDate
	}

	order, ok := parseClock(r.orderTime).Get()
	if !ok {
		c.unparsed[FieldOrderTimeOfDay] = FieldOrderTime
		c.unparsed[FieldPickupTimeMinutes] = FieldOrderTime
		return c, nil
	}
	if label, found := p.scheme.TimeOfDay.Label(float64(int(order.Hours()))); found {
		c.orderTimeOfDay = types.Some(label)
	}
	pickup, ok := parseClock(r.orderPickedTime).Get()
	if !ok {
		c.unparsed[FieldPickupTimeMinutes] = FieldOrderPickedTime
		return c, nil
	}
	minutes := pickupDelay(order, pickup).Minutes()
	if minutes <= 0 {
		return c, outOfRange(StageClean, FieldPickupTimeMinutes, minutes, "pickup must follow order")
	}
	c.pickupTimeMinutes = types.Some(minutes)
	return c, nil
}

func cleanLatLong(c cleaned) cleaned {
	c.restaurantLat = cleanCoordinate(c.restaurantLat)
	c.restaurantLon = cleanCoordinate(c.restaurantLon)
	c.deliveryLat = cleanCoordinate(c.deliveryLat)
	c.deliveryLon = cleanCoordinate(c.deliveryLon)
	return c
}

func haversine(c cleaned) (cleaned, error) {
	coords := []struct {
		field string
		value types.Optional[float64]
	}{
		{FieldRestaurantLatitude, c.restaurantLat},
		{FieldRestaurantLongitude, c.restaurantLon},
		{FieldDeliveryLatitude, c.deliveryLat},
		{FieldDeliveryLongitude, c.deliveryLon},
	}
	var v [4]float64
	for i, coord := range coords {
		f, ok := coord.value.Get()
		if !ok {
			return c, missing(StageHaversine, coord.field, "")
		}
		v[i] = f
	}

	d := haversineKm(v[0], v[1], v[2], v[3])
	if math.IsNaN(d) || d < 0 {
		return c, outOfRange(StageHaversine, FieldDistance, d, "distance must be non-negative")
	}
	c.distance = types.Some(d)
	return c, nil
}

func (p *Pipeline) distanceType(c cleaned) (cleaned, error) {
	d, ok := c.distance.Get()
	if !ok {
		return c, missing(StageDistanceType, FieldDistance, "")
	}
	label, found := p.scheme.Distance.Label(d)
	if !found {
		edges := p.scheme.Distance.Edges
		return c, outOfRange(StageDistanceType, FieldDistance, d,
			fmt.Sprintf("outside trained range [%g, %g) km", edges[0], edges[len(edges)-1]))
	}
	c.distanceType = types.Some(label)
	return c, nil
}

// prune keeps only the schema columns. A schema column still missing here fails.
func prune(r renamed, c cleaned) (FeatureRecord, error) {
	var f FeatureRecord
	var ok bool

	if f.Age, ok = c.age.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldAge)
	}
	if f.Ratings, ok = c.ratings.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldRatings)
	}
	if f.Weather, ok = c.weather.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldWeather)
	}
	if f.Traffic, ok = c.traffic.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldTraffic)
	}
	f.VehicleCondition = c.vehicleCondition
	if f.TypeOfOrder, ok = c.typeOfOrder.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldTypeOfOrder)
	}
	if f.TypeOfVehicle, ok = c.typeOfVehicle.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldTypeOfVehicle)
	}
	if f.MultipleDeliveries, ok = c.multipleDeliveries.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldMultipleDeliveries)
	}
	if f.Festival, ok = c.festival.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldFestival)
	}
	if f.CityType, ok = c.cityType.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldCityType)
	}
	if f.IsWeekend, ok = c.isWeekend.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldIsWeekend)
	}
	if f.PickupTimeMinutes, ok = c.pickupTimeMinutes.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldPickupTimeMinutes)
	}
	if f.OrderTimeOfDay, ok = c.orderTimeOfDay.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldOrderTimeOfDay)
	}
	if f.Distance, ok = c.distance.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldDistance)
	}
	if f.DistanceType, ok = c.distanceType.Get(); !ok {
		return FeatureRecord{}, r.missing(c, FieldDistanceType)
	}
	return f, nil
}
