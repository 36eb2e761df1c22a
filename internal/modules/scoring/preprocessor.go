// README: Column transformer turning a FeatureRecord into the vector the trees were trained on.
package scoring

import (
	"fmt"
	"strconv"

	"deliveryeta/internal/modules/features"
)

// NumericColumn is min-max scaled with the training range. Values outside it are not clipped.
type NumericColumn struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// NominalColumn is one-hot encoded. Unknown categories encode as all zeros.
type NominalColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	DropFirst  bool     `json:"drop_first"`
}

// OrdinalColumn encodes a category as its position. Unknown categories encode as -1.
type OrdinalColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// Preprocessor lays columns out as numeric, nominal, ordinal, then passthrough.
type Preprocessor struct {
	Numeric     []NumericColumn `json:"numeric"`
	Nominal     []NominalColumn `json:"nominal"`
	Ordinal     []OrdinalColumn `json:"ordinal"`
	Passthrough []string        `json:"passthrough"`
}

// Width is the length of the encoded vector.
func (p *Preprocessor) Width() int {
	n := len(p.Numeric) + len(p.Ordinal) + len(p.Passthrough)
	for _, c := range p.Nominal {
		n += len(c.Categories)
		if c.DropFirst {
			n--
		}
	}
	return n
}

func (p *Preprocessor) Encode(f features.FeatureRecord) ([]float64, error) {
	x := make([]float64, 0, p.Width())
	for _, c := range p.Numeric {
		v, err := numericValue(f, c.Name)
		if err != nil {
			return nil, err
		}
		x = append(x, (v-c.Min)/(c.Max-c.Min))
	}
	for _, c := range p.Nominal {
		v, err := categoricalValue(f, c.Name)
		if err != nil {
			return nil, err
		}
		cats := c.Categories
		if c.DropFirst {
			cats = cats[1:]
		}
		for _, cat := range cats {
			if cat == v {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}
	for _, c := range p.Ordinal {
		v, err := categoricalValue(f, c.Name)
		if err != nil {
			return nil, err
		}
		x = append(x, float64(ordinal(c.Categories, v)))
	}
	for _, name := range p.Passthrough {
		v, err := numericValue(f, name)
		if err != nil {
			return nil, err
		}
		x = append(x, v)
	}
	return x, nil
}

func (p *Preprocessor) validate() error {
	seen := map[string]bool{}
	use := func(name string) error {
		if seen[name] {
			return fmt.Errorf("column %s encoded twice", name)
		}
		seen[name] = true
		return nil
	}
	for _, c := range p.Numeric {
		if err := use(c.Name); err != nil {
			return err
		}
		if _, err := numericValue(features.FeatureRecord{}, c.Name); err != nil {
			return err
		}
		if c.Max <= c.Min {
			return fmt.Errorf("column %s: max %g not above min %g", c.Name, c.Max, c.Min)
		}
	}
	for _, c := range p.Nominal {
		if err := use(c.Name); err != nil {
			return err
		}
		if _, err := categoricalValue(features.FeatureRecord{}, c.Name); err != nil {
			return err
		}
		if len(c.Categories) == 0 {
			return fmt.Errorf("column %s: no categories", c.Name)
		}
	}
	for _, c := range p.Ordinal {
		if err := use(c.Name); err != nil {
			return err
		}
		if _, err := categoricalValue(features.FeatureRecord{}, c.Name); err != nil {
			return err
		}
	}
	for _, name := range p.Passthrough {
		if err := use(name); err != nil {
			return err
		}
		if _, err := numericValue(features.FeatureRecord{}, name); err != nil {
			return err
		}
	}
	if p.Width() == 0 {
		return fmt.Errorf("preprocessor encodes no columns")
	}
	return nil
}

func (p *Preprocessor) columns() map[string]bool {
	out := map[string]bool{}
	for _, c := range p.Numeric {
		out[c.Name] = true
	}
	for _, c := range p.Nominal {
		out[c.Name] = true
	}
	for _, c := range p.Ordinal {
		out[c.Name] = true
	}
	for _, name := range p.Passthrough {
		out[name] = true
	}
	return out
}

func ordinal(categories []string, v string) int {
	for i, c := range categories {
		if c == v {
			return i
		}
	}
	return -1
}

func numericValue(f features.FeatureRecord, name string) (float64, error) {
	switch name {
	case features.FieldAge:
		return f.Age, nil
	case features.FieldRatings:
		return f.Ratings, nil
	case features.FieldPickupTimeMinutes:
		return f.PickupTimeMinutes, nil
	case features.FieldDistance:
		return f.Distance, nil
	case features.FieldVehicleCondition:
		return float64(f.VehicleCondition), nil
	case features.FieldMultipleDeliveries:
		return f.MultipleDeliveries, nil
	}
	return 0, fmt.Errorf("column %s is not numeric", name)
}

func categoricalValue(f features.FeatureRecord, name string) (string, error) {
	switch name {
	case features.FieldWeather:
		return f.Weather, nil
	case features.FieldTraffic:
		return f.Traffic, nil
	case features.FieldTypeOfOrder:
		return f.TypeOfOrder, nil
	case features.FieldTypeOfVehicle:
		return f.TypeOfVehicle, nil
	case features.FieldFestival:
		return f.Festival, nil
	case features.FieldCityType:
		return f.CityType, nil
	case features.FieldIsWeekend:
		if f.IsWeekend {
			return "1", nil
		}
		return "0", nil
	case features.FieldOrderTimeOfDay:
		return f.OrderTimeOfDay, nil
	case features.FieldDistanceType:
		return f.DistanceType, nil
	case features.FieldVehicleCondition:
		return strconv.Itoa(f.VehicleCondition), nil
	}
	return "", fmt.Errorf("column %s is not categorical", name)
}
