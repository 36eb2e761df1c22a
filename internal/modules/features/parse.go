// README: Sentinel-aware parsing of the dataset's textual fields.
package features

import (
	"math"
	"strconv"
	"strings"
	"time"

	"deliveryeta/internal/types"
)

// isSentinel reports whether s encodes a missing value ("NaN", "NaN ", empty).
func isSentinel(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

// parseNumber resolves a textual number. Sentinels and unparseable text are missing.
func parseNumber(s string) types.Optional[float64] {
	if isSentinel(s) {
		return types.None[float64]()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return types.None[float64]()
	}
	return types.Some(f)
}

func finite(f float64) types.Optional[float64] {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return types.None[float64]()
	}
	return types.Some(f)
}

// dateLayouts are tried in order; the dataset is day-first.
var dateLayouts = []string{"2-1-2006", "2/1/2006", "2006-01-02"}

func parseDate(s string) types.Optional[time.Time] {
	if isSentinel(s) {
		return types.None[time.Time]()
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.Some(t)
		}
	}
	return types.None[time.Time]()
}

var clockLayouts = []string{"15:04:05", "15:04"}

// parseClock returns the offset of a wall-clock time from midnight.
func parseClock(s string) types.Optional[time.Duration] {
	if isSentinel(s) {
		return types.None[time.Duration]()
	}
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.Some(time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second)
		}
	}
	return types.None[time.Duration]()
}

// pickupDelay is pickup minus order; a pickup earlier than the order means the
// order spans midnight.
func pickupDelay(order, pickup time.Duration) time.Duration {
	if pickup < order {
		pickup += 24 * time.Hour
	}
	return pickup - order
}

// normalizeCategory trims and lowercases. Sentinels are missing.
func normalizeCategory(s string) types.Optional[string] {
	if isSentinel(s) {
		return types.None[string]()
	}
	return types.Some(strings.ToLower(strings.TrimSpace(s)))
}

// normalizeWeather also drops the "conditions " prefix of the raw column, so
// "conditions NaN" is missing.
func normalizeWeather(s string) types.Optional[string] {
	s = strings.TrimSpace(s)
	if len(s) >= len("conditions") && strings.EqualFold(s[:len("conditions")], "conditions") {
		s = s[len("conditions"):]
	}
	return normalizeCategory(s)
}

// cityAliases maps accepted spellings onto the training vocabulary.
var cityAliases = map[string]string{
	"metropolitan": "metropolitian",
	"semi urban":   "semi-urban",
}

func normalizeCity(s string) types.Optional[string] {
	c := normalizeCategory(s)
	if v, ok := c.Get(); ok {
		if alias, found := cityAliases[v]; found {
			return types.Some(alias)
		}
	}
	return c
}
