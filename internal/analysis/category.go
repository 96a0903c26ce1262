package analysis

// Category labels the shape of a backend query result.
type Category string

const (
	CategoryError          Category = "error"
	CategoryCityTotals     Category = "city_totals"
	CategorySiteTotals     Category = "site_totals"
	CategorySiteDayStatus  Category = "site_day_status"
	CategoryVehicleDegrade Category = "vehicle_degrade"
	CategoryTrips          Category = "trips"
	CategoryUnknown        Category = "unknown"
)

// Classify assigns a decoded backend JSON value to exactly one Category.
//
// The checks are ordered because the signatures overlap: an "error" key wins
// over everything else, and "uniqueVehicles" splits on the presence of "site".
// Any value that matches no signature classifies as CategoryUnknown; Classify
// never panics.
//
// An empty array classifies as CategoryTrips. Of the six backend operations
// only the two trip queries return arrays, so an empty array can only mean a
// trip query with no data.
func Classify(payload any) Category {
	switch v := payload.(type) {
	case map[string]any:
		if _, ok := v["error"]; ok {
			return CategoryError
		}
		if _, ok := v["uniqueVehicles"]; ok {
			if _, ok := v["site"]; ok {
				return CategorySiteTotals
			}
			return CategoryCityTotals
		}
		if hasKeys(v, "detectionsTotal", "detectionsGood", "detectionsBad") {
			return CategorySiteDayStatus
		}
		if hasKeys(v, "plate", "cumNFrames") {
			return CategoryVehicleDegrade
		}
		return CategoryUnknown

	case []any:
		if len(v) == 0 {
			return CategoryTrips
		}
		if first, ok := v[0].(map[string]any); ok {
			if hasKeys(first, "plate", "day", "window30") {
				return CategoryTrips
			}
		}
		return CategoryUnknown
	}

	return CategoryUnknown
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
