package units

import (
	"strconv"
	"strings"
)

const metersPerMile = 1609.344

// ParseDistance converts a simulator distance string such as "3.70 km",
// "2.30 mi" or "850 m" to meters. A bare number is taken as meters. The
// second return value is false when the string cannot be parsed.
func ParseDistance(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	if len(fields) == 1 {
		return value, true
	}
	switch strings.ToLower(fields[1]) {
	case "km":
		return value * 1000, true
	case "mi":
		return value * metersPerMile, true
	case "m":
		return value, true
	default:
		return 0, false
	}
}
