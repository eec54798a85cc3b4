package metrics

import (
	"math"
	"strconv"
)

// Normalize maps a class metric value to a bar magnitude in [0,100].
func Normalize(key string, v float64) float64 {
	return normalize(Describe(key), v)
}

func normalize(d Descriptor, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	switch {
	case d.Percent && d.Max <= 1:
		return clamp(v * 100)
	case d.Percent:
		return clamp(v)
	case d.Max > 0:
		return clamp(v / d.Max * 100)
	}
	switch {
	case v <= 1:
		return clamp(v * 100)
	case v <= 10:
		return clamp(v * 10)
	default:
		return clamp(v / 100)
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Display formats a value for a card: percentages with one decimal,
// fractional numbers with two, whole numbers as is.
func Display(d Descriptor, v float64) string {
	if d.Percent {
		if d.Max <= 1 {
			v *= 100
		}
		return strconv.FormatFloat(v, 'f', 1, 64) + "%"
	}
	if v != math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
