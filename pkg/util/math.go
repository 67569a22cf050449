package util

import "math"

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
    p := math.Pow10(places)
    return math.Round(v*p) / p
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
    if v < lo {
        return lo
    }
    if v > hi {
        return hi
    }
    return v
}
