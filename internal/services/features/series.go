package features

import "math"

// EWMA computes an exponentially weighted moving average with
// alpha = 2/(span+1), seeded at the first observation.
// It returns a series of the same length, or nil if input is empty.
func EWMA(series []float64, span int) []float64 {
	if len(series) == 0 || span < 1 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EWMALast returns the final smoothed value, or 0 for an empty series.
func EWMALast(series []float64, span int) float64 {
	s := EWMA(series, span)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdPop returns the population standard deviation (ddof=0).
func StdPop(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	mean := Mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - mean
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(n))
}

// PadLeft zero-fills the front of series up to n entries. Series already
// at least n long are returned unchanged.
func PadLeft(series []float64, n int) []float64 {
	if len(series) >= n {
		return series
	}
	out := make([]float64, n-len(series), n)
	return append(out, series...)
}

// Tail returns the last n entries (the whole series when shorter).
func Tail(series []float64, n int) []float64 {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}
