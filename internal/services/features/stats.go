package features

import (
	"math"

	"LoadLedger/internal/domain/models"
)

// PearsonCorrelation computes Pearson's r over paired samples. The second
// return is false when fewer than two pairs exist or either side has zero
// variance.
func PearsonCorrelation(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

// LoadOutliers flags days whose load falls outside mean ± 1.5 sigma of the
// aggregate. Nil when the spread is zero.
func LoadOutliers(agg models.DailyLoadAggregate) []models.LoadOutlier {
	series := agg.Series()
	if len(series) < 3 {
		return nil
	}
	mean := Mean(series)
	sigma := StdPop(series)
	if sigma == 0 {
		return nil
	}
	lo, hi := mean-1.5*sigma, mean+1.5*sigma
	var out []models.LoadOutlier
	for _, date := range agg.Dates() {
		load := agg.Loads[date]
		switch {
		case load > hi:
			out = append(out, models.LoadOutlier{Date: date, Load: load, Direction: "high"})
		case load < lo:
			out = append(out, models.LoadOutlier{Date: date, Load: load, Direction: "low"})
		}
	}
	return out
}
