package features

import (
	"LoadLedger/internal/domain/models"
	"LoadLedger/pkg/util"
)

// Zone second columns per modality.
const (
	ModalityPower = "power"
	ModalityHR    = "hr"
	ModalityPace  = "pace"
)

// SumZoneSeconds adds the per-zone second columns across records for one
// modality. Ragged rows extend the result. Nil when no record carries the
// modality.
func SumZoneSeconds(records []models.ActivityRecord, modality string) []float64 {
	var out []float64
	for _, r := range records {
		var zones []float64
		switch modality {
		case ModalityPower:
			zones = r.PowerZones
		case ModalityHR:
			zones = r.HRZones
		case ModalityPace:
			zones = r.PaceZones
		}
		for i, v := range zones {
			if i >= len(out) {
				out = append(out, 0)
			}
			out[i] += v
		}
	}
	return out
}

// ZonePercents converts summed zone seconds to per-zone percentages,
// rounded to 1 dp. Nil when the total is zero.
func ZonePercents(seconds []float64) []float64 {
	total := 0.0
	for _, s := range seconds {
		total += s
	}
	if total <= 0 {
		return nil
	}
	out := make([]float64, len(seconds))
	for i, s := range seconds {
		out[i] = util.Round(s/total*100, 1)
	}
	return out
}

// HRBinnedPercents distributes moving time across HR zones by binning each
// record's average heart rate against ascending zone upper bounds. The
// lowest bin is open below the first bound, the highest open above the
// last. Nil when no record qualifies.
func HRBinnedPercents(records []models.ActivityRecord, bounds []float64) []float64 {
	if len(bounds) == 0 {
		return nil
	}
	seconds := make([]float64, len(bounds)+1)
	total := 0.0
	for _, r := range records {
		if r.AverageHR <= 0 || r.MovingTime <= 0 {
			continue
		}
		bin := len(bounds)
		for i, upper := range bounds {
			if r.AverageHR <= upper {
				bin = i
				break
			}
		}
		seconds[bin] += r.MovingTime
		total += r.MovingTime
	}
	if total <= 0 {
		return nil
	}
	out := make([]float64, len(seconds))
	for i, s := range seconds {
		out[i] = util.Round(s/total*100, 1)
	}
	return out
}
