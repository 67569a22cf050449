package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"LoadLedger/internal/domain/models"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/internal/services/features"
	"LoadLedger/pkg/util"
)

// Totals divergence beyond these bounds halts the run.
const (
	haltHoursTolerance = 0.1
	haltLoadTolerance  = 2.0
)

// cyclingSports bound the cycling subset summary.
var cyclingSports = map[string]bool{"Ride": true, "VirtualRide": true, "Workout": true}

// IntegrityController recomputes window totals from raw records and
// refuses to continue when they disagree with the acquisition snapshot.
type IntegrityController struct{}

func NewIntegrityController() *IntegrityController { return &IntegrityController{} }

func (c *IntegrityController) Check(ctx context.Context, in models.IngestResult) (models.IntegrityResult, error) {
	var res models.IntegrityResult

	counted := features.CountedRecords(in.Short)
	hours := util.Round(sumHours(counted), 2)
	load := math.Trunc(sumLoad(counted))
	km := util.Round(sumKm(counted), 1)

	if hours == 0 && load == 0 && len(counted) > 0 {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "window totals are zero while records exist")
	} else if math.Abs(hours-in.Snapshot.Hours) > haltHoursTolerance || math.Abs(load-in.Snapshot.Load) > haltLoadTolerance {
		return res, &models.IntegrityHaltError{
			DeltaHours: util.Round(hours-in.Snapshot.Hours, 2),
			DeltaLoad:  load - in.Snapshot.Load,
		}
	}

	res.Totals = models.CanonicalTotals{
		Hours:      hours,
		Load:       load,
		DistanceKm: km,
		EventCount: len(counted),
		Source:     "integrity",
	}
	res.Zones = zoneDistributions(counted, in.Profile)
	res.Cycling = cyclingSummary(counted)
	res.Wellness = wellnessSummary(in.Wellness, in.DailyLong, in.ShortEnd)
	res.Outliers = features.LoadOutliers(in.DailyShort)
	res.Correlation = hrvLoadCorrelation(in.WellnessByDate, in.DailyLong)

	if len(in.Wellness) == 0 {
		res.Warnings = append(res.Warnings, "no wellness rows in window")
	} else {
		// wellness rows arrive date-ascending
		first := in.Wellness[0].Date
		last := in.Wellness[len(in.Wellness)-1].Date
		if last.Before(in.ShortStart) || !first.Before(in.ShortEnd) {
			res.Warnings = append(res.Warnings, "wellness dates do not overlap the activity window")
		}
	}
	return res, nil
}

var _ domsvc.IntegrityController = (*IntegrityController)(nil)

func sumHours(records []models.ActivityRecord) float64 {
	var s float64
	for _, r := range records {
		s += r.MovingTime
	}
	return s / 3600
}

func sumLoad(records []models.ActivityRecord) float64 {
	var s float64
	for _, r := range records {
		s += r.TrainingLoad
	}
	return s
}

func sumKm(records []models.ActivityRecord) float64 {
	var s float64
	for _, r := range records {
		s += r.Distance
	}
	return s / 1000
}

// zoneDistributions tries the zone column sums first, then duration-
// weighted HR binning, then the athlete's static profile. The winning
// strategy name travels on each distribution.
func zoneDistributions(records []models.ActivityRecord, profile models.AthleteProfile) []models.ZoneDistribution {
	var out []models.ZoneDistribution
	for _, modality := range []string{features.ModalityPower, features.ModalityHR, features.ModalityPace} {
		if pct := features.ZonePercents(features.SumZoneSeconds(records, modality)); pct != nil {
			out = append(out, models.ZoneDistribution{Modality: modality, Percent: pct, Source: "zone_columns"})
		}
	}
	if len(out) > 0 {
		return out
	}
	if pct := features.HRBinnedPercents(records, profile.HRZones); pct != nil {
		return []models.ZoneDistribution{{Modality: features.ModalityHR, Percent: pct, Source: "hr_binned"}}
	}
	if len(profile.ZoneProfile) > 0 {
		return []models.ZoneDistribution{{Modality: features.ModalityPower, Percent: profile.ZoneProfile, Source: "athlete_profile"}}
	}
	return nil
}

func cyclingSummary(records []models.ActivityRecord) models.CyclingSummary {
	var cs models.CyclingSummary
	var ifs, hrs, vos []float64
	for _, r := range records {
		if !cyclingSports[r.SportType] {
			continue
		}
		cs.Rides++
		if r.IntensityFactor > 0 {
			ifs = append(ifs, r.IntensityFactor)
		}
		if r.AverageHR > 0 {
			hrs = append(hrs, r.AverageHR)
		}
		if r.VO2Max > 30 {
			vos = append(vos, r.VO2Max)
		}
	}
	cs.AvgIF = util.Round(features.Mean(ifs), 2)
	cs.AvgHR = int(features.Mean(hrs))
	cs.HighAerobicRides = len(vos)
	if len(vos) > 0 {
		cs.VO2Max = util.Round(features.Mean(vos), 1)
	}
	return cs
}

func wellnessSummary(wellness []models.WellnessRecord, daily models.DailyLoadAggregate, today time.Time) models.WellnessSummary {
	if len(wellness) == 0 {
		return models.WellnessSummary{}
	}
	ws := models.WellnessSummary{Defined: true}
	ws.RestingHR7 = util.Round(features.Mean(features.Tail(nonZero(wellness, restingHR), 7)), 1)
	if hrv := nonZero(wellness, hrvValue); len(hrv) >= 2 {
		ws.HRVTrend = util.Round(hrv[len(hrv)-1]-hrv[len(hrv)-2], 1)
	}
	ws.MeanFatigue = util.Round(features.Mean(nonZero(wellness, func(w models.WellnessRecord) float64 { return w.Fatigue })), 1)
	ws.MeanStress = util.Round(features.Mean(nonZero(wellness, func(w models.WellnessRecord) float64 { return w.Stress })), 1)
	ws.MeanReadiness = util.Round(features.Mean(nonZero(wellness, func(w models.WellnessRecord) float64 { return w.Readiness })), 1)
	ws.RestDays = features.RestDays(daily, today)
	for i := len(wellness) - 1; i >= 0; i-- {
		if wellness[i].CTL > 0 || wellness[i].ATL > 0 {
			ws.CTL = wellness[i].CTL
			ws.ATL = wellness[i].ATL
			break
		}
	}
	ws.TSB = util.Round(ws.CTL-ws.ATL, 1)
	return ws
}

func restingHR(w models.WellnessRecord) float64 { return w.RestingHR }
func hrvValue(w models.WellnessRecord) float64  { return w.HRV }

func nonZero(wellness []models.WellnessRecord, pick func(models.WellnessRecord) float64) []float64 {
	out := make([]float64, 0, len(wellness))
	for _, w := range wellness {
		if v := pick(w); v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// hrvLoadCorrelation pairs each morning HRV reading with the previous
// day's load. Five aligned pairs are required.
func hrvLoadCorrelation(byDate map[string]models.WellnessRecord, daily models.DailyLoadAggregate) models.CorrelationMetrics {
	dates := make([]string, 0, len(byDate))
	for k := range byDate {
		dates = append(dates, k)
	}
	sort.Strings(dates)

	var hrv, prevLoad []float64
	for _, key := range dates {
		w := byDate[key]
		if w.HRV <= 0 {
			continue
		}
		day, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		load, ok := daily.Loads[util.DateKey(day.AddDate(0, 0, -1))]
		if !ok {
			continue
		}
		hrv = append(hrv, w.HRV)
		prevLoad = append(prevLoad, load)
	}

	cm := models.CorrelationMetrics{SampleDays: len(hrv), RecoveryFlag: "neutral"}
	if len(hrv) < 5 {
		return cm
	}
	r, ok := features.PearsonCorrelation(prevLoad, hrv)
	if !ok {
		return cm
	}
	cm.Defined = true
	cm.HRVLoadR = util.Round(r, 2)
	switch {
	case r <= -0.5:
		cm.RecoveryFlag = "adaptive"
	case r > -0.3:
		cm.RecoveryFlag = "poor"
	default:
		cm.RecoveryFlag = "neutral"
	}
	return cm
}
