package analytics

import (
	"context"
	"time"

	"LoadLedger/internal/domain/models"
	"LoadLedger/internal/domain/repository"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/internal/services/features"
	"LoadLedger/pkg/util"
)

const eps = 1e-6

// MetricsEngine computes the derived metric set over the long-window
// daily load series and freezes each value with its classification.
type MetricsEngine struct{}

func NewMetricsEngine() *MetricsEngine { return &MetricsEngine{} }

func (e *MetricsEngine) Compute(ctx context.Context, in models.IngestResult, integ models.IntegrityResult) (models.MetricsResult, error) {
	var res models.MetricsResult
	window := repository.WindowFor(repository.ReportType(in.ReportType))

	observed := in.DailyLong.Series()
	padded := features.PadLeft(observed, 28)

	acwr := 1.0
	acute := features.EWMALast(padded, window.AcuteSpan())
	chronic := features.EWMALast(padded, window.ChronicSpan())
	if chronic != 0 {
		acwr = acute / chronic
	}

	// Monotony reads the last seven calendar days; rest days are real
	// zero observations, not gaps.
	daily := features.PadLeft(features.DailySeries(in.DailyLong), 28)
	last7 := features.Tail(daily, 7)
	mean7 := features.Mean(last7)
	sigma7 := features.StdPop(last7)
	monotony := 1.0
	strain := mean7
	if sigma7 != 0 {
		monotony = mean7 / sigma7
		strain = mean7 * monotony
	}

	trend := fatigueTrendMetric(observed)
	pol, polIdx := polarisationMetrics(integ.Zones, in.Short)
	recovery := util.Clamp(1-monotony/5, 0, 1)
	stressTol := util.Clamp((strain/(monotony+eps))/100, 2, 8)

	derived := []models.DerivedMetric{
		classify(models.MetricACWR, util.Round(acwr, 2), acwrRules),
		classify(models.MetricMonotony, util.Round(monotony, 2), monotonyRules),
		classify(models.MetricStrain, util.Round(strain, 1), strainRules),
		trend,
		pol,
	}
	if polIdx != nil {
		derived = append(derived, *polIdx)
	}
	derived = append(derived,
		classify(models.MetricRecoveryIndex, util.Round(recovery, 3), recoveryIndexRules),
		classify(models.MetricStressTol, util.Round(stressTol, 2), stressToleranceRules),
	)

	metabolic, ifDefaulted := metabolicMetrics(in.Short)
	derived = append(derived, metabolic...)
	derived = append(derived, classify(models.MetricZoneQuality, zoneQualityIndex(in.Short, integ.Zones), zoneQualityRules))

	res.Metrics.Derived = derived
	res.Metrics.Load = loadMetrics(integ.Wellness, in, acute, chronic, &res.Warnings)
	res.Metrics.Adaptation = models.AdaptationMetrics{
		StressTolerance: util.Round(stressTol, 2),
		RecoveryIndex:   util.Round(recovery, 3),
		FormState:       formState(res.Metrics.Load.TSB),
	}
	res.Metrics.Trend = models.TrendMetrics{
		FatigueTrendPct: trend.Value,
		Defined:         trend.Defined,
		Method:          trend.Source,
		Direction:       trendDirection(trend),
	}
	res.Metrics.Correlation = integ.Correlation

	if ifDefaulted {
		res.Warnings = append(res.Warnings, "no intensity factors in window; metabolic indices use the default proxy")
	}
	if pol.Source == "if_proxy" {
		res.Warnings = append(res.Warnings, "polarisation derived from intensity-factor proxy")
	}
	if len(integ.Zones) > 0 && integ.Zones[0].Source == "hr_binned" {
		res.Warnings = append(res.Warnings, "zone distribution derived from binned heart rate")
	}
	return res, nil
}

var _ domsvc.MetricsEngine = (*MetricsEngine)(nil)

// fatigueTrendMetric compares the last week against the last four. With
// 14 to 27 observed days it falls back to an EWMA ratio; with fewer the
// metric is undefined.
func fatigueTrendMetric(observed []float64) models.DerivedMetric {
	n := len(observed)
	switch {
	case n >= 28:
		m7 := features.Mean(features.Tail(observed, 7))
		m28 := features.Mean(features.Tail(observed, 28))
		m := classify(models.MetricFatigueTrend, util.Round((m7-m28)/(m28+eps)*100, 1), fatigueTrendRules)
		m.Source = "mean_blocks"
		return m
	case n >= 14:
		e7 := features.EWMALast(observed, 7)
		e14 := features.EWMALast(observed, 14)
		m := classify(models.MetricFatigueTrend, util.Round((e7-e14)/(e14+eps)*100, 1), fatigueTrendRules)
		m.Source = "ewma_ratio"
		return m
	default:
		return undefinedMetric(models.MetricFatigueTrend, "fewer than 14 observed days")
	}
}

// preferredZones picks the power distribution when present, then hr, then
// whatever came first.
func preferredZones(zones []models.ZoneDistribution) []float64 {
	for _, modality := range []string{features.ModalityPower, features.ModalityHR} {
		for _, z := range zones {
			if z.Modality == modality {
				return z.Percent
			}
		}
	}
	if len(zones) > 0 {
		return zones[0].Percent
	}
	return nil
}

// polarisationMetrics computes the Seiler ratio with its fallback chain,
// plus the separate normalized index when zones exist.
func polarisationMetrics(zones []models.ZoneDistribution, records []models.ActivityRecord) (models.DerivedMetric, *models.DerivedMetric) {
	pct := preferredZones(zones)
	var idx *models.DerivedMetric
	if len(pct) >= 3 {
		z1, z2, z3 := pct[0], pct[1], pct[2]
		if denom := z1 + z2 + z3; denom > 0 {
			m := classify(models.MetricPolarisationIdx, util.Round((z1+z2)/denom, 3), polarisationIndexRules)
			m.Source = "zone_distribution"
			idx = &m
		}
		if z2 > 0 && (z1 > 0 || z3 > 0) {
			m := classify(models.MetricPolarisation, util.Round((z1+z3)/(2*z2), 3), polarisationRules)
			m.Source = "seiler_ratio"
			return m, idx
		}
		if idx != nil {
			m := classify(models.MetricPolarisation, idx.Value, polarisationRules)
			m.Source = "normalized_index"
			return m, idx
		}
	}

	var below, total float64
	for _, r := range records {
		f := normalizeIF(r.IntensityFactor)
		if f <= 0 || r.MovingTime <= 0 {
			continue
		}
		total += r.MovingTime
		if f < 0.85 {
			below += r.MovingTime
		}
	}
	if total > 0 {
		m := classify(models.MetricPolarisation, util.Round(below/total, 3), polarisationRules)
		m.Source = "if_proxy"
		return m, idx
	}
	m := classify(models.MetricPolarisation, 0, polarisationRules)
	m.Source = "none"
	return m, idx
}

// normalizeIF maps percent-scale intensity factors onto the 0..~1.2 scale.
func normalizeIF(f float64) float64 {
	if f > 10 {
		return f / 100
	}
	return f
}

// metabolicMetrics derives the substrate-use family from mean intensity.
// The second return reports whether the default proxy was used.
func metabolicMetrics(records []models.ActivityRecord) ([]models.DerivedMetric, bool) {
	var ifs []float64
	for _, r := range records {
		if f := normalizeIF(r.IntensityFactor); f > 0 {
			ifs = append(ifs, f)
		}
	}
	meanIF := 0.7
	defaulted := len(ifs) == 0
	if !defaulted {
		meanIF = features.Mean(ifs)
	}

	fatOx := util.Clamp(meanIF*0.9, 0.3, 0.8)
	foxi := util.Round(fatOx*100, 1)
	gr := meanIF * 2.4
	source := "if_mean"
	if defaulted {
		source = "default_if"
	}

	out := []models.DerivedMetric{
		classify(models.MetricFatOxEff, util.Round(fatOx, 3), fatOxEffRules),
		classify(models.MetricFatOxIndex, foxi, fatOxIndexRules),
		classify(models.MetricCarbUtil, util.Round(100-foxi, 1), carbUtilRules),
		classify(models.MetricGlycolyticRate, util.Round(gr, 2), glycolyticRateRules),
		classify(models.MetricMetabolicScore, util.Round(fatOx*60/(gr+eps), 1), metabolicScoreRules),
	}
	for i := range out {
		out[i].Source = source
	}
	return out, defaulted
}

// zoneQualityIndex is the share of time in the three highest zones.
func zoneQualityIndex(records []models.ActivityRecord, zones []models.ZoneDistribution) float64 {
	for _, modality := range []string{features.ModalityPower, features.ModalityHR} {
		secs := features.SumZoneSeconds(records, modality)
		var total, high float64
		for i, v := range secs {
			total += v
			if i >= 4 && i <= 6 {
				high += v
			}
		}
		if total > 0 {
			return util.Round(high/total*100, 1)
		}
	}
	if pct := preferredZones(zones); len(pct) > 4 {
		var high float64
		for i := 4; i < len(pct) && i <= 6; i++ {
			high += pct[i]
		}
		return util.Round(high, 1)
	}
	return 0
}

// loadMetrics takes CTL/ATL from wellness when present and otherwise
// estimates them from the load EWMAs.
func loadMetrics(ws models.WellnessSummary, in models.IngestResult, acute, chronic float64, warnings *[]string) models.LoadMetrics {
	lm := models.LoadMetrics{
		WeeklyLoad: util.Round(lastNDaysLoad(in.DailyLong, in.ShortEnd, 7), 1),
	}
	if ws.Defined && (ws.CTL > 0 || ws.ATL > 0) {
		lm.CTL = ws.CTL
		lm.ATL = ws.ATL
		lm.TSB = util.Round(ws.CTL-ws.ATL, 1)
		lm.Source = "wellness"
		return lm
	}
	lm.CTL = util.Round(chronic, 1)
	lm.ATL = util.Round(acute, 1)
	lm.TSB = util.Round(chronic-acute, 1)
	lm.Source = "estimated"
	*warnings = append(*warnings, "wellness CTL/ATL missing; estimated from load smoothing")
	return lm
}

func lastNDaysLoad(agg models.DailyLoadAggregate, end time.Time, n int) float64 {
	var sum float64
	day := util.DayFloor(end)
	for i := 0; i < n; i++ {
		day = day.AddDate(0, 0, -1)
		sum += agg.Loads[util.DateKey(day)]
	}
	return sum
}

func formState(tsb float64) string {
	switch {
	case tsb > 10:
		return "fresh"
	case tsb < -10:
		return "fatigued"
	default:
		return "neutral"
	}
}

func trendDirection(trend models.DerivedMetric) string {
	if !trend.Defined {
		return "unknown"
	}
	switch {
	case trend.Value > 1:
		return "increasing"
	case trend.Value < -1:
		return "declining"
	default:
		return "stable"
	}
}
