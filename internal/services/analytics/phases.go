package analytics

import (
	"context"
	"math"
	"time"

	"LoadLedger/internal/domain/models"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/internal/services/features"
	"LoadLedger/pkg/util"
)

// phaseRule is one row of the weekly threshold table. Trend bounds are
// percent; min is exclusive, max exclusive unless maxIncl.
type phaseRule struct {
	trendMin float64
	trendMax float64
	maxIncl  bool
	acwrMax  float64
	riMin    float64
	label    string
}

var phaseRules = []phaseRule{
	{20, inf, false, 1.3, 0, models.PhaseBuild},
	{20, inf, false, inf, 0, models.PhaseOverreached},
	{-inf, -20, false, inf, 0.8, models.PhaseRecovery},
	{-inf, -20, false, inf, 0, models.PhaseTaper},
	{5, 20, true, inf, 0, models.PhaseBase},
}

// PhaseDetector classifies Monday-anchored training weeks and folds
// adjacent identical labels into phases.
type PhaseDetector struct{}

func NewPhaseDetector() *PhaseDetector { return &PhaseDetector{} }

func (d *PhaseDetector) Detect(ctx context.Context, in models.IngestResult) (models.PhaseResult, error) {
	var res models.PhaseResult

	buckets := features.WeeklyBuckets(in.DailyLong)
	if len(buckets) == 0 {
		return res, nil
	}

	loads := make([]float64, len(buckets))
	for i, b := range buckets {
		loads[i] = b.Load
	}
	smoothed := features.EWMA(loads, 2)
	ctl := features.EWMA(loads, 6)
	atl := features.EWMA(loads, 2)

	weeks := make([]models.WeekSample, len(buckets))
	for i, b := range buckets {
		trend := 0.0
		if i > 0 {
			trend = (smoothed[i] - smoothed[i-1]) / (smoothed[i-1] + eps) * 100
		}
		acwr := 1.0
		if ctl[i] != 0 {
			acwr = atl[i] / ctl[i]
		}
		ri := util.Clamp(1-weekMonotony(in.DailyLong, b.Start)/5, 0, 1)
		tsb := ctl[i] - atl[i]

		label, method := classifyWeek(trend, acwr, ri, tsb, b.Load, ctl[i])
		weeks[i] = models.WeekSample{
			Start:         b.Start,
			Load:          util.Round(b.Load, 1),
			TrendPct:      util.Round(trend, 1),
			CTL:           util.Round(ctl[i], 1),
			ATL:           util.Round(atl[i], 1),
			TSB:           util.Round(tsb, 1),
			ACWR:          util.Round(acwr, 2),
			RecoveryRatio: util.Round(ri, 3),
			Label:         label,
			Method:        method,
		}
	}

	res.Weeks = weeks
	res.Phases = promotePeak(mergeWeeks(weeks), weeks[len(weeks)-1])
	return res, nil
}

var _ domsvc.PhaseDetector = (*PhaseDetector)(nil)

// classifyWeek walks the threshold table, then the TSB refinements, then
// falls through to ContinuousLoad.
func classifyWeek(trend, acwr, ri, tsb, load, ctl float64) (string, string) {
	for _, r := range phaseRules {
		inBand := trend > r.trendMin && (trend < r.trendMax || (r.maxIncl && trend == r.trendMax))
		if inBand && acwr <= r.acwrMax && ri >= r.riMin {
			return r.label, "trend_table"
		}
	}
	switch {
	case tsb < -30:
		return models.PhaseOverreached, "tsb_refinement"
	case tsb > 10 && load < 300:
		return models.PhaseRecovery, "tsb_refinement"
	case tsb > 10 && load >= 300 && ctl > 50:
		return models.PhaseTaper, "tsb_refinement"
	case math.Abs(trend) < 5 && math.Abs(tsb) <= 5:
		return models.PhaseBase, "tsb_refinement"
	case tsb >= -30 && tsb < -5 && trend > 10:
		return models.PhaseBuild, "tsb_refinement"
	default:
		return models.PhaseContinuousLoad, "continuous_default"
	}
}

// weekMonotony computes mean over sigma across the seven calendar days of
// one week. Zero spread reads as 1.0.
func weekMonotony(agg models.DailyLoadAggregate, weekStart time.Time) float64 {
	days := make([]float64, 7)
	for i := 0; i < 7; i++ {
		days[i] = agg.Loads[util.DateKey(weekStart.AddDate(0, 0, i))]
	}
	sigma := features.StdPop(days)
	if sigma == 0 {
		return 1.0
	}
	return features.Mean(days) / sigma
}

// mergeWeeks folds consecutive weeks with the same label into phases.
func mergeWeeks(weeks []models.WeekSample) []models.Phase {
	phases := make([]models.Phase, 0, len(weeks))
	for _, w := range weeks {
		end := w.Start.AddDate(0, 0, 6)
		if n := len(phases); n > 0 && phases[n-1].Label == w.Label {
			p := &phases[n-1]
			p.EndDate = end
			p.Weeks++
			p.TotalLoad = util.Round(p.TotalLoad+w.Load, 1)
			p.EndCTL = w.CTL
			p.EndTSB = w.TSB
			p.Method = w.Method
			continue
		}
		phases = append(phases, models.Phase{
			Label:     w.Label,
			StartDate: w.Start,
			EndDate:   end,
			Weeks:     1,
			TotalLoad: w.Load,
			EndCTL:    w.CTL,
			EndTSB:    w.TSB,
			Method:    w.Method,
		})
	}
	return phases
}

// promotePeak appends a Peak phase over the final week when a Build or
// Overreached block flattens out with the load ratio and recovery still
// healthy.
func promotePeak(phases []models.Phase, last models.WeekSample) []models.Phase {
	if len(phases) == 0 {
		return phases
	}
	final := phases[len(phases)-1]
	if final.Label != models.PhaseBuild && final.Label != models.PhaseOverreached {
		return phases
	}
	if math.Abs(last.TrendPct) > 5 || last.ACWR < 1.0 || last.RecoveryRatio < 0.7 {
		return phases
	}
	return append(phases, models.Phase{
		Label:     models.PhasePeak,
		StartDate: last.Start,
		EndDate:   last.Start.AddDate(0, 0, 6),
		Weeks:     1,
		TotalLoad: last.Load,
		EndCTL:    last.CTL,
		EndTSB:    last.TSB,
		Method:    "peak_promotion",
	})
}
