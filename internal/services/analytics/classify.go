package analytics

import (
	"math"

	"LoadLedger/internal/domain/models"
)

// rule is one row of an ordered classification ladder. A value matches the
// first row whose upper bound it does not exceed; the final row usually
// carries +Inf. Values matching no row classify as "undefined".
type rule struct {
	upTo  float64
	incl  bool // bound is inclusive
	label string
	reads string // interpretation
	does  string // coaching implication
}

func classify(name string, value float64, rules []rule) models.DerivedMetric {
	for _, r := range rules {
		if (r.incl && value <= r.upTo) || (!r.incl && value < r.upTo) {
			return models.DerivedMetric{
				Name:           name,
				Value:          value,
				Defined:        true,
				Classification: r.label,
				Interpretation: r.reads,
				Implication:    r.does,
			}
		}
	}
	return models.DerivedMetric{Name: name, Value: value, Defined: true, Classification: "undefined"}
}

// undefinedMetric marks a metric the series cannot support. Legal state,
// never an error.
func undefinedMetric(name, reason string) models.DerivedMetric {
	return models.DerivedMetric{Name: name, Defined: false, Classification: "undefined", Interpretation: reason}
}

var inf = math.Inf(1)

var acwrRules = []rule{
	{0.8, false, "recovery", "acute load well below chronic base", "room to add load"},
	{1.3, true, "productive", "load progression inside the adaptive band", "hold the current build"},
	{1.5, true, "caution", "acute load rising faster than the base", "watch the next sessions closely"},
	{inf, true, "overload", "acute spike beyond the chronic base", "cut load and recover"},
}

var monotonyRules = []rule{
	{2.0, true, "optimal", "daily loads vary enough", "keep alternating hard and easy days"},
	{2.5, true, "moderate", "training is getting repetitive", "insert an easy or rest day"},
	{inf, true, "high", "same stimulus day after day", "break the pattern before it breaks you"},
}

var strainRules = []rule{
	{600, false, "optimal", "weekly strain within absorbable range", "no change needed"},
	{800, true, "moderate", "strain approaching the tolerance edge", "plan recovery within the week"},
	{inf, true, "high", "strain beyond sustainable levels", "reduce volume now"},
}

var fatigueTrendRules = []rule{
	{-10, false, "fresh", "load trending meaningfully down", "good spot for quality work"},
	{10, true, "balanced", "load roughly steady", "progress as planned"},
	{25, true, "accumulating", "fatigue building week over week", "schedule an unload week soon"},
	{inf, true, "high", "rapid fatigue accumulation", "unload immediately"},
}

var stressToleranceRules = []rule{
	{3, false, "low", "little headroom for extra stress", "keep intensity conservative"},
	{6, true, "optimal", "stress and recovery in balance", "capacity for planned intensity"},
	{inf, true, "high", "high tolerance, likely underloaded", "consider progressing load"},
}

var recoveryIndexRules = []rule{
	{0.7, false, "low", "recovery lagging behind load", "prioritize sleep and easy days"},
	{0.8, false, "moderate", "recovery adequate but thin", "guard the easy days"},
	{inf, true, "optimal", "recovering well between sessions", "sustain current rhythm"},
}

var fatOxEffRules = []rule{
	{0.5, false, "low", "fat oxidation underdeveloped", "add long low-intensity work"},
	{0.6, false, "moderate", "aerobic economy developing", "extend zone 2 volume"},
	{0.8, true, "optimal", "strong fat oxidation", "maintain aerobic base"},
}

var fatOxIndexRules = []rule{
	{50, false, "low", "carbohydrate-dominant metabolism", "build the aerobic base"},
	{70, false, "moderate", "mixed substrate use", "more steady low-intensity riding"},
	{inf, true, "optimal", "fat-adapted engine", "base is solid"},
}

var carbUtilRules = []rule{
	{20, false, "low", "very low glycolytic contribution", "some intensity would help"},
	{60, true, "balanced", "substrate use balanced", "no change needed"},
	{80, true, "elevated", "heavy carbohydrate reliance", "check fueling and easy-day discipline"},
	{inf, true, "high", "glycolytic system dominating", "rebuild the aerobic base"},
}

var glycolyticRateRules = []rule{
	{1.2, false, "low", "minimal glycolytic stimulus", "add threshold work if peaking soon"},
	{1.5, false, "moderate", "moderate glycolytic engagement", "fine for base phases"},
	{2.1, true, "optimal", "productive intensity mix", "hold the distribution"},
	{inf, true, "high", "intensity dominating the week", "rebalance toward easy volume"},
}

var metabolicScoreRules = []rule{
	{10, false, "low", "economy poor relative to intensity", "slow down the easy days"},
	{20, false, "moderate", "economy acceptable", "keep building"},
	{inf, true, "optimal", "efficient engine for the intensity used", "race-ready economy"},
}

var zoneQualityRules = []rule{
	{5, false, "low", "almost no high-intensity time", "sprinkle in short hard efforts"},
	{15, true, "optimal", "healthy high-intensity share", "distribution on target"},
	{25, true, "high", "large high-intensity share", "verify recovery keeps up"},
	{inf, true, "excessive", "high-intensity share unsustainable", "cut intensity before injury"},
}

var polarisationRules = []rule{
	{0.35, false, "threshold", "training clustered at threshold", "push sessions apart: easier easy, harder hard"},
	{0.7, false, "z2_base", "middle-zone dominant", "acceptable for base blocks"},
	{1.0, false, "mixed", "moving toward polarised", "sharpen the session split"},
	{inf, true, "polarised", "clear polarised distribution", "textbook split, keep it"},
}

var polarisationIndexRules = []rule{
	{0.6, false, "intensity_focused", "intensity-heavy distribution", "add low-intensity volume"},
	{0.75, false, "mixed", "balanced aerobic share", "acceptable in build phases"},
	{inf, true, "aerobic", "aerobic-dominant distribution", "ideal for base development"},
}
