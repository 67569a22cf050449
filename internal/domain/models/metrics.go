package models

// Canonical derived metric names as they appear in reports and archives.
const (
	MetricACWR            = "acwr"
	MetricMonotony        = "monotony"
	MetricStrain          = "strain"
	MetricFatigueTrend    = "fatigue_trend"
	MetricPolarisation    = "polarisation"
	MetricPolarisationIdx = "polarisation_index"
	MetricRecoveryIndex   = "recovery_index"
	MetricStressTol       = "stress_tolerance"
	MetricFatOxEff        = "fat_ox_efficiency"
	MetricFatOxIndex      = "fat_ox_index"
	MetricCarbUtil        = "carb_utilisation_ratio"
	MetricGlycolyticRate  = "glycolytic_rate"
	MetricMetabolicScore  = "metabolic_efficiency_score"
	MetricZoneQuality     = "zone_quality_index"
)

// DerivedMetric is a computed training indicator together with its
// classification. Instances are built once by the metrics stage and never
// reclassified afterwards.
type DerivedMetric struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Defined        bool    `json:"defined"` // false when the series cannot support the metric
	Classification string  `json:"classification,omitempty"`
	Interpretation string  `json:"interpretation,omitempty"`
	Implication    string  `json:"implication,omitempty"`
	Source         string  `json:"source,omitempty"` // producing strategy for chain-derived metrics
}

// LoadMetrics are the authoritative fitness and fatigue figures taken from
// provider wellness data, not recomputed locally.
type LoadMetrics struct {
	CTL        float64 `json:"ctl"`
	ATL        float64 `json:"atl"`
	TSB        float64 `json:"tsb"`
	WeeklyLoad float64 `json:"weeklyLoad"`
	Source     string  `json:"source"` // "wellness" or "estimated"
}

// AdaptationMetrics describe how the athlete is absorbing the load.
type AdaptationMetrics struct {
	StressTolerance float64 `json:"stressTolerance"`
	RecoveryIndex   float64 `json:"recoveryIndex"`
	FormState       string  `json:"formState"` // "fresh", "neutral", "fatigued"
}

// TrendMetrics summarize load direction over the window.
type TrendMetrics struct {
	FatigueTrendPct float64 `json:"fatigueTrendPct"`
	Defined         bool    `json:"defined"`
	Method          string  `json:"method"` // "mean_blocks", "ewma_ratio"
	Direction       string  `json:"direction"`
}

// CorrelationMetrics relate morning HRV to the previous day's load.
type CorrelationMetrics struct {
	HRVLoadR     float64 `json:"hrvLoadR"`
	SampleDays   int     `json:"sampleDays"`
	Defined      bool    `json:"defined"`
	RecoveryFlag string  `json:"recoveryFlag"` // "adaptive", "neutral", "poor"
}

// ReportMetrics groups every metric view carried by a report.
type ReportMetrics struct {
	Derived     []DerivedMetric    `json:"derived"`
	Load        LoadMetrics        `json:"load"`
	Adaptation  AdaptationMetrics  `json:"adaptation"`
	Trend       TrendMetrics       `json:"trend"`
	Correlation CorrelationMetrics `json:"correlation"`
}

// Metric returns the named derived metric and whether it is present.
func (m ReportMetrics) Metric(name string) (DerivedMetric, bool) {
	for _, d := range m.Derived {
		if d.Name == name {
			return d, true
		}
	}
	return DerivedMetric{}, false
}
