package models

import "time"

// Stage inputs and outputs are plain values handed between stages by the
// orchestrator. No stage sees another stage's internals.

// IngestResult is the normalized dataset bundle a run works from.
type IngestResult struct {
	ReportType string
	AthleteID  string
	Timezone   string

	ShortStart time.Time
	ShortEnd   time.Time
	LongStart  time.Time
	LongEnd    time.Time

	Short          []ActivityRecord // detail window, deduplicated, unit-normalized
	Long           []ActivityRecord // trend window
	Wellness       []WellnessRecord // ascending by date
	WellnessByDate map[string]WellnessRecord
	Profile        AthleteProfile
	Planned        []PlannedEvent

	Snapshot   SnapshotTotals // provider-facing totals for the detail window
	DailyShort DailyLoadAggregate
	DailyLong  DailyLoadAggregate

	DataSource    string            // acquisition strategy that won the detail fetch
	ChosenSources map[string]string // dataset -> strategy, for the audit footer
	Degraded      bool
	Warnings      []string
}

// IntegrityResult carries the recomputed totals and window descriptions
// that survived the totals cross-check.
type IntegrityResult struct {
	Totals      CanonicalTotals // unlocked; the reconciler seals it
	Zones       []ZoneDistribution
	Cycling     CyclingSummary
	Wellness    WellnessSummary
	Outliers    []LoadOutlier
	Correlation CorrelationMetrics
	Degraded    bool // zero totals with records present
	Warnings    []string
}

// MetricsResult is the full classified metric set for the window.
type MetricsResult struct {
	Metrics  ReportMetrics
	Warnings []string
}

// ReconcileResult holds the sealed totals and the event evidence behind them.
type ReconcileResult struct {
	Totals      CanonicalTotals // locked
	EventTotals SnapshotTotals  // filtered calendar-event view
	Events      []EventSummary
	Diagnostic  string // populated when the event view was adopted
}

// PhaseResult is the detected phase history.
type PhaseResult struct {
	Weeks  []WeekSample
	Phases []Phase
}

// ForecastResult wraps the forward projection.
type ForecastResult struct {
	Projection ForecastProjection
}

// GateResult is the validation gate's verdict.
type GateResult struct {
	Compliance ComplianceLog
}
