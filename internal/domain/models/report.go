package models

import "time"

// ReportHeader identifies the report and its subject.
type ReportHeader struct {
	Title       string    `json:"title"`
	Athlete     string    `json:"athlete"`
	AthleteID   string    `json:"athleteId"`
	Timezone    string    `json:"timezone"`
	ReportType  string    `json:"reportType"`
	Period      string    `json:"period"` // "2026-07-24 .. 2026-08-21"
	GeneratedAt time.Time `json:"generatedAt"`
}

// ReportSummary carries the canonical window totals. The values here are
// copied from CanonicalTotals after the reconciler locks them.
type ReportSummary struct {
	TotalHours float64 `json:"totalHours"`
	TotalLoad  float64 `json:"totalLoad"`
	DistanceKm float64 `json:"distanceKm"`
	EventCount int     `json:"eventCount"`
	Period     string  `json:"period"`
}

// CoachingAction is a prioritized recommendation tied to one metric.
type CoachingAction struct {
	Priority string `json:"priority"` // "high", "medium", "low"
	Metric   string `json:"metric"`
	Advice   string `json:"advice"`
}

// EventSummary is one row of the recent-activity preview.
type EventSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SportType  string    `json:"sportType"`
	Start      time.Time `json:"start"`
	Hours      float64   `json:"hours"`
	Load       float64   `json:"load"`
	DistanceKm float64   `json:"distanceKm"`
}

// WellnessSummary condenses the wellness window for the report body. Its
// CTL and ATL are the authoritative figures for later stages.
type WellnessSummary struct {
	Defined       bool    `json:"defined"`
	RestingHR7    float64 `json:"restingHr7"`
	HRVTrend      float64 `json:"hrvTrend"` // last minus previous reading
	MeanFatigue   float64 `json:"meanFatigue"`
	MeanStress    float64 `json:"meanStress"`
	MeanReadiness float64 `json:"meanReadiness"`
	RestDays      int     `json:"restDays"` // days with load < 1
	CTL           float64 `json:"ctl"`
	ATL           float64 `json:"atl"`
	TSB           float64 `json:"tsb"`
}

// CyclingSummary describes the cycling subset of the window.
type CyclingSummary struct {
	Rides            int     `json:"rides"`
	AvgIF            float64 `json:"avgIf"`
	AvgHR            int     `json:"avgHr"`
	HighAerobicRides int     `json:"highAerobicRides"` // VO2max estimate above 30
	VO2Max           float64 `json:"vo2max"`           // mean over those rides
}

// LoadOutlier is a day whose load sits outside 1.5 sigma of the window mean.
type LoadOutlier struct {
	Date      string  `json:"date"`
	Load      float64 `json:"load"`
	Direction string  `json:"direction"` // "high" or "low"
}

// ReportFooter records provenance for auditability.
type ReportFooter struct {
	AuditPrecision string            `json:"auditPrecision"` // "full" or "degraded"
	DataSource     string            `json:"dataSource"`
	Validated      bool              `json:"validated"`
	ChosenSources  map[string]string `json:"chosenSources,omitempty"` // dataset -> strategy
	Warnings       []string          `json:"warnings,omitempty"`
}

// ComplianceLog is the audit record produced by the validation gate.
type ComplianceLog struct {
	Framework        string    `json:"framework"`
	ReportType       string    `json:"report_type"`
	RunID            string    `json:"run_id"`
	ValidationStatus string    `json:"validation_status"` // "passed" or "failed"
	CheckedSections  []string  `json:"checked_sections"`
	VerifiedMetrics  []string  `json:"verified_metrics"`
	VarianceOK       bool      `json:"variance_ok"`
	CheckedAt        time.Time `json:"checked_at"`
}

// ReportEnvelope is the complete validated report artifact. Its JSON form
// is what the archive stores and the API returns.
type ReportEnvelope struct {
	Header     ReportHeader        `json:"header"`
	Summary    ReportSummary       `json:"summary"`
	Metrics    ReportMetrics       `json:"metrics"`
	Zones      []ZoneDistribution  `json:"zones,omitempty"`
	Phases     []Phase             `json:"phases"`
	Actions    []CoachingAction    `json:"actions"`
	Wellness   *WellnessSummary    `json:"wellness,omitempty"`
	Cycling    *CyclingSummary     `json:"cycling,omitempty"`
	Outliers   []LoadOutlier       `json:"outliers,omitempty"`
	Forecast   *ForecastProjection `json:"forecast,omitempty"`
	Events     []EventSummary      `json:"events,omitempty"`
	Footer     ReportFooter        `json:"footer"`
	Compliance ComplianceLog       `json:"compliance"`
}
