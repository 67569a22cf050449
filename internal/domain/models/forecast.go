package models

import "time"

// Projected short-term states, keyed off the projected TSB at horizon end.
const (
	ProjectedRecovery     = "recovery"
	ProjectedProductive   = "productive"
	ProjectedOverreaching = "overreaching"
)

// DailyProjection is one simulated day of the fitness model.
type DailyProjection struct {
	Date time.Time `json:"date"`
	Load float64   `json:"load"`
	CTL  float64   `json:"ctl"`
	ATL  float64   `json:"atl"`
	TSB  float64   `json:"tsb"`
}

// ForecastProjection simulates CTL, ATL and TSB forward from the present
// using planned events as the future load schedule.
type ForecastProjection struct {
	HorizonDays    int               `json:"horizonDays"`
	Daily          []DailyProjection `json:"daily"`
	ProjectedPhase string            `json:"projectedPhase"`
	LoadTrend      string            `json:"loadTrend"` // "increasing", "declining", "stable"
	SeedSource     string            `json:"seedSource"` // "wellness", "event", "default"
	PlannedCount   int               `json:"plannedCount"`
}
