package models

import "time"

// Numeric fields on provider records follow a zero-means-absent convention:
// the provider omits what it does not know and omitted values decode to zero.
// Aggregations skip zeros where a zero would skew the result.

// ActivityRecord is one provider activity normalized to seconds and meters.
type ActivityRecord struct {
	ID              string
	Name            string
	SportType       string // "Ride", "Run", "VirtualRide", ...
	Origin          string // "event" for provider calendar events
	StartLocal      time.Time
	MovingTime      float64 // seconds
	Distance        float64 // meters
	TrainingLoad    float64
	IntensityFactor float64
	AverageHR       float64
	VO2Max          float64
	CTL             float64 // provider fitness snapshot at activity time
	ATL             float64
	PowerZones      []float64 // seconds per zone, ascending
	HRZones         []float64
	PaceZones       []float64
}

// EndLocal returns the activity end time derived from the moving duration.
func (a ActivityRecord) EndLocal() time.Time {
	return a.StartLocal.Add(time.Duration(a.MovingTime * float64(time.Second)))
}

// WellnessRecord holds at most one row per calendar date.
type WellnessRecord struct {
	Date      time.Time
	RestingHR float64
	HRV       float64
	CTL       float64
	ATL       float64
	Fatigue   float64
	Stress    float64
	Readiness float64
}

// AthleteProfile is the provider's athlete configuration.
type AthleteProfile struct {
	ID          string
	Name        string
	Timezone    string
	Source      string    // "api", "cache", "mock", "sandbox"
	FTP         float64
	LTHR        float64
	MaxHR       float64
	HRZones     []float64 // ascending bpm upper bounds
	ZoneProfile []float64 // static percent split per zone
}

// PlannedEvent is a calendar entry with an expected load.
type PlannedEvent struct {
	Date         time.Time
	Name         string
	ExpectedLoad float64
}
