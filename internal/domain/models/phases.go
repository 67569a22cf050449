package models

import "time"

// Training phase labels.
const (
	PhaseBase           = "Base"
	PhaseBuild          = "Build"
	PhasePeak           = "Peak"
	PhaseTaper          = "Taper"
	PhaseRecovery       = "Recovery"
	PhaseOverreached    = "Overreached"
	PhaseContinuousLoad = "Continuous Load"
)

// WeekSample is one classified training week.
type WeekSample struct {
	Start         time.Time `json:"start"` // Monday
	Load          float64   `json:"load"`
	TrendPct      float64   `json:"trendPct"` // smoothed week-over-week change
	CTL           float64   `json:"ctl"`
	ATL           float64   `json:"atl"`
	TSB           float64   `json:"tsb"`
	ACWR          float64   `json:"acwr"`
	RecoveryRatio float64   `json:"recoveryRatio"`
	Label         string    `json:"label"`
	Method        string    `json:"method"` // rule that decided the label
}

// Phase is a run of consecutive weeks sharing a label.
type Phase struct {
	Label     string    `json:"label"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Weeks     int       `json:"weeks"`
	TotalLoad float64   `json:"totalLoad"`
	EndCTL    float64   `json:"endCtl"`
	EndTSB    float64   `json:"endTsb"`
	Method    string    `json:"method"`
}
