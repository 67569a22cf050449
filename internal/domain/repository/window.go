package repository

// ReportType selects the analysis window preset.
type ReportType string

const (
	ReportWeekly   ReportType = "weekly"
	ReportSeason   ReportType = "season"
	ReportWellness ReportType = "wellness"
	ReportSummary  ReportType = "summary"
)

// IsValidReportType returns true if rt is a supported report type.
func IsValidReportType(rt ReportType) bool {
	switch rt {
	case ReportWeekly, ReportSeason, ReportWellness, ReportSummary:
		return true
	default:
		return false
	}
}

// DefaultReportType returns the default report type.
func DefaultReportType() ReportType { return ReportWeekly }

// NormalizeReportType converts a raw string to a valid report type (or default).
func NormalizeReportType(s string) ReportType {
	if s == "" {
		return DefaultReportType()
	}
	rt := ReportType(s)
	if IsValidReportType(rt) {
		return rt
	}
	return DefaultReportType()
}

// ReportWindow fixes the lookback spans a run analyses. The short window
// feeds detail sections, the long window feeds trends, the wellness window
// feeds recovery context.
type ReportWindow struct {
	Type         ReportType
	ShortDays    int
	LongDays     int
	WellnessDays int
	EWMABase     int  // base span for acute/chronic smoothing
	LightDetail  bool // fetch the reduced activity payload
}

// WindowFor returns the window preset for a report type.
func WindowFor(rt ReportType) ReportWindow {
	switch rt {
	case ReportSeason:
		return ReportWindow{Type: rt, ShortDays: 90, LongDays: 90, WellnessDays: 90, EWMABase: 42, LightDetail: true}
	case ReportWellness:
		return ReportWindow{Type: rt, ShortDays: 7, LongDays: 28, WellnessDays: 42, EWMABase: 7}
	case ReportSummary:
		return ReportWindow{Type: rt, ShortDays: 7, LongDays: 28, WellnessDays: 42, EWMABase: 7}
	default:
		return ReportWindow{Type: ReportWeekly, ShortDays: 7, LongDays: 28, WellnessDays: 42, EWMABase: 7}
	}
}

// AcuteSpan is the EWMA span for the acute (fatigue) series.
func (w ReportWindow) AcuteSpan() int {
	if s := w.EWMABase / 2; s > 7 {
		return s
	}
	return 7
}

// ChronicSpan is the EWMA span for the chronic (fitness) series.
func (w ReportWindow) ChronicSpan() int {
	if s := int(float64(w.EWMABase) * 1.33); s > 28 {
		return s
	}
	return 28
}
