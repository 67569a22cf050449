package models

// HTTP request models for the reports API. Binding, defaults and
// validation run through pkg/http.ReadAndValidateRequest.

// RunReportRequest triggers a synchronous pipeline run.
type RunReportRequest struct {
	Range  string `query:"range" json:"range" default:"weekly" validate:"oneof=weekly season wellness summary"`
	Format string `query:"format" json:"format" default:"markdown" validate:"oneof=markdown json"`
	Days   int    `query:"days" json:"days" default:"0" validate:"gte=0,lte=90"` // forecast horizon override, 0 = auto
}

// ReportJobRequest enqueues a background pipeline run.
type ReportJobRequest struct {
	Range       string `json:"range" default:"weekly" validate:"oneof=weekly season wellness summary"`
	Format      string `json:"format" default:"markdown" validate:"oneof=markdown json"`
	Days        int    `json:"days" default:"0" validate:"gte=0,lte=90"`
	RequestedBy string `json:"requested_by" default:"api"`
}

// RecentRunsRequest pages through archived runs, newest first.
type RecentRunsRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}

// PhasesRequest asks only for the phase history portion of a run.
type PhasesRequest struct {
	Range string `query:"range" json:"range" default:"season" validate:"oneof=weekly season wellness summary"`
}

// ForecastRequest asks only for the forward projection.
type ForecastRequest struct {
	Range string `query:"range" json:"range" default:"weekly" validate:"oneof=weekly season wellness summary"`
	Days  int    `query:"days" json:"days" default:"0" validate:"gte=0,lte=90"`
}

// MetricsRequest asks only for the derived metric set.
type MetricsRequest struct {
	Range string `query:"range" json:"range" default:"weekly" validate:"oneof=weekly season wellness summary"`
}

// JobAccepted acknowledges an enqueued background run.
type JobAccepted struct {
	JobID  string `json:"jobId"`
	Queued bool   `json:"queued"`
	Range  string `json:"range"`
	Format string `json:"format"`
	Days   int    `json:"days,omitempty"`
}

// PhasesResponse is the phase-history slice of a finished run.
type PhasesResponse struct {
	RunID  string  `json:"runId"`
	Period string  `json:"period"`
	Phases []Phase `json:"phases"`
}

// MetricsResponse is the metrics slice of a finished run.
type MetricsResponse struct {
	RunID   string             `json:"runId"`
	Period  string             `json:"period"`
	Metrics ReportMetrics      `json:"metrics"`
	Zones   []ZoneDistribution `json:"zones,omitempty"`
	Actions []CoachingAction   `json:"actions"`
}

// ForecastResponse is the projection slice of a finished run.
type ForecastResponse struct {
	RunID    string              `json:"runId"`
	Period   string              `json:"period"`
	Forecast *ForecastProjection `json:"forecast,omitempty"`
}
