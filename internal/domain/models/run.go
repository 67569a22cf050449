package models

import "time"

// Pipeline stage names, in execution order.
const (
	StageIngest    = "ingest"
	StageIntegrity = "integrity"
	StageMetrics   = "metrics"
	StageReconcile = "reconcile"
	StagePhases    = "phases"
	StageForecast  = "forecast"
	StageValidate  = "validate"
	StageRender    = "render"
)

// Audit precision levels.
const (
	PrecisionFull     = "full"
	PrecisionDegraded = "degraded"
)

// RunContext is the orchestrator's mutable record of a single pipeline
// run. Stages never touch it; the orchestrator writes it between stages.
type RunContext struct {
	RunID      string
	ReportType string
	Format     string
	AthleteID  string
	StartedAt  time.Time

	AuditPrecision string
	DataSource     string
	ChosenSources  map[string]string
	Warnings       []string
}

// NewRunContext starts a run at full precision.
func NewRunContext(runID, reportType, format string) *RunContext {
	return &RunContext{
		RunID:          runID,
		ReportType:     reportType,
		Format:         format,
		StartedAt:      time.Now().UTC(),
		AuditPrecision: PrecisionFull,
		ChosenSources:  make(map[string]string),
	}
}

// Degrade lowers the run to degraded precision and records why.
func (r *RunContext) Degrade(reason string) {
	r.AuditPrecision = PrecisionDegraded
	r.Warn(reason)
}

// Warn appends a soft warning to the run.
func (r *RunContext) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// ChooseSource records which strategy produced a dataset.
func (r *RunContext) ChooseSource(dataset, strategy string) {
	r.ChosenSources[dataset] = strategy
}

// RunEvent is one progress notification emitted while a run executes.
type RunEvent struct {
	RunID   string    `json:"run_id"`
	Stage   string    `json:"stage"`
	Level   string    `json:"level"` // "info", "warn", "error"
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// RunRecord is the archive's view of a completed or failed run.
type RunRecord struct {
	RunID          string        `json:"runId"`
	ReportType     string        `json:"reportType"`
	Format         string        `json:"format"`
	Status         string        `json:"status"` // "completed", "failed"
	AuditPrecision string        `json:"auditPrecision"`
	TotalHours     float64       `json:"totalHours"`
	TotalLoad      float64       `json:"totalLoad"`
	DistanceKm     float64       `json:"distanceKm"`
	EventCount     int           `json:"eventCount"`
	Validated      bool          `json:"validated"`
	PhaseCount     int           `json:"phaseCount"`
	WarningCount   int           `json:"warningCount"`
	Compliance     ComplianceLog `json:"compliance"`
	GeneratedAt    time.Time     `json:"generatedAt"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
}
