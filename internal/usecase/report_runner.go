package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"LoadLedger/internal/domain/models"
	drepo "LoadLedger/internal/domain/repository"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/internal/services/analytics"
	xlogger "LoadLedger/pkg/logger"
)

// Run terminal states recorded in the archive and run metrics.
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// archiveTimeout bounds the detached store of a failed run's record.
const archiveTimeout = 5 * time.Second

// RunEventSink receives stage progress notifications for streaming.
type RunEventSink interface {
	Publish(ev models.RunEvent)
}

// PipelineStages groups the seven pipeline stages the runner sequences.
type PipelineStages struct {
	Ingestor   domsvc.Ingestor
	Integrity  domsvc.IntegrityController
	Metrics    domsvc.MetricsEngine
	Reconciler domsvc.TotalsReconciler
	Phases     domsvc.PhaseDetector
	Forecast   domsvc.ForecastProjector
	Gate       domsvc.ValidationGate
}

// RunnerConfig carries the pipeline settings the runner enforces itself.
type RunnerConfig struct {
	RunTimeout      time.Duration
	ForecastDays    int
	ArchiveRuns     bool
	PublishComplete bool
}

// ReportRunner drives one report request through the pipeline: ingest,
// integrity, metrics, reconcile, phases, forecast, envelope assembly and
// the validation gate. Every run gets its own id, its own deadline and a
// stream of stage events; completed and failed runs both land in the
// archive.
type ReportRunner struct {
	stages    PipelineStages
	archive   drepo.ReportArchive
	publisher drepo.RunPublisher
	metrics   drepo.Metrics
	bus       RunEventSink
	logger    *xlogger.Logger
	cfg       RunnerConfig
}

func NewReportRunner(
	stages PipelineStages,
	archive drepo.ReportArchive,
	publisher drepo.RunPublisher,
	metrics drepo.Metrics,
	bus RunEventSink,
	logger *xlogger.Logger,
	cfg RunnerConfig,
) *ReportRunner {
	return &ReportRunner{
		stages:    stages,
		archive:   archive,
		publisher: publisher,
		metrics:   metrics,
		bus:       bus,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes the pipeline for one report request. It returns the run
// record together with the validated envelope; on failure the record
// carries the terminal error and the envelope is empty.
func (r *ReportRunner) Run(ctx context.Context, reportType, format string) (models.RunRecord, models.ReportEnvelope, error) {
	return r.RunWithHorizon(ctx, reportType, format, 0)
}

// RunWithHorizon is Run with an explicit forecast horizon in days.
// Zero or negative picks the configured default.
func (r *ReportRunner) RunWithHorizon(ctx context.Context, reportType, format string, horizonDays int) (models.RunRecord, models.ReportEnvelope, error) {
	if horizonDays <= 0 {
		horizonDays = r.cfg.ForecastDays
	}
	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
	}
	if format == "" {
		format = "json"
	}

	window := drepo.WindowFor(drepo.NormalizeReportType(reportType))
	rc := models.NewRunContext(uuid.NewString(), string(window.Type), format)

	r.logger.Info("report run started",
		xlogger.String("run_id", rc.RunID),
		xlogger.String("report_type", rc.ReportType),
		xlogger.String("format", rc.Format),
	)
	r.emit(rc, models.StageIngest, "info", "run started")

	var in models.IngestResult
	if err := r.timed(models.StageIngest, func() error {
		var err error
		in, err = r.stages.Ingestor.Ingest(ctx, window)
		return err
	}); err != nil {
		return r.fail(rc, models.StageIngest, err)
	}
	rc.DataSource = in.DataSource
	for ds, s := range in.ChosenSources {
		rc.ChooseSource(ds, s)
	}
	rc.Warnings = append(rc.Warnings, in.Warnings...)
	if in.Degraded {
		rc.AuditPrecision = models.PrecisionDegraded
	}
	r.emit(rc, models.StageIngest, "info",
		fmt.Sprintf("acquired %d detail and %d trend records via %s", len(in.Short), len(in.Long), in.DataSource))

	var integ models.IntegrityResult
	if err := r.timed(models.StageIntegrity, func() error {
		var err error
		integ, err = r.stages.Integrity.Check(ctx, in)
		return err
	}); err != nil {
		return r.fail(rc, models.StageIntegrity, err)
	}
	rc.Warnings = append(rc.Warnings, integ.Warnings...)
	if integ.Degraded {
		rc.AuditPrecision = models.PrecisionDegraded
	}
	r.emit(rc, models.StageIntegrity, "info", "window totals verified")

	var met models.MetricsResult
	if err := r.timed(models.StageMetrics, func() error {
		var err error
		met, err = r.stages.Metrics.Compute(ctx, in, integ)
		return err
	}); err != nil {
		return r.fail(rc, models.StageMetrics, err)
	}
	rc.Warnings = append(rc.Warnings, met.Warnings...)
	r.emit(rc, models.StageMetrics, "info", fmt.Sprintf("%d derived metrics classified", len(met.Metrics.Derived)))

	var rec models.ReconcileResult
	if err := r.timed(models.StageReconcile, func() error {
		var err error
		rec, err = r.stages.Reconciler.Reconcile(ctx, in, integ)
		return err
	}); err != nil {
		return r.fail(rc, models.StageReconcile, err)
	}
	if rec.Diagnostic != "" {
		rc.Warn(rec.Diagnostic)
		r.emit(rc, models.StageReconcile, "warn", rec.Diagnostic)
	} else {
		r.emit(rc, models.StageReconcile, "info", "canonical totals locked")
	}

	var ph models.PhaseResult
	if err := r.timed(models.StagePhases, func() error {
		var err error
		ph, err = r.stages.Phases.Detect(ctx, in)
		return err
	}); err != nil {
		return r.fail(rc, models.StagePhases, err)
	}
	r.emit(rc, models.StagePhases, "info", fmt.Sprintf("%d training phases detected", len(ph.Phases)))

	var fc models.ForecastResult
	if err := r.timed(models.StageForecast, func() error {
		var err error
		fc, err = r.stages.Forecast.Project(ctx, in, integ, horizonDays)
		return err
	}); err != nil {
		return r.fail(rc, models.StageForecast, err)
	}
	r.emit(rc, models.StageForecast, "info", fmt.Sprintf("%d days projected", len(fc.Projection.Daily)))

	envelope := buildEnvelope(rc, in, integ, met, rec, ph, fc)

	var gate models.GateResult
	if err := r.timed(models.StageValidate, func() error {
		var err error
		gate, err = r.stages.Gate.Validate(ctx, rc.RunID, envelope, rec.Totals)
		return err
	}); err != nil {
		return r.fail(rc, models.StageValidate, err)
	}
	envelope.Compliance = gate.Compliance
	r.emit(rc, models.StageValidate, "info", "validation gate passed")

	record := models.RunRecord{
		RunID:          rc.RunID,
		ReportType:     rc.ReportType,
		Format:         rc.Format,
		Status:         statusCompleted,
		AuditPrecision: rc.AuditPrecision,
		TotalHours:     rec.Totals.Hours,
		TotalLoad:      rec.Totals.Load,
		DistanceKm:     rec.Totals.DistanceKm,
		EventCount:     rec.Totals.EventCount,
		Validated:      rec.Totals.Validated,
		PhaseCount:     len(ph.Phases),
		WarningCount:   len(rc.Warnings),
		Compliance:     gate.Compliance,
		GeneratedAt:    envelope.Header.GeneratedAt,
		Duration:       time.Since(rc.StartedAt),
	}

	r.metrics.RecordRun(rc.ReportType, statusCompleted)
	if rc.AuditPrecision == models.PrecisionDegraded {
		r.metrics.RecordDegradedRun()
	}
	if record.Validated {
		r.metrics.RecordCanonicalLoad(rc.ReportType, record.TotalLoad)
	}

	if r.cfg.ArchiveRuns && r.archive != nil {
		if err := r.archive.StoreRun(ctx, record, envelope); err != nil {
			r.logger.Error("archiving run failed", xlogger.String("run_id", rc.RunID), xlogger.Error(err))
		}
	}
	if r.cfg.PublishComplete && r.publisher != nil {
		if err := r.publisher.PublishCompleted(ctx, record); err != nil {
			r.logger.Error("publishing run failed", xlogger.String("run_id", rc.RunID), xlogger.Error(err))
		}
	}

	r.emit(rc, models.StageRender, "info", "run completed")
	r.logger.Info("report run completed",
		xlogger.String("run_id", rc.RunID),
		xlogger.String("report_type", rc.ReportType),
		xlogger.String("precision", rc.AuditPrecision),
		xlogger.Float64("total_load", record.TotalLoad),
		xlogger.Int("warnings", record.WarningCount),
		xlogger.Duration("elapsed", record.Duration),
	)
	return record, envelope, nil
}

// timed runs one stage and records its wall-clock duration.
func (r *ReportRunner) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.metrics.RecordStageDuration(stage, time.Since(start).Seconds())
	return err
}

// emit mirrors a stage event to the structured log and the run stream.
func (r *ReportRunner) emit(rc *models.RunContext, stage, level, msg string) {
	r.logger.Debug("stage event",
		xlogger.String("run_id", rc.RunID),
		xlogger.String("stage", stage),
		xlogger.String("level", level),
		xlogger.String("message", msg),
	)
	if r.bus == nil {
		return
	}
	r.bus.Publish(models.RunEvent{
		RunID:   rc.RunID,
		Stage:   stage,
		Level:   level,
		Message: msg,
		At:      time.Now().UTC(),
	})
}

// fail finalizes a run that cannot produce a report. The failed record
// still lands in the archive under a detached deadline because the run
// context may already be dead.
func (r *ReportRunner) fail(rc *models.RunContext, stage string, err error) (models.RunRecord, models.ReportEnvelope, error) {
	if kind := haltKind(err); kind != "" {
		r.metrics.RecordHalt(kind)
	}
	r.metrics.RecordRun(rc.ReportType, statusFailed)
	r.emit(rc, stage, "error", err.Error())
	r.logger.Error("report run failed",
		xlogger.String("run_id", rc.RunID),
		xlogger.String("report_type", rc.ReportType),
		xlogger.String("stage", stage),
		xlogger.Error(err),
	)

	record := models.RunRecord{
		RunID:          rc.RunID,
		ReportType:     rc.ReportType,
		Format:         rc.Format,
		Status:         statusFailed,
		AuditPrecision: rc.AuditPrecision,
		WarningCount:   len(rc.Warnings),
		GeneratedAt:    time.Now().UTC(),
		Duration:       time.Since(rc.StartedAt),
		Error:          err.Error(),
	}
	if r.cfg.ArchiveRuns && r.archive != nil {
		storeCtx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if aerr := r.archive.StoreRun(storeCtx, record, models.ReportEnvelope{}); aerr != nil {
			r.logger.Error("archiving failed run failed", xlogger.String("run_id", rc.RunID), xlogger.Error(aerr))
		}
	}
	return record, models.ReportEnvelope{}, err
}

func haltKind(err error) string {
	var dataErr *models.DataUnavailableError
	var integrityErr *models.IntegrityHaltError
	var gateErr *models.ValidationFailureError
	switch {
	case errors.As(err, &dataErr):
		return "data"
	case errors.As(err, &integrityErr):
		return "integrity"
	case errors.As(err, &gateErr):
		return "validation"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return ""
}

// buildEnvelope assembles the report artifact the gate validates. The
// summary copies the locked canonical totals verbatim; optional sections
// appear only when they carry data.
func buildEnvelope(
	rc *models.RunContext,
	in models.IngestResult,
	integ models.IntegrityResult,
	met models.MetricsResult,
	rec models.ReconcileResult,
	ph models.PhaseResult,
	fc models.ForecastResult,
) models.ReportEnvelope {
	period := periodString(in.ShortStart, in.ShortEnd)

	envelope := models.ReportEnvelope{
		Header: models.ReportHeader{
			Title:       titleFor(rc.ReportType),
			Athlete:     in.Profile.Name,
			AthleteID:   in.AthleteID,
			Timezone:    in.Timezone,
			ReportType:  rc.ReportType,
			Period:      period,
			GeneratedAt: time.Now().UTC(),
		},
		Summary: models.ReportSummary{
			TotalHours: rec.Totals.Hours,
			TotalLoad:  rec.Totals.Load,
			DistanceKm: rec.Totals.DistanceKm,
			EventCount: rec.Totals.EventCount,
			Period:     period,
		},
		Metrics:  met.Metrics,
		Zones:    integ.Zones,
		Phases:   ph.Phases,
		Actions:  analytics.BuildActions(met.Metrics, &fc.Projection),
		Outliers: integ.Outliers,
		Forecast: &fc.Projection,
		Events:   rec.Events,
		Footer: models.ReportFooter{
			AuditPrecision: rc.AuditPrecision,
			DataSource:     rc.DataSource,
			Validated:      rec.Totals.Validated,
			ChosenSources:  rc.ChosenSources,
			Warnings:       rc.Warnings,
		},
	}
	if envelope.Phases == nil {
		envelope.Phases = []models.Phase{}
	}
	if integ.Wellness.Defined {
		w := integ.Wellness
		envelope.Wellness = &w
	}
	if integ.Cycling.Rides > 0 {
		c := integ.Cycling
		envelope.Cycling = &c
	}
	return envelope
}

func titleFor(reportType string) string {
	switch drepo.ReportType(reportType) {
	case drepo.ReportSeason:
		return "Season Training Report"
	case drepo.ReportWellness:
		return "Wellness Report"
	case drepo.ReportSummary:
		return "Training Summary"
	default:
		return "Weekly Training Report"
	}
}

// periodString renders an inclusive calendar range from a half-open
// window.
func periodString(from, to time.Time) string {
	last := to.AddDate(0, 0, -1)
	if last.Before(from) {
		last = from
	}
	return from.Format("2006-01-02") + " .. " + last.Format("2006-01-02")
}
