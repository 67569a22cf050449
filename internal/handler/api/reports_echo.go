package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"LoadLedger/internal/domain/models"
	drepo "LoadLedger/internal/domain/repository"
	"LoadLedger/internal/service/metrics"
	"LoadLedger/internal/usecase"
	xhttp "LoadLedger/pkg/http"
	xlogger "LoadLedger/pkg/logger"
)

// JobEnqueuer pushes background report requests onto the work queue.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// ReportsEchoHandler exposes the report pipeline over HTTP. Synchronous
// endpoints run the pipeline inline; the jobs endpoint defers to the
// queue.
type ReportsEchoHandler struct {
	logger  *xlogger.Logger
	runner  *usecase.ReportRunner
	archive drepo.ReportArchive
	jobs    JobEnqueuer
}

func NewReportsEchoHandler(logger *xlogger.Logger, runner *usecase.ReportRunner, archive drepo.ReportArchive, jobs JobEnqueuer) *ReportsEchoHandler {
	metrics.Register()
	return &ReportsEchoHandler{logger: logger, runner: runner, archive: archive, jobs: jobs}
}

func (h *ReportsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api/v1/reports")
	g.GET("/run", h.Run)
	g.GET("/phases", h.Phases)
	g.GET("/metrics", h.Metrics)
	g.GET("/forecast", h.Forecast)
	g.GET("/runs", h.RecentRuns)
	g.POST("/jobs", h.EnqueueJob)
}

// Run executes the pipeline synchronously and returns the report in the
// requested format.
func (h *ReportsEchoHandler) Run(c echo.Context) error {
	endpoint := "run"
	defer observe(endpoint, time.Now())

	req := &models.RunReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	_, envelope, err := h.runner.RunWithHorizon(c.Request().Context(), req.Range, req.Format, req.Days)
	if err != nil {
		return h.runError(c, endpoint, err)
	}
	if req.Format == "markdown" {
		return xhttp.MarkdownResponse(c, usecase.RenderMarkdown(envelope))
	}
	return xhttp.SuccessResponse(c, envelope)
}

func (h *ReportsEchoHandler) Phases(c echo.Context) error {
	endpoint := "phases"
	defer observe(endpoint, time.Now())

	req := &models.PhasesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, envelope, err := h.runner.Run(c.Request().Context(), req.Range, "json")
	if err != nil {
		return h.runError(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, &models.PhasesResponse{
		RunID:  rec.RunID,
		Period: envelope.Header.Period,
		Phases: envelope.Phases,
	})
}

func (h *ReportsEchoHandler) Metrics(c echo.Context) error {
	endpoint := "metrics"
	defer observe(endpoint, time.Now())

	req := &models.MetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, envelope, err := h.runner.Run(c.Request().Context(), req.Range, "json")
	if err != nil {
		return h.runError(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, &models.MetricsResponse{
		RunID:   rec.RunID,
		Period:  envelope.Header.Period,
		Metrics: envelope.Metrics,
		Zones:   envelope.Zones,
		Actions: envelope.Actions,
	})
}

func (h *ReportsEchoHandler) Forecast(c echo.Context) error {
	endpoint := "forecast"
	defer observe(endpoint, time.Now())

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, envelope, err := h.runner.RunWithHorizon(c.Request().Context(), req.Range, "json", req.Days)
	if err != nil {
		return h.runError(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, &models.ForecastResponse{
		RunID:    rec.RunID,
		Period:   envelope.Header.Period,
		Forecast: envelope.Forecast,
	})
}

// RecentRuns lists archived run records, newest first.
func (h *ReportsEchoHandler) RecentRuns(c echo.Context) error {
	endpoint := "runs"
	defer observe(endpoint, time.Now())

	req := &models.RecentRunsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_ARCHIVE_DISABLED", "", "run archive is not enabled", http.StatusServiceUnavailable))
	}

	runs, err := h.archive.RecentRuns(c.Request().Context(), req.Limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("recent runs query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("run archive unavailable").WithError(err))
	}
	return xhttp.ListResponse(c, runs, int64(len(runs)))
}

// EnqueueJob defers a report run to the background queue.
func (h *ReportsEchoHandler) EnqueueJob(c echo.Context) error {
	endpoint := "jobs"
	defer observe(endpoint, time.Now())

	req := &models.ReportJobRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_QUEUE_DISABLED", "", "background queue is not enabled", http.StatusServiceUnavailable))
	}

	payload := usecase.ReportJobRequest{
		JobID:  uuid.NewString(),
		Range:  req.Range,
		Format: req.Format,
		Days:   req.Days,
	}
	if err := h.jobs.Enqueue(c.Request().Context(), usecase.ReportJobType, payload); err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("enqueue report job failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("could not enqueue report job").WithError(err))
	}

	h.logger.Info("report job queued",
		xlogger.String("job_id", payload.JobID),
		xlogger.String("report_type", req.Range),
		xlogger.String("format", req.Format),
		xlogger.String("requested_by", req.RequestedBy),
	)
	return xhttp.CreatedResponse(c, &models.JobAccepted{
		JobID:  payload.JobID,
		Queued: true,
		Range:  req.Range,
		Format: req.Format,
		Days:   req.Days,
	})
}

func (h *ReportsEchoHandler) Health(c echo.Context) error {
	if h.archive != nil {
		if err := h.archive.Health(c.Request().Context()); err != nil {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNHEALTHY", "", "run archive unreachable", http.StatusServiceUnavailable).WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// runError maps pipeline failures onto HTTP statuses: missing upstream
// data reads as a bad gateway, an integrity halt as a conflict and a
// validation failure as unprocessable.
func (h *ReportsEchoHandler) runError(c echo.Context, endpoint string, err error) error {
	metrics.APIErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error(endpoint+" run error", xlogger.Error(err))

	var unavailable *models.DataUnavailableError
	var halt *models.IntegrityHaltError
	var gate *models.ValidationFailureError
	switch {
	case errors.As(err, &unavailable):
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(unavailable.Error()).WithError(err))
	case errors.As(err, &halt):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError(halt.Error()).WithError(err))
	case errors.As(err, &gate):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(gate.Error()).WithError(err))
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_TIMEOUT", "", "report run exceeded its deadline", http.StatusGatewayTimeout).WithError(err))
	}
	return xhttp.AppErrorResponse(c, err)
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
