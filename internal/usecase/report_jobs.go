package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	pkgkafka "LoadLedger/pkg/kafka"
	xlogger "LoadLedger/pkg/logger"
	"LoadLedger/pkg/queue"
)

// ReportJobType keys queued report requests on the Redis queue.
const ReportJobType = "report_run"

// ReportJobRequest asks for one report run. The same shape rides the
// Redis queue and the Kafka request topic.
type ReportJobRequest struct {
	JobID     string `json:"job_id,omitempty"` // caller correlation id
	Range     string `json:"range"`
	Format    string `json:"format,omitempty"`
	Days      int    `json:"days,omitempty"` // forecast horizon override
	AthleteID string `json:"athlete_id,omitempty"`
}

// ReportJob consumes queued report requests and drives the pipeline.
// Failures propagate so the queue can retry and eventually dead-letter.
type ReportJob struct {
	runner *ReportRunner
	logger *xlogger.Logger
}

func NewReportJob(runner *ReportRunner, logger *xlogger.Logger) *ReportJob {
	return &ReportJob{runner: runner, logger: logger}
}

func (j *ReportJob) Name() string { return "report_run" }
func (j *ReportJob) Type() string { return ReportJobType }

func (j *ReportJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[ReportJobRequest](payload)
	if err != nil {
		return fmt.Errorf("parse report job payload: %w", err)
	}
	rec, _, err := j.runner.RunWithHorizon(ctx, req.Range, req.Format, req.Days)
	if err != nil {
		return fmt.Errorf("queued %s report: %w", req.Range, err)
	}
	j.logger.Info("queued report run completed",
		xlogger.String("run_id", rec.RunID),
		xlogger.String("job_id", req.JobID),
		xlogger.String("report_type", rec.ReportType),
		xlogger.String("status", rec.Status),
	)
	return nil
}

var _ queue.Job = (*ReportJob)(nil)

// ReportRequestHandler consumes report requests from the Kafka request
// topic.
type ReportRequestHandler struct {
	topic  string
	runner *ReportRunner
	logger *xlogger.Logger
}

func NewReportRequestHandler(topic string, runner *ReportRunner, logger *xlogger.Logger) *ReportRequestHandler {
	return &ReportRequestHandler{topic: topic, runner: runner, logger: logger}
}

func (h *ReportRequestHandler) Topic() string { return h.topic }

// incoming message schema: {range, format, days, athlete_id}
func (h *ReportRequestHandler) Handle(ctx context.Context, b []byte) error {
	var req ReportJobRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return fmt.Errorf("decode report request: %w", err)
	}
	rec, _, err := h.runner.RunWithHorizon(ctx, req.Range, req.Format, req.Days)
	if err != nil {
		return fmt.Errorf("requested %s report: %w", req.Range, err)
	}
	h.logger.Info("requested report run completed",
		xlogger.String("run_id", rec.RunID),
		xlogger.String("report_type", rec.ReportType),
		xlogger.String("requested_by", req.AthleteID),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*ReportRequestHandler)(nil)
