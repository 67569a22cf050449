package repository

import (
	"context"
	"time"

	"LoadLedger/internal/domain/models"
)

// DatasetSource yields the provider datasets a pipeline run ingests.
// Implementations include the live API client, the cached layer and the
// offline fixture source; the acquisition chain tries them in order.
type DatasetSource interface {
	Activities(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error)
	ActivitiesLight(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error)
	Wellness(ctx context.Context, from, to time.Time) ([]models.WellnessRecord, error)
	Profile(ctx context.Context) (models.AthleteProfile, error)
	Events(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error)
	PlannedEvents(ctx context.Context, from, to time.Time) ([]models.PlannedEvent, error)
	Health(ctx context.Context) error
	Name() string
}

// ReportArchive persists completed runs and their envelopes.
type ReportArchive interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreRun(ctx context.Context, rec models.RunRecord, envelope models.ReportEnvelope) error
	RecentRuns(ctx context.Context, limit int) ([]models.RunRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// RunPublisher announces finished runs to downstream consumers.
type RunPublisher interface {
	PublishCompleted(ctx context.Context, rec models.RunRecord) error
	Close() error
}

// Metrics is the pipeline's operational instrumentation.
type Metrics interface {
	RecordRun(reportType, status string)
	RecordHalt(kind string)
	RecordFetchRetry(dataset string)
	RecordDegradedRun()
	RecordCacheOp(result string)
	RecordCanonicalLoad(reportType string, load float64)
	RecordStageDuration(stage string, seconds float64)
}
