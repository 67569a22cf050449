package service

import (
	"context"

	"LoadLedger/internal/domain/models"
	"LoadLedger/internal/domain/repository"
)

// Ingestor assembles the normalized dataset bundle for a report window.
type Ingestor interface {
	Ingest(ctx context.Context, window repository.ReportWindow) (models.IngestResult, error)
}

// IntegrityController cross-checks provider totals against recomputed
// totals and derives the window descriptions downstream stages read.
type IntegrityController interface {
	Check(ctx context.Context, in models.IngestResult) (models.IntegrityResult, error)
}

// MetricsEngine computes and classifies the derived metric set.
type MetricsEngine interface {
	Compute(ctx context.Context, in models.IngestResult, integ models.IntegrityResult) (models.MetricsResult, error)
}

// TotalsReconciler seals the canonical window totals.
type TotalsReconciler interface {
	Reconcile(ctx context.Context, in models.IngestResult, integ models.IntegrityResult) (models.ReconcileResult, error)
}

// PhaseDetector classifies training weeks and merges them into phases.
type PhaseDetector interface {
	Detect(ctx context.Context, in models.IngestResult) (models.PhaseResult, error)
}

// ForecastProjector simulates the fitness model forward from the present.
type ForecastProjector interface {
	Project(ctx context.Context, in models.IngestResult, integ models.IntegrityResult, horizonDays int) (models.ForecastResult, error)
}

// ValidationGate is the only path to a releasable report.
type ValidationGate interface {
	Validate(ctx context.Context, runID string, envelope models.ReportEnvelope, totals models.CanonicalTotals) (models.GateResult, error)
}
