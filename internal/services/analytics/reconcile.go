package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"LoadLedger/internal/domain/models"
	"LoadLedger/internal/domain/repository"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/internal/services/features"
	"LoadLedger/pkg/util"
)

// Agreement bounds between integrity and event-filtered totals.
const (
	reconcileHoursTol = 0.05
	reconcileLoadTol  = 10.0
	reconcileKmTol    = 2.0
)

const eventPreviewSize = 10

// TotalsReconciler recomputes totals from calendar events alone and seals
// the result. Whichever side wins, every report section downstream reads
// the sealed figures.
type TotalsReconciler struct{}

func NewTotalsReconciler() *TotalsReconciler { return &TotalsReconciler{} }

func (r *TotalsReconciler) Reconcile(ctx context.Context, in models.IngestResult, integ models.IntegrityResult) (models.ReconcileResult, error) {
	var res models.ReconcileResult

	season := repository.ReportType(in.ReportType) == repository.ReportSeason
	scope := in.Long
	if !season {
		scope = sliceWindow(in.Long, in.ShortStart, in.ShortEnd)
	}
	events := features.EventRecords(scope)
	eventTotals := models.SnapshotTotals{
		Hours:      util.Round(sumHours(events), 2),
		Load:       math.Trunc(sumLoad(events)),
		DistanceKm: util.Round(sumKm(events), 1),
		Count:      len(events),
	}

	totals := integ.Totals
	switch {
	case season:
		// Season totals always come from the full-range event recompute.
		if err := totals.Replace(eventTotals.Hours, eventTotals.Load, eventTotals.DistanceKm, eventTotals.Count, "event_filtered", true); err != nil {
			return res, err
		}
	case withinTolerance(integ.Totals, eventTotals):
		totals.Validated = true
	default:
		if err := totals.Replace(eventTotals.Hours, eventTotals.Load, eventTotals.DistanceKm, eventTotals.Count, "event_filtered", false); err != nil {
			return res, err
		}
		res.Diagnostic = "event-filtered totals adopted; integrity totals out of tolerance"
	}
	totals.Lock()

	res.Totals = totals
	res.EventTotals = eventTotals
	res.Events = eventPreview(events, eventPreviewSize)
	return res, nil
}

var _ domsvc.TotalsReconciler = (*TotalsReconciler)(nil)

func withinTolerance(a models.CanonicalTotals, b models.SnapshotTotals) bool {
	return math.Abs(a.Hours-b.Hours) < reconcileHoursTol &&
		math.Abs(a.Load-b.Load) < reconcileLoadTol &&
		math.Abs(a.DistanceKm-b.DistanceKm) < reconcileKmTol
}

func sliceWindow(records []models.ActivityRecord, from, to time.Time) []models.ActivityRecord {
	out := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.StartLocal.Before(from) || !r.StartLocal.Before(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// eventPreview returns the n most recent events for the report body.
func eventPreview(events []models.ActivityRecord, n int) []models.EventSummary {
	sorted := make([]models.ActivityRecord, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartLocal.After(sorted[j].StartLocal) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]models.EventSummary, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, models.EventSummary{
			ID:         e.ID,
			Name:       e.Name,
			SportType:  e.SportType,
			Start:      e.StartLocal,
			Hours:      util.Round(e.MovingTime/3600, 2),
			Load:       e.TrainingLoad,
			DistanceKm: util.Round(e.Distance/1000, 1),
		})
	}
	return out
}
