package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"LoadLedger/internal/domain/models"
	drepo "LoadLedger/internal/domain/repository"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/internal/services/analytics"
	"LoadLedger/internal/services/features"
)

type stubArchive struct {
	stored    []models.RunRecord
	envelopes []models.ReportEnvelope
	storeErr  error
}

func (a *stubArchive) Init(ctx context.Context) error { return nil }

func (a *stubArchive) StoreRun(ctx context.Context, rec models.RunRecord, env models.ReportEnvelope) error {
	if a.storeErr != nil {
		return a.storeErr
	}
	a.stored = append(a.stored, rec)
	a.envelopes = append(a.envelopes, env)
	return nil
}

func (a *stubArchive) RecentRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	return a.stored, nil
}

func (a *stubArchive) Health(ctx context.Context) error { return nil }
func (a *stubArchive) Close() error                     { return nil }

type stubPublisher struct{ published []models.RunRecord }

func (p *stubPublisher) PublishCompleted(ctx context.Context, rec models.RunRecord) error {
	p.published = append(p.published, rec)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

type stubBus struct{ events []models.RunEvent }

func (b *stubBus) Publish(ev models.RunEvent) { b.events = append(b.events, ev) }

type fixedIngestor struct {
	res models.IngestResult
	err error
}

func (f fixedIngestor) Ingest(context.Context, drepo.ReportWindow) (models.IngestResult, error) {
	return f.res, f.err
}

type stalledIngestor struct{}

func (stalledIngestor) Ingest(ctx context.Context, _ drepo.ReportWindow) (models.IngestResult, error) {
	<-ctx.Done()
	return models.IngestResult{}, ctx.Err()
}

func realStages(ing domsvc.Ingestor) PipelineStages {
	return PipelineStages{
		Ingestor:   ing,
		Integrity:  analytics.NewIntegrityController(),
		Metrics:    analytics.NewMetricsEngine(),
		Reconciler: analytics.NewTotalsReconciler(),
		Phases:     analytics.NewPhaseDetector(),
		Forecast:   analytics.NewForecastProjector(),
		Gate:       analytics.NewValidationGate(),
	}
}

func newTestRunner(t *testing.T, ing domsvc.Ingestor, m *stubMetrics, cfg RunnerConfig) (*ReportRunner, *stubArchive, *stubPublisher, *stubBus) {
	t.Helper()
	arch := &stubArchive{}
	pub := &stubPublisher{}
	bus := &stubBus{}
	return NewReportRunner(realStages(ing), arch, pub, m, bus, testLogger(t), cfg), arch, pub, bus
}

// happyAPI serves a consistent week: two counted activities mirrored by
// two calendar events whose totals sit within reconcile tolerance.
func happyAPI() *stubSource {
	a1 := ride("a1", time.Date(2026, 8, 5, 8, 0, 0, 0, time.UTC), 3600, 55.4)
	a1.Distance = 12345
	a1.PowerZones = []float64{1800, 900, 900}
	a2 := ride("a2", time.Date(2026, 8, 6, 18, 0, 0, 0, time.UTC), 1800, 30.3)
	a2.SportType = "Run"
	a2.Distance = 5678

	e1 := eventRec("e1", time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC), 3600, 56.4)
	e1.Distance = 12345
	e2 := eventRec("e2", time.Date(2026, 8, 7, 6, 0, 0, 0, time.UTC), 1800, 31.3)
	e2.Distance = 5678

	return &stubSource{
		name: "api",
		acts: func() ([]models.ActivityRecord, error) {
			return []models.ActivityRecord{a1, a2}, nil
		},
		light: func() ([]models.ActivityRecord, error) {
			return []models.ActivityRecord{ride("l1", time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC), 5400, 80)}, nil
		},
		events: func() ([]models.ActivityRecord, error) {
			return []models.ActivityRecord{e1, e2}, nil
		},
		well: func() ([]models.WellnessRecord, error) {
			return []models.WellnessRecord{
				{Date: time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC), RestingHR: 48, HRV: 95, CTL: 72, ATL: 65, Fatigue: 3, Stress: 2, Readiness: 8},
				{Date: time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC), RestingHR: 47, HRV: 99, CTL: 71, ATL: 63, Fatigue: 3, Stress: 2, Readiness: 8},
			}, nil
		},
	}
}

func TestRunCompletesAndReleasesValidatedReport(t *testing.T) {
	ing, m := newTestIngestor(t, happyAPI(), &stubSource{name: "cache"}, 0, false)
	runner, arch, pub, bus := newTestRunner(t, ing, m, RunnerConfig{
		RunTimeout:      5 * time.Second,
		ArchiveRuns:     true,
		PublishComplete: true,
	})

	rec, env, err := runner.Run(context.Background(), "weekly", "json")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rec.Status != statusCompleted {
		t.Errorf("Status = %q, want %q", rec.Status, statusCompleted)
	}
	if rec.RunID == "" {
		t.Error("run id missing")
	}
	if !rec.Validated {
		t.Errorf("Validated = false; integrity and event totals should agree (warnings: %v)", env.Footer.Warnings)
	}
	if rec.TotalLoad != 85 {
		t.Errorf("TotalLoad = %v, want 85 from the integrity recompute", rec.TotalLoad)
	}
	if rec.EventCount != 2 {
		t.Errorf("EventCount = %d, want 2", rec.EventCount)
	}

	if env.Header.Period != "2026-08-03 .. 2026-08-09" {
		t.Errorf("Period = %q, want 2026-08-03 .. 2026-08-09", env.Header.Period)
	}
	if env.Header.Title != "Weekly Training Report" {
		t.Errorf("Title = %q", env.Header.Title)
	}
	if env.Summary.TotalLoad != rec.TotalLoad {
		t.Errorf("summary load %v diverges from record load %v", env.Summary.TotalLoad, rec.TotalLoad)
	}
	if env.Compliance.ValidationStatus != "passed" || env.Compliance.Framework != analytics.FrameworkTag {
		t.Errorf("Compliance = %+v", env.Compliance)
	}
	if env.Footer.ChosenSources[dsActivities] != srcProviderFull {
		t.Errorf("footer chose %q for activities", env.Footer.ChosenSources[dsActivities])
	}
	if env.Wellness == nil || env.Wellness.CTL != 71 {
		t.Errorf("Wellness = %+v, want latest CTL 71", env.Wellness)
	}
	if env.Forecast == nil || env.Forecast.HorizonDays != 14 {
		t.Errorf("Forecast = %+v, want default 14 day horizon", env.Forecast)
	}
	if len(env.Events) != 2 {
		t.Errorf("len(Events) = %d, want 2 preview rows", len(env.Events))
	}
	if len(env.Actions) == 0 {
		t.Error("actions section empty")
	}
	if rec.PhaseCount != len(env.Phases) {
		t.Errorf("PhaseCount %d != len(Phases) %d", rec.PhaseCount, len(env.Phases))
	}

	if len(arch.stored) != 1 || arch.envelopes[0].Header.Title == "" {
		t.Errorf("archive: %d records stored", len(arch.stored))
	}
	if len(pub.published) != 1 || pub.published[0].RunID != rec.RunID {
		t.Errorf("publisher: %+v", pub.published)
	}
	if m.runs["weekly/"+statusCompleted] != 1 {
		t.Errorf("run metric = %v", m.runs)
	}
	if len(m.stageDur) != 7 {
		t.Errorf("stage durations recorded for %d stages, want 7: %v", len(m.stageDur), m.stageDur)
	}
	if m.canonical["weekly"] != 85 {
		t.Errorf("canonical load metric = %v, want 85", m.canonical["weekly"])
	}
	if m.degraded != 0 {
		t.Errorf("degraded counter = %d on a clean run", m.degraded)
	}

	if len(bus.events) == 0 {
		t.Fatal("no run events published")
	}
	last := bus.events[len(bus.events)-1]
	if last.Stage != models.StageRender || last.Message != "run completed" {
		t.Errorf("terminal event = %+v", last)
	}
	for _, ev := range bus.events {
		if ev.RunID != rec.RunID {
			t.Errorf("event carries run id %q, want %q", ev.RunID, rec.RunID)
		}
	}
}

func TestRunDegradesWhenDetailFetchFallsBack(t *testing.T) {
	api := happyAPI()
	full := api.acts
	api.acts = func() ([]models.ActivityRecord, error) { return nil, errors.New("full payload 502") }
	api.light = func() ([]models.ActivityRecord, error) {
		recs, _ := full()
		return recs, nil
	}

	ing, m := newTestIngestor(t, api, &stubSource{name: "cache"}, 0, false)
	runner, _, _, _ := newTestRunner(t, ing, m, RunnerConfig{ArchiveRuns: false})

	rec, env, err := runner.Run(context.Background(), "weekly", "json")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.AuditPrecision != models.PrecisionDegraded {
		t.Errorf("AuditPrecision = %q, want degraded", rec.AuditPrecision)
	}
	if env.Footer.AuditPrecision != models.PrecisionDegraded {
		t.Errorf("footer precision = %q", env.Footer.AuditPrecision)
	}
	if env.Footer.DataSource != srcProviderLight {
		t.Errorf("footer data source = %q, want %q", env.Footer.DataSource, srcProviderLight)
	}
	if m.degraded != 1 {
		t.Errorf("degraded counter = %d, want 1", m.degraded)
	}
	if rec.Status != statusCompleted {
		t.Errorf("degraded run must still complete, got %q", rec.Status)
	}
}

func TestRunHaltsOnIntegrityMismatch(t *testing.T) {
	start := time.Date(2026, 8, 5, 8, 0, 0, 0, time.UTC)
	short := []models.ActivityRecord{ride("r1", start, 3600, 100)}
	in := models.IngestResult{
		ReportType: "weekly",
		AthleteID:  "42",
		Timezone:   "UTC",
		ShortStart: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		ShortEnd:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		LongStart:  time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC),
		LongEnd:    time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Short:      short,
		Long:       short,
		Snapshot:   models.SnapshotTotals{Hours: 9.99, Load: 999, DistanceKm: 10, Count: 1},
		DataSource: srcProviderFull,
	}
	m := &stubMetrics{}
	runner, arch, pub, _ := newTestRunner(t, fixedIngestor{res: in}, m, RunnerConfig{ArchiveRuns: true, PublishComplete: true})

	rec, _, err := runner.Run(context.Background(), "weekly", "json")
	var halt *models.IntegrityHaltError
	if !errors.As(err, &halt) {
		t.Fatalf("err = %v, want IntegrityHaltError", err)
	}
	if m.halts["integrity"] != 1 {
		t.Errorf("halt metric = %v", m.halts)
	}
	if m.runs["weekly/"+statusFailed] != 1 {
		t.Errorf("run metric = %v", m.runs)
	}
	if rec.Status != statusFailed || rec.Error == "" {
		t.Errorf("record = %+v, want failed with error", rec)
	}
	if len(arch.stored) != 1 || arch.stored[0].Status != statusFailed {
		t.Errorf("failed run not archived: %+v", arch.stored)
	}
	if arch.envelopes[0].Header.Title != "" {
		t.Error("failed run archived with a non-empty envelope")
	}
	if len(pub.published) != 0 {
		t.Error("failed run must not be published")
	}
}

func TestRunHaltsWhenUncountedLoadInflatesSnapshot(t *testing.T) {
	// a swim carries real hours and load into the snapshot but never
	// into the counted recompute, so the cross-check must diverge
	api := happyAPI()
	full := api.acts
	api.acts = func() ([]models.ActivityRecord, error) {
		recs, _ := full()
		swim := models.ActivityRecord{
			ID:           "s1",
			SportType:    "Swim",
			StartLocal:   time.Date(2026, 8, 6, 7, 0, 0, 0, time.UTC),
			MovingTime:   3600,
			Distance:     2000,
			TrainingLoad: 50,
		}
		return append(recs, swim), nil
	}
	ing, m := newTestIngestor(t, api, &stubSource{name: "cache"}, 0, false)
	runner, _, _, _ := newTestRunner(t, ing, m, RunnerConfig{})

	_, _, err := runner.Run(context.Background(), "weekly", "json")
	var halt *models.IntegrityHaltError
	if !errors.As(err, &halt) {
		t.Fatalf("err = %v, want IntegrityHaltError", err)
	}
	if halt.DeltaHours != -1.0 {
		t.Errorf("DeltaHours = %v, want -1.0 for the uncounted hour", halt.DeltaHours)
	}
	if m.halts["integrity"] != 1 {
		t.Errorf("halt metric = %v", m.halts)
	}
}

func TestRunHaltsOnDataUnavailable(t *testing.T) {
	m := &stubMetrics{}
	cause := &models.DataUnavailableError{Dataset: dsActivities, Attempts: 3, Err: errors.New("boom")}
	runner, _, _, _ := newTestRunner(t, fixedIngestor{err: cause}, m, RunnerConfig{})

	_, _, err := runner.Run(context.Background(), "weekly", "json")
	var dua *models.DataUnavailableError
	if !errors.As(err, &dua) {
		t.Fatalf("err = %v, want DataUnavailableError", err)
	}
	if m.halts["data"] != 1 {
		t.Errorf("halt metric = %v", m.halts)
	}
}

func TestRunFailsValidationWhenZonesMissing(t *testing.T) {
	start := time.Date(2026, 8, 5, 8, 0, 0, 0, time.UTC)
	shortStart := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	shortEnd := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	longStart := time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC)
	short := []models.ActivityRecord{ride("r1", start, 3600, 100)}

	in := models.IngestResult{
		ReportType: "weekly",
		AthleteID:  "42",
		Timezone:   "UTC",
		Profile:    models.AthleteProfile{ID: "42", Name: "A", Timezone: "UTC"},
		ShortStart: shortStart,
		ShortEnd:   shortEnd,
		LongStart:  longStart,
		LongEnd:    shortEnd,
		Short:      short,
		Long:       short,
		Snapshot:   models.SnapshotTotals{Hours: 1.0, Load: 100, DistanceKm: 10.0, Count: 1},
		DailyShort: features.BuildDailyLoads(short, shortStart, shortEnd),
		DailyLong:  features.BuildDailyLoads(short, longStart, shortEnd),
		DataSource: srcProviderFull,
	}
	m := &stubMetrics{}
	runner, _, _, _ := newTestRunner(t, fixedIngestor{res: in}, m, RunnerConfig{})

	_, _, err := runner.Run(context.Background(), "weekly", "json")
	var vfe *models.ValidationFailureError
	if !errors.As(err, &vfe) {
		t.Fatalf("err = %v, want ValidationFailureError", err)
	}
	if !strings.Contains(err.Error(), "zone distribution missing") {
		t.Errorf("failures = %v, want zone distribution failure", vfe.Failures)
	}
	if m.halts["validation"] != 1 {
		t.Errorf("halt metric = %v", m.halts)
	}
}

func TestRunTimeoutRecordsTimeoutHalt(t *testing.T) {
	m := &stubMetrics{}
	runner, _, _, _ := newTestRunner(t, stalledIngestor{}, m, RunnerConfig{RunTimeout: 15 * time.Millisecond})

	_, _, err := runner.Run(context.Background(), "weekly", "json")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if m.halts["timeout"] != 1 {
		t.Errorf("halt metric = %v", m.halts)
	}
}
