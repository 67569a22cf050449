package analytics

import (
	"context"
	"errors"
	"math"
	"testing"

	"LoadLedger/internal/domain/models"
)

func gateTotals() models.CanonicalTotals {
	tot := models.CanonicalTotals{
		Hours: 10, Load: 500, DistanceKm: 100, EventCount: 5,
		Validated: true, Source: "integrity",
	}
	tot.Lock()
	return tot
}

func validEnvelope() models.ReportEnvelope {
	derived := make([]models.DerivedMetric, 0, len(coreMetrics))
	for _, name := range coreMetrics {
		derived = append(derived, models.DerivedMetric{Name: name, Value: 1.0, Defined: true, Classification: "optimal"})
	}
	return models.ReportEnvelope{
		Header: models.ReportHeader{
			Title: "Weekly Training Report", Athlete: "Athlete", AthleteID: "i1",
			Timezone: "Europe/Berlin", ReportType: "weekly", Period: "2026-08-03 .. 2026-08-10",
		},
		Summary: models.ReportSummary{TotalHours: 10, TotalLoad: 500, DistanceKm: 100, EventCount: 5, Period: "2026-08-03 .. 2026-08-10"},
		Metrics: models.ReportMetrics{Derived: derived},
		Zones:   []models.ZoneDistribution{{Modality: "power", Percent: []float64{50, 30, 20}, Source: "zone_columns"}},
		Phases:  make([]models.Phase, 0),
		Actions: make([]models.CoachingAction, 0),
		Footer:  models.ReportFooter{AuditPrecision: "full", DataSource: "api", Validated: true},
	}
}

func hasFailure(t *testing.T, err error, want string) {
	t.Helper()
	var vf *models.ValidationFailureError
	if !errors.As(err, &vf) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	for _, f := range vf.Failures {
		if f == want {
			return
		}
	}
	t.Fatalf("failure %q not found in %v", want, vf.Failures)
}

func TestGatePassesCompleteEnvelope(t *testing.T) {
	res, err := NewValidationGate().Validate(context.Background(), "run-1", validEnvelope(), gateTotals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cl := res.Compliance
	if cl.Framework != FrameworkTag || cl.ValidationStatus != "passed" || cl.RunID != "run-1" {
		t.Fatalf("unexpected compliance log %+v", cl)
	}
	if len(cl.CheckedSections) != 6 {
		t.Fatalf("expected 6 checked sections, got %v", cl.CheckedSections)
	}
	if !cl.VarianceOK {
		t.Fatalf("expected variance check to pass")
	}
	found := false
	for _, m := range cl.VerifiedMetrics {
		if m == models.MetricACWR {
			found = true
		}
	}
	if !found {
		t.Fatalf("acwr missing from verified metrics %v", cl.VerifiedMetrics)
	}
	if cl.CheckedAt.IsZero() {
		t.Fatalf("compliance log must be timestamped")
	}
}

func TestGateRejectsMissingCoreMetric(t *testing.T) {
	env := validEnvelope()
	kept := env.Metrics.Derived[:0]
	for _, m := range env.Metrics.Derived {
		if m.Name != models.MetricACWR {
			kept = append(kept, m)
		}
	}
	env.Metrics.Derived = kept

	_, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals())
	hasFailure(t, err, "core metric acwr missing")
}

func TestGateRejectsNonFiniteCoreMetric(t *testing.T) {
	env := validEnvelope()
	for i := range env.Metrics.Derived {
		if env.Metrics.Derived[i].Name == models.MetricStrain {
			env.Metrics.Derived[i].Value = math.NaN()
		}
	}
	_, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals())
	hasFailure(t, err, "core metric strain not finite")
}

func TestGateRejectsNonFiniteSecondaryMetric(t *testing.T) {
	env := validEnvelope()
	env.Metrics.Derived = append(env.Metrics.Derived, models.DerivedMetric{
		Name: models.MetricStressTol, Value: math.Inf(1), Defined: true,
	})
	_, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals())
	hasFailure(t, err, "metric stress_tolerance not finite")
}

func TestGateRejectsUnlockedTotals(t *testing.T) {
	unlocked := models.CanonicalTotals{Hours: 10, Load: 500, DistanceKm: 100, Validated: true, Source: "integrity"}
	_, err := NewValidationGate().Validate(context.Background(), "run-1", validEnvelope(), unlocked)
	hasFailure(t, err, "canonical totals not locked")
}

func TestGateRejectsSummaryDrift(t *testing.T) {
	env := validEnvelope()
	env.Summary.TotalLoad = 450

	_, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals())
	hasFailure(t, err, "summary totals diverge from canonical totals beyond 3%")
}

func TestGateAllowsSmallSummaryVariance(t *testing.T) {
	env := validEnvelope()
	env.Summary.TotalHours = 10.2 // 2% off canonical

	if _, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals()); err != nil {
		t.Fatalf("2%% variance must pass, got %v", err)
	}
}

func TestGateRejectsIncompleteSections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ReportEnvelope)
		want   string
	}{
		{"empty title", func(e *models.ReportEnvelope) { e.Header.Title = "" }, "header incomplete"},
		{"missing athlete id", func(e *models.ReportEnvelope) { e.Header.AthleteID = "" }, "athlete id missing"},
		{"missing timezone", func(e *models.ReportEnvelope) { e.Header.Timezone = "" }, "athlete timezone missing"},
		{"no zones", func(e *models.ReportEnvelope) { e.Zones = nil }, "zone distribution missing"},
		{"no period", func(e *models.ReportEnvelope) { e.Summary.Period = "" }, "summary incomplete"},
		{"nil phases", func(e *models.ReportEnvelope) { e.Phases = nil }, "phases section missing"},
		{"nil actions", func(e *models.ReportEnvelope) { e.Actions = nil }, "actions section missing"},
		{"bare footer", func(e *models.ReportEnvelope) { e.Footer.DataSource = "" }, "footer incomplete"},
	}
	for _, tt := range tests {
		env := validEnvelope()
		tt.mutate(&env)
		_, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals())
		if err == nil {
			t.Errorf("%s: expected rejection", tt.name)
			continue
		}
		hasFailure(t, err, tt.want)
	}
}

func TestGateRejectsNegativeTotals(t *testing.T) {
	env := validEnvelope()
	env.Summary.DistanceKm = -1

	_, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals())
	hasFailure(t, err, "summary totals negative")
}

func TestGateCollectsAllFailures(t *testing.T) {
	env := validEnvelope()
	env.Header.Title = ""
	env.Zones = nil
	env.Metrics.Derived = nil

	_, err := NewValidationGate().Validate(context.Background(), "run-1", env, gateTotals())
	var vf *models.ValidationFailureError
	if !errors.As(err, &vf) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(vf.Failures) < 3 {
		t.Fatalf("expected every failure reported, got %v", vf.Failures)
	}
}
