package analytics

import (
	"context"
	"testing"

	"LoadLedger/internal/domain/models"
)

func TestForecastUnloadedFormRises(t *testing.T) {
	in := models.IngestResult{ShortEnd: day(2026, 8, 10)}
	integ := models.IntegrityResult{Wellness: models.WellnessSummary{Defined: true, CTL: 50, ATL: 50}}

	res, err := NewForecastProjector().Project(context.Background(), in, integ, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := res.Projection
	if p.HorizonDays != 14 || len(p.Daily) != 14 {
		t.Fatalf("unexpected horizon %+v", p)
	}
	if p.SeedSource != "wellness" {
		t.Fatalf("expected wellness seed, got %s", p.SeedSource)
	}
	last := p.Daily[len(p.Daily)-1]
	if last.TSB <= 0 {
		t.Fatalf("fatigue must decay faster than fitness, got TSB %v", last.TSB)
	}
	if last.ATL >= last.CTL {
		t.Fatalf("expected ATL below CTL after unloaded horizon, got %+v", last)
	}
	if p.ProjectedPhase != models.ProjectedRecovery {
		t.Fatalf("expected recovery phase, got %s", p.ProjectedPhase)
	}
	if p.LoadTrend != "declining" {
		t.Fatalf("expected declining trend, got %s", p.LoadTrend)
	}
}

func TestForecastAppliesPlannedLoad(t *testing.T) {
	today := day(2026, 8, 10)
	in := models.IngestResult{
		ShortEnd: today,
		Planned:  []models.PlannedEvent{{Date: today.AddDate(0, 0, 1), Name: "intervals", ExpectedLoad: 100}},
	}
	integ := models.IntegrityResult{Wellness: models.WellnessSummary{Defined: true, CTL: 50, ATL: 50}}

	res, err := NewForecastProjector().Project(context.Background(), in, integ, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := res.Projection.Daily[0]
	if d.Load != 100 {
		t.Fatalf("planned load must land on its date, got %+v", d)
	}
	if d.ATL != 57.1 || d.CTL != 51.2 {
		t.Fatalf("unexpected recursion step %+v", d)
	}
	if d.TSB != -6.0 {
		t.Fatalf("expected TSB -6.0, got %v", d.TSB)
	}
	if res.Projection.ProjectedPhase != models.ProjectedProductive {
		t.Fatalf("expected productive phase, got %s", res.Projection.ProjectedPhase)
	}
}

func TestForecastSeedFallsBackToEventSnapshot(t *testing.T) {
	in := models.IngestResult{
		ShortEnd: day(2026, 8, 10),
		Long: []models.ActivityRecord{
			{ID: "a1", StartLocal: day(2026, 8, 1), CTL: 60, ATL: 55},
			{ID: "a2", StartLocal: day(2026, 8, 6), CTL: 65, ATL: 50},
		},
	}
	res, err := NewForecastProjector().Project(context.Background(), in, models.IntegrityResult{}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Projection.SeedSource != "event" {
		t.Fatalf("expected event seed, got %s", res.Projection.SeedSource)
	}
	// 65 decayed one unloaded day
	if res.Projection.Daily[0].CTL != 63.5 {
		t.Fatalf("seed must come from the latest snapshot, got %+v", res.Projection.Daily[0])
	}
}

func TestForecastSeedDefaults(t *testing.T) {
	in := models.IngestResult{ShortEnd: day(2026, 8, 10)}
	res, err := NewForecastProjector().Project(context.Background(), in, models.IntegrityResult{}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Projection.SeedSource != "default" {
		t.Fatalf("expected default seed, got %s", res.Projection.SeedSource)
	}
	if res.Projection.Daily[0].CTL != 68.3 {
		t.Fatalf("expected default CTL decay step, got %+v", res.Projection.Daily[0])
	}
}

func TestForecastHorizonFromPlanned(t *testing.T) {
	today := day(2026, 8, 10)
	planned := func(n int) []models.PlannedEvent {
		out := make([]models.PlannedEvent, n)
		for i := range out {
			out[i] = models.PlannedEvent{Date: today.AddDate(0, 0, i+1), ExpectedLoad: 50}
		}
		return out
	}
	tests := []struct {
		name    string
		planned []models.PlannedEvent
		want    int
	}{
		{"no plan defaults", nil, 14},
		{"short plan floors at a week", planned(3), 7},
		{"long plan stretches", planned(10), 10},
	}
	for _, tt := range tests {
		in := models.IngestResult{ShortEnd: today, Planned: tt.planned}
		res, err := NewForecastProjector().Project(context.Background(), in, models.IntegrityResult{}, 0)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if res.Projection.HorizonDays != tt.want {
			t.Errorf("%s: horizon = %d, want %d", tt.name, res.Projection.HorizonDays, tt.want)
		}
	}
}

func TestForecastHorizonOverrideWins(t *testing.T) {
	in := models.IngestResult{ShortEnd: day(2026, 8, 10)}
	res, err := NewForecastProjector().Project(context.Background(), in, models.IntegrityResult{}, 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Projection.HorizonDays != 21 {
		t.Fatalf("override must win, got %d", res.Projection.HorizonDays)
	}
}
