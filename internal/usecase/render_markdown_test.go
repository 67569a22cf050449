package usecase

import (
	"strings"
	"testing"
	"time"

	"LoadLedger/internal/domain/models"
)

func fixtureEnvelope() models.ReportEnvelope {
	gen := time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC)
	return models.ReportEnvelope{
		Header: models.ReportHeader{
			Title:       "Weekly Training Report",
			Athlete:     "Test Athlete",
			AthleteID:   "42",
			Timezone:    "UTC",
			ReportType:  "weekly",
			Period:      "2026-08-03 .. 2026-08-09",
			GeneratedAt: gen,
		},
		Summary: models.ReportSummary{
			TotalHours: 1.5,
			TotalLoad:  85,
			DistanceKm: 18.0,
			EventCount: 2,
			Period:     "2026-08-03 .. 2026-08-09",
		},
		Metrics: models.ReportMetrics{
			Derived: []models.DerivedMetric{
				{Name: models.MetricACWR, Value: 1.13, Defined: true, Classification: "productive", Interpretation: "load is building"},
				{Name: models.MetricFatigueTrend, Defined: false},
			},
			Load:       models.LoadMetrics{CTL: 71, ATL: 63, TSB: 8, WeeklyLoad: 85, Source: "wellness"},
			Adaptation: models.AdaptationMetrics{StressTolerance: 1.1, RecoveryIndex: 0.9, FormState: "neutral"},
			Trend:      models.TrendMetrics{FatigueTrendPct: -4.2, Defined: true, Method: "mean_blocks", Direction: "declining"},
		},
		Zones: []models.ZoneDistribution{
			{Modality: "power", Percent: []float64{55, 25, 20}, Source: "zone_columns"},
		},
		Phases: []models.Phase{
			{
				Label:     models.PhaseBuild,
				StartDate: time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
				Weeks:     3,
				TotalLoad: 250,
				EndCTL:    70.4,
				EndTSB:    -3.1,
				Method:    "acwr_band",
			},
		},
		Actions: []models.CoachingAction{
			{Priority: "high", Metric: models.MetricACWR, Advice: "hold load steady this week"},
		},
		Wellness: &models.WellnessSummary{
			Defined: true, RestingHR7: 47.2, HRVTrend: 1.5,
			MeanFatigue: 2.1, MeanStress: 1.8, MeanReadiness: 7.4,
			RestDays: 4, CTL: 71, ATL: 63, TSB: 8,
		},
		Outliers: []models.LoadOutlier{
			{Date: "2026-08-05", Load: 180, Direction: "high"},
		},
		Forecast: &models.ForecastProjection{
			HorizonDays: 14,
			Daily: []models.DailyProjection{
				{Date: time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC), Load: 60, CTL: 71.2, ATL: 62.1, TSB: 9.1},
				{Date: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), Load: 0, CTL: 68.0, ATL: 55.0, TSB: 13.0},
			},
			ProjectedPhase: models.PhaseTaper,
			LoadTrend:      "declining",
			SeedSource:     "wellness",
			PlannedCount:   1,
		},
		Events: []models.EventSummary{
			{
				ID: "e1", Name: "Morning Ride", SportType: "Ride",
				Start: time.Date(2026, 8, 5, 8, 0, 0, 0, time.UTC),
				Hours: 1.0, Load: 55, DistanceKm: 12.3,
			},
		},
		Footer: models.ReportFooter{
			AuditPrecision: "full",
			DataSource:     "provider_full",
			Validated:      true,
			ChosenSources:  map[string]string{"wellness": "provider", "activities": "provider_full"},
			Warnings:       []string{"planned events unavailable; projecting zero future load"},
		},
	}
}

func TestRenderMarkdownSectionsInOrder(t *testing.T) {
	md := RenderMarkdown(fixtureEnvelope())

	sections := []string{
		"# Weekly Training Report",
		"## Summary",
		"## Metrics",
		"## Intensity Distribution",
		"## Training Phases",
		"## Coaching Actions",
		"## Wellness",
		"## Load Outliers",
		"## Forecast",
		"## Recent Events",
		"\n---\n",
	}
	pos := -1
	for _, s := range sections {
		idx := strings.Index(md, s)
		if idx < 0 {
			t.Fatalf("section %q missing from rendered markdown", s)
		}
		if idx < pos {
			t.Errorf("section %q rendered out of order", s)
		}
		pos = idx
	}
}

func TestRenderMarkdownTables(t *testing.T) {
	md := RenderMarkdown(fixtureEnvelope())

	for _, want := range []string{
		"| Metric | Value | Classification | Interpretation |",
		"| acwr | 1.13 | productive | load is building |",
		"| fatigue_trend | n/a | - | - |",
		"| Phase | From | To | Weeks | Load | End CTL | End TSB |",
		"| Build | 2026-07-13 | 2026-08-02 | 3 | 250 | 70.4 | -3.1 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("rendered markdown missing row %q", want)
		}
	}
}

func TestRenderMarkdownBodyLines(t *testing.T) {
	md := RenderMarkdown(fixtureEnvelope())

	for _, want := range []string{
		"**Athlete:** Test Athlete (42)",
		"**Period:** 2026-08-03 .. 2026-08-09",
		"**Total hours:** 1.50",
		"**Total load:** 85",
		"**Sessions:** 2",
		"**Fatigue trend:** declining -4.2% (mean_blocks)",
		"**power:** Z1 55.0%, Z2 25.0%, Z3 20.0% (zone_columns)",
		"- **high** (acwr): hold load steady this week",
		"**Rest days:** 4",
		"- 2026-08-05: load 180 (high)",
		"**Horizon:** 14 days, load declining, projected phase Taper",
		"**Projected 2026-08-24:** CTL 68.0, ATL 55.0, TSB 13.0",
		"- 2026-08-05 Ride \"Morning Ride\": 1.0h, load 55, 12.3 km",
		"**Audit precision:** full | **Data source:** provider_full | **Validated:** yes",
		"**Sources:** activities=provider_full, wellness=provider",
		"- warning: planned events unavailable; projecting zero future load",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("rendered markdown missing line %q", want)
		}
	}
}

func TestRenderMarkdownOmitsEmptySections(t *testing.T) {
	env := fixtureEnvelope()
	env.Zones = nil
	env.Phases = nil
	env.Actions = nil
	env.Wellness = nil
	env.Cycling = nil
	env.Outliers = nil
	env.Forecast = nil
	env.Events = nil
	env.Footer.ChosenSources = nil
	env.Footer.Warnings = nil

	md := RenderMarkdown(env)

	for _, absent := range []string{
		"## Intensity Distribution",
		"## Coaching Actions",
		"## Wellness",
		"## Cycling",
		"## Load Outliers",
		"## Forecast",
		"## Recent Events",
		"**Sources:**",
		"- warning:",
	} {
		if strings.Contains(md, absent) {
			t.Errorf("rendered markdown should omit %q for an empty envelope", absent)
		}
	}
	if !strings.Contains(md, "No complete training weeks in the window.") {
		t.Errorf("empty phase list should render the placeholder line")
	}
	if !strings.Contains(md, "## Summary") {
		t.Errorf("summary section must always render")
	}
}

func TestRenderMarkdownCyclingSection(t *testing.T) {
	env := fixtureEnvelope()
	env.Cycling = &models.CyclingSummary{Rides: 3, AvgIF: 0.82, AvgHR: 142, HighAerobicRides: 1, VO2Max: 48.5}

	md := RenderMarkdown(env)

	for _, want := range []string{
		"## Cycling",
		"**Rides:** 3",
		"**Average IF:** 0.82",
		"**Average HR:** 142",
		"**High-aerobic rides:** 1 (VO2max est. 48.5)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("rendered markdown missing cycling line %q", want)
		}
	}
}
