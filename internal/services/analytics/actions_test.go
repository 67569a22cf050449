package analytics

import (
	"testing"

	"LoadLedger/internal/domain/models"
)

func TestBuildActionsOrdersByPriority(t *testing.T) {
	metrics := models.ReportMetrics{Derived: []models.DerivedMetric{
		{Name: models.MetricMonotony, Defined: true, Classification: "moderate", Implication: "insert an easy or rest day"},
		{Name: models.MetricACWR, Defined: true, Classification: "overload", Implication: "cut load and recover"},
	}}
	forecast := &models.ForecastProjection{ProjectedPhase: models.ProjectedRecovery}

	actions := BuildActions(metrics, forecast)
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %+v", actions)
	}
	if actions[0].Priority != "high" || actions[0].Metric != models.MetricACWR {
		t.Fatalf("overload must sort first, got %+v", actions[0])
	}
	if actions[1].Priority != "medium" || actions[1].Metric != models.MetricMonotony {
		t.Fatalf("unexpected second action %+v", actions[1])
	}
	if actions[2].Metric != "forecast" || actions[2].Priority != "low" {
		t.Fatalf("forecast advice must sort last, got %+v", actions[2])
	}
}

func TestBuildActionsSkipsHealthyAndUndefined(t *testing.T) {
	metrics := models.ReportMetrics{Derived: []models.DerivedMetric{
		{Name: models.MetricACWR, Defined: true, Classification: "productive", Implication: "hold the current build"},
		{Name: models.MetricFatigueTrend, Defined: false, Classification: "undefined"},
		{Name: models.MetricStrain, Defined: true, Classification: "high"},
	}}
	actions := BuildActions(metrics, nil)
	if actions == nil {
		t.Fatalf("actions must never be nil")
	}
	if len(actions) != 0 {
		t.Fatalf("expected no actions, got %+v", actions)
	}
}

func TestBuildActionsFlagsPoorRecovery(t *testing.T) {
	metrics := models.ReportMetrics{
		Correlation: models.CorrelationMetrics{Defined: true, RecoveryFlag: "poor", HRVLoadR: 0.4},
	}
	actions := BuildActions(metrics, nil)
	if len(actions) != 1 || actions[0].Metric != "hrv_load_correlation" {
		t.Fatalf("expected recovery correlation action, got %+v", actions)
	}
	if actions[0].Priority != "medium" {
		t.Fatalf("unexpected priority %+v", actions[0])
	}
}

func TestBuildActionsOverreachingForecast(t *testing.T) {
	forecast := &models.ForecastProjection{ProjectedPhase: models.ProjectedOverreaching}
	actions := BuildActions(models.ReportMetrics{}, forecast)
	if len(actions) != 1 || actions[0].Priority != "high" {
		t.Fatalf("expected high-priority forecast action, got %+v", actions)
	}
}
