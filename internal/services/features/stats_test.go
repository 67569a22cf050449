package features

import (
	"testing"

	"LoadLedger/internal/domain/models"
)

func TestPearsonCorrelationPerfect(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 4, 6, 8, 10}
	r, ok := PearsonCorrelation(xs, ys)
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqual(r, 1) {
		t.Fatalf("expected r=1, got %v", r)
	}
}

func TestPearsonCorrelationInverse(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{8, 6, 4, 2}
	r, ok := PearsonCorrelation(xs, ys)
	if !ok || !almostEqual(r, -1) {
		t.Fatalf("expected r=-1, got %v ok=%v", r, ok)
	}
}

func TestPearsonCorrelationDegenerate(t *testing.T) {
	if _, ok := PearsonCorrelation([]float64{1, 1, 1}, []float64{2, 3, 4}); ok {
		t.Fatalf("zero variance must not correlate")
	}
	if _, ok := PearsonCorrelation([]float64{1}, []float64{2}); ok {
		t.Fatalf("single pair must not correlate")
	}
}

func TestLoadOutliersFlagsExtremes(t *testing.T) {
	agg := models.DailyLoadAggregate{
		Loads: map[string]float64{
			"2026-08-01": 50,
			"2026-08-02": 52,
			"2026-08-03": 48,
			"2026-08-04": 51,
			"2026-08-05": 49,
			"2026-08-06": 300, // spike
		},
	}
	out := LoadOutliers(agg)
	if len(out) != 1 {
		t.Fatalf("expected 1 outlier, got %d (%v)", len(out), out)
	}
	if out[0].Date != "2026-08-06" || out[0].Direction != "high" {
		t.Fatalf("unexpected outlier %+v", out[0])
	}
}

func TestLoadOutliersZeroSpread(t *testing.T) {
	agg := models.DailyLoadAggregate{
		Loads: map[string]float64{
			"2026-08-01": 50,
			"2026-08-02": 50,
			"2026-08-03": 50,
		},
	}
	if out := LoadOutliers(agg); out != nil {
		t.Fatalf("expected nil, got %v", out)
	}
}
