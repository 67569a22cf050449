package features

import (
	"testing"

	"LoadLedger/internal/domain/models"
)

func TestSumZoneSecondsRaggedRows(t *testing.T) {
	records := []models.ActivityRecord{
		{PowerZones: []float64{100, 200}},
		{PowerZones: []float64{50, 50, 300}},
	}
	got := SumZoneSeconds(records, ModalityPower)
	if len(got) != 3 {
		t.Fatalf("expected 3 zones, got %d", len(got))
	}
	if got[0] != 150 || got[1] != 250 || got[2] != 300 {
		t.Fatalf("unexpected sums %v", got)
	}
}

func TestZonePercents(t *testing.T) {
	got := ZonePercents([]float64{400, 200, 400})
	if got[0] != 40 || got[1] != 20 || got[2] != 40 {
		t.Fatalf("unexpected percents %v", got)
	}
	if ZonePercents([]float64{0, 0}) != nil {
		t.Fatalf("expected nil for zero total")
	}
}

func TestHRBinnedPercentsWeightsByDuration(t *testing.T) {
	bounds := []float64{120, 150, 170}
	records := []models.ActivityRecord{
		{AverageHR: 110, MovingTime: 3600}, // bin 0
		{AverageHR: 150, MovingTime: 1800}, // bin 1, boundary inclusive
		{AverageHR: 180, MovingTime: 1800}, // bin 3, above last bound
		{AverageHR: 0, MovingTime: 3600},   // skipped
	}
	got := HRBinnedPercents(records, bounds)
	if len(got) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(got))
	}
	if got[0] != 50 || got[1] != 25 || got[2] != 0 || got[3] != 25 {
		t.Fatalf("unexpected split %v", got)
	}
}

func TestHRBinnedPercentsNoQualifyingRecords(t *testing.T) {
	records := []models.ActivityRecord{{AverageHR: 0, MovingTime: 100}}
	if got := HRBinnedPercents(records, []float64{120}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
