package analytics

import (
	"context"
	"errors"
	"testing"

	"LoadLedger/internal/domain/models"
)

func TestCheckBuildsCanonicalTotals(t *testing.T) {
	in := models.IngestResult{
		Short: []models.ActivityRecord{
			{ID: "a1", SportType: "Ride", StartLocal: day(2026, 8, 3), MovingTime: 7200, TrainingLoad: 100.4, Distance: 40000},
		},
		Snapshot: models.SnapshotTotals{Hours: 2.0, Load: 100, DistanceKm: 40.0, Count: 1},
	}
	res, err := NewIntegrityController().Check(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tot := res.Totals
	if tot.Hours != 2.0 || tot.Load != 100 || tot.DistanceKm != 40.0 || tot.EventCount != 1 {
		t.Fatalf("unexpected totals %+v", tot)
	}
	if tot.Source != "integrity" || tot.Validated || tot.Locked() {
		t.Fatalf("totals must arrive unvalidated and unlocked, got %+v", tot)
	}
}

func TestCheckHaltsOnSnapshotDrift(t *testing.T) {
	in := models.IngestResult{
		Short: []models.ActivityRecord{
			{ID: "a1", SportType: "Ride", StartLocal: day(2026, 8, 3), MovingTime: 7200, TrainingLoad: 100},
		},
		Snapshot: models.SnapshotTotals{Hours: 5.0, Load: 100},
	}
	_, err := NewIntegrityController().Check(context.Background(), in)
	var halt *models.IntegrityHaltError
	if !errors.As(err, &halt) {
		t.Fatalf("expected integrity halt, got %v", err)
	}
	if halt.DeltaHours != -3.0 {
		t.Fatalf("expected hour delta -3.0, got %v", halt.DeltaHours)
	}
}

func TestCheckWarnsOnStaleWellnessRange(t *testing.T) {
	in := models.IngestResult{
		ShortStart: day(2026, 8, 3),
		ShortEnd:   day(2026, 8, 10),
		Short: []models.ActivityRecord{
			{ID: "a1", SportType: "Ride", StartLocal: day(2026, 8, 3), MovingTime: 7200, TrainingLoad: 100.4, Distance: 40000},
		},
		Snapshot: models.SnapshotTotals{Hours: 2.0, Load: 100, DistanceKm: 40.0, Count: 1},
		Wellness: []models.WellnessRecord{
			{Date: day(2026, 6, 1), CTL: 70, ATL: 65},
			{Date: day(2026, 6, 20), CTL: 68, ATL: 60},
		},
	}
	res, err := NewIntegrityController().Check(context.Background(), in)
	if err != nil {
		t.Fatalf("stale wellness must stay soft: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if w == "wellness dates do not overlap the activity window" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a misalignment warning, got %v", res.Warnings)
	}

	// rows inside the window must not warn
	in.Wellness = []models.WellnessRecord{{Date: day(2026, 8, 5), CTL: 70, ATL: 65}}
	res, err = NewIntegrityController().Check(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, w := range res.Warnings {
		if w == "wellness dates do not overlap the activity window" {
			t.Fatalf("aligned wellness warned: %v", res.Warnings)
		}
	}
}

func TestCheckZeroTotalsDegrade(t *testing.T) {
	in := models.IngestResult{
		Short: []models.ActivityRecord{
			{ID: "a1", SportType: "Ride", StartLocal: day(2026, 8, 3), MovingTime: 10},
		},
		Snapshot: models.SnapshotTotals{Count: 1},
	}
	res, err := NewIntegrityController().Check(context.Background(), in)
	if err != nil {
		t.Fatalf("zero totals must degrade, not halt: %v", err)
	}
	if !res.Degraded {
		t.Fatalf("expected degraded result")
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning for zero totals")
	}
}

func TestZoneChainPrefersZoneColumns(t *testing.T) {
	records := []models.ActivityRecord{
		{PowerZones: []float64{1800, 1200, 600}, AverageHR: 140, MovingTime: 3600},
	}
	zones := zoneDistributions(records, models.AthleteProfile{HRZones: []float64{120, 150, 170}})
	if len(zones) != 1 {
		t.Fatalf("expected one distribution, got %d", len(zones))
	}
	z := zones[0]
	if z.Source != "zone_columns" || z.Modality != "power" {
		t.Fatalf("unexpected distribution %+v", z)
	}
	want := []float64{50, 33.3, 16.7}
	for i, p := range want {
		if z.Percent[i] != p {
			t.Fatalf("zone %d: got %v, want %v", i, z.Percent[i], p)
		}
	}
}

func TestZoneChainFallsBackToHRBins(t *testing.T) {
	records := []models.ActivityRecord{
		{AverageHR: 130, MovingTime: 3600},
		{AverageHR: 165, MovingTime: 1800},
	}
	zones := zoneDistributions(records, models.AthleteProfile{HRZones: []float64{120, 150, 170}})
	if len(zones) != 1 || zones[0].Source != "hr_binned" || zones[0].Modality != "hr" {
		t.Fatalf("unexpected distributions %+v", zones)
	}
	want := []float64{0, 66.7, 33.3, 0}
	for i, p := range want {
		if zones[0].Percent[i] != p {
			t.Fatalf("bin %d: got %v, want %v", i, zones[0].Percent[i], p)
		}
	}
}

func TestZoneChainFallsBackToProfile(t *testing.T) {
	records := []models.ActivityRecord{{MovingTime: 3600}}
	profile := models.AthleteProfile{HRZones: []float64{120, 150, 170}, ZoneProfile: []float64{55, 25, 20}}
	zones := zoneDistributions(records, profile)
	if len(zones) != 1 || zones[0].Source != "athlete_profile" {
		t.Fatalf("unexpected distributions %+v", zones)
	}
	if zones[0].Percent[0] != 55 {
		t.Fatalf("profile split must pass through, got %+v", zones[0].Percent)
	}
}

func TestCyclingSummary(t *testing.T) {
	records := []models.ActivityRecord{
		{SportType: "Ride", IntensityFactor: 0.8, AverageHR: 140, VO2Max: 45},
		{SportType: "Ride", IntensityFactor: 0.9, AverageHR: 150, VO2Max: 20},
		{SportType: "Run", IntensityFactor: 0.7, AverageHR: 160, VO2Max: 50},
	}
	cs := cyclingSummary(records)
	if cs.Rides != 2 {
		t.Fatalf("expected 2 rides, got %d", cs.Rides)
	}
	if cs.AvgIF != 0.85 || cs.AvgHR != 145 {
		t.Fatalf("unexpected averages %+v", cs)
	}
	if cs.HighAerobicRides != 1 || cs.VO2Max != 45 {
		t.Fatalf("unexpected aerobic summary %+v", cs)
	}
}

func TestWellnessSummary(t *testing.T) {
	wellness := []models.WellnessRecord{
		{Date: day(2026, 8, 3), RestingHR: 50, HRV: 95, Fatigue: 3, Stress: 2, Readiness: 80, CTL: 75, ATL: 60},
		{Date: day(2026, 8, 4), RestingHR: 52, HRV: 90, Stress: 4, Readiness: 70},
	}
	daily := aggConsecutive(day(2026, 8, 3), []float64{100, 0, 50})
	ws := wellnessSummary(wellness, daily, day(2026, 8, 5))
	if !ws.Defined {
		t.Fatalf("expected defined summary")
	}
	if ws.RestingHR7 != 51.0 {
		t.Fatalf("expected resting HR 51.0, got %v", ws.RestingHR7)
	}
	if ws.HRVTrend != -5.0 {
		t.Fatalf("expected HRV trend -5.0, got %v", ws.HRVTrend)
	}
	if ws.MeanFatigue != 3.0 {
		t.Fatalf("zero fatigue rows must not dilute the mean, got %v", ws.MeanFatigue)
	}
	if ws.CTL != 75 || ws.ATL != 60 || ws.TSB != 15.0 {
		t.Fatalf("expected latest positive CTL/ATL row, got %+v", ws)
	}
	if ws.RestDays != 1 {
		t.Fatalf("expected 1 rest day before today, got %d", ws.RestDays)
	}
}

func TestWellnessSummaryEmpty(t *testing.T) {
	ws := wellnessSummary(nil, models.DailyLoadAggregate{}, day(2026, 8, 5))
	if ws.Defined {
		t.Fatalf("empty wellness must stay undefined")
	}
}

func TestHRVLoadCorrelation(t *testing.T) {
	start := day(2026, 8, 3)
	daily := aggConsecutive(start, []float64{10, 50, 90, 130, 170})

	byDate := make(map[string]models.WellnessRecord)
	for i := 1; i <= 5; i++ {
		d := start.AddDate(0, 0, i)
		byDate[d.Format("2006-01-02")] = models.WellnessRecord{Date: d, HRV: 100 - daily.Loads[start.AddDate(0, 0, i-1).Format("2006-01-02")]/2}
	}

	cm := hrvLoadCorrelation(byDate, daily)
	if !cm.Defined || cm.SampleDays != 5 {
		t.Fatalf("expected 5 defined pairs, got %+v", cm)
	}
	if cm.HRVLoadR != -1.0 {
		t.Fatalf("expected perfect negative correlation, got %v", cm.HRVLoadR)
	}
	if cm.RecoveryFlag != "adaptive" {
		t.Fatalf("expected adaptive flag, got %s", cm.RecoveryFlag)
	}
}

func TestHRVLoadCorrelationPoorFlag(t *testing.T) {
	start := day(2026, 8, 3)
	daily := aggConsecutive(start, []float64{10, 50, 90, 130, 170})

	byDate := make(map[string]models.WellnessRecord)
	for i := 1; i <= 5; i++ {
		d := start.AddDate(0, 0, i)
		byDate[d.Format("2006-01-02")] = models.WellnessRecord{Date: d, HRV: daily.Loads[start.AddDate(0, 0, i-1).Format("2006-01-02")] / 2}
	}

	cm := hrvLoadCorrelation(byDate, daily)
	if cm.RecoveryFlag != "poor" {
		t.Fatalf("rising HRV with load must flag poor, got %s", cm.RecoveryFlag)
	}
}

func TestHRVLoadCorrelationNeedsFivePairs(t *testing.T) {
	start := day(2026, 8, 3)
	daily := aggConsecutive(start, []float64{10, 50, 90})

	byDate := make(map[string]models.WellnessRecord)
	for i := 1; i <= 3; i++ {
		d := start.AddDate(0, 0, i)
		byDate[d.Format("2006-01-02")] = models.WellnessRecord{Date: d, HRV: 60}
	}

	cm := hrvLoadCorrelation(byDate, daily)
	if cm.Defined {
		t.Fatalf("three pairs must stay undefined, got %+v", cm)
	}
	if cm.RecoveryFlag != "neutral" {
		t.Fatalf("expected neutral flag, got %s", cm.RecoveryFlag)
	}
}
