package features

import (
	"testing"
	"time"

	"LoadLedger/internal/domain/models"
)

func rec(id, sport string, start time.Time, moving float64) models.ActivityRecord {
	return models.ActivityRecord{ID: id, SportType: sport, StartLocal: start, MovingTime: moving}
}

func TestCountedRecordsFiltersSportAndDuration(t *testing.T) {
	start := time.Date(2026, 8, 10, 7, 0, 0, 0, time.UTC)
	in := []models.ActivityRecord{
		rec("a", "Ride", start, 3600),
		rec("b", "Swim", start, 3600),            // not a counted sport
		rec("c", "Run", start.Add(time.Hour), 0), // no duration
		rec("d", "TrailRun", start.Add(2*time.Hour), 1800),
	}
	out := CountedRecords(in)
	if len(out) != 2 {
		t.Fatalf("counted %d records, want 2: %+v", len(out), out)
	}
	if out[0].ID != "a" || out[1].ID != "d" {
		t.Errorf("kept ids %s,%s", out[0].ID, out[1].ID)
	}
}

func TestCountedRecordsDedupsByIDAndStart(t *testing.T) {
	start := time.Date(2026, 8, 10, 7, 0, 0, 0, time.UTC)
	in := []models.ActivityRecord{
		rec("a", "Ride", start, 3600),
		rec("a", "Ride", start, 3600),                // same id+start, dropped
		rec("a", "Ride", start.Add(time.Hour), 3600), // same id, later start, kept
	}
	out := CountedRecords(in)
	if len(out) != 2 {
		t.Fatalf("counted %d records, want 2", len(out))
	}
}

func TestEventRecordsRequireRealWork(t *testing.T) {
	start := time.Date(2026, 8, 10, 7, 0, 0, 0, time.UTC)
	mk := func(id, origin string, moving, load float64) models.ActivityRecord {
		r := rec(id, "Ride", start, moving)
		r.Origin = origin
		r.TrainingLoad = load
		return r
	}
	in := []models.ActivityRecord{
		mk("a", "event", 3600, 50),
		mk("a", "event", 3600, 50), // duplicate id
		mk("b", "upload", 3600, 50),
		mk("c", "event", 60, 50), // too short
		mk("d", "event", 3600, 0),
	}
	out := EventRecords(in)
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("event records = %+v, want only a", out)
	}
}
