package features

import "LoadLedger/internal/domain/models"

// CountedSports are the sport types that participate in window totals.
var CountedSports = map[string]bool{
	"Ride":        true,
	"VirtualRide": true,
	"GravelRide":  true,
	"Hike":        true,
	"Run":         true,
	"TrailRun":    true,
	"Walk":        true,
}

// CountedRecords filters to counted sports with positive duration and
// deduplicates by (id, start), keeping the first occurrence.
func CountedRecords(records []models.ActivityRecord) []models.ActivityRecord {
	type key struct {
		id    string
		start int64
	}
	seen := make(map[key]bool, len(records))
	out := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if !CountedSports[r.SportType] || r.MovingTime <= 0 {
			continue
		}
		k := key{r.ID, r.StartLocal.Unix()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// EventRecords filters to provider calendar events that carry real work:
// origin "event", duration over 120 s, positive load. Deduplicated by id.
func EventRecords(records []models.ActivityRecord) []models.ActivityRecord {
	seen := make(map[string]bool, len(records))
	out := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.Origin != "event" || r.MovingTime <= 120 || r.TrainingLoad <= 0 {
			continue
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
