package models

import (
	"sort"
	"time"
)

// DailyLoadAggregate maps calendar dates to summed training load over a
// fixed window. It is rebuilt in full whenever the underlying activity
// set changes, never patched in place.
type DailyLoadAggregate struct {
	Start time.Time
	End   time.Time
	Loads map[string]float64 // "2006-01-02" -> load
}

// Dates returns the aggregate's keys in ascending calendar order.
func (d DailyLoadAggregate) Dates() []string {
	keys := make([]string, 0, len(d.Loads))
	for k := range d.Loads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Series returns daily loads ordered by date.
func (d DailyLoadAggregate) Series() []float64 {
	dates := d.Dates()
	out := make([]float64, 0, len(dates))
	for _, k := range dates {
		out = append(out, d.Loads[k])
	}
	return out
}

// Total sums the aggregate.
func (d DailyLoadAggregate) Total() float64 {
	var sum float64
	for _, v := range d.Loads {
		sum += v
	}
	return sum
}

// ZoneDistribution is a per-modality percentage split across training zones.
type ZoneDistribution struct {
	Modality string    `json:"modality"` // "power", "hr", "pace"
	Percent  []float64 `json:"percent"`  // per zone, low to high
	Source   string    `json:"source"`   // strategy that produced the split
}

// SnapshotTotals are window totals as the acquisition layer saw them.
type SnapshotTotals struct {
	Hours      float64 `json:"hours"`
	Load       float64 `json:"load"`
	DistanceKm float64 `json:"distanceKm"`
	Count      int     `json:"count"`
}

// CanonicalTotals is the single authoritative set of window totals. Once
// locked by the reconciler it cannot be replaced; every report section
// must agree with it.
type CanonicalTotals struct {
	Hours      float64 `json:"hours"`
	Load       float64 `json:"load"`
	DistanceKm float64 `json:"distanceKm"`
	EventCount int     `json:"eventCount"`
	Validated  bool    `json:"validated"`
	Source     string  `json:"source"` // "integrity" or "event_filtered"

	locked bool
}

// Locked reports whether the totals have been sealed by the reconciler.
func (t *CanonicalTotals) Locked() bool { return t.locked }

// Lock seals the totals against further replacement.
func (t *CanonicalTotals) Lock() { t.locked = true }

// Replace swaps in new totals. Replacing locked totals is a programming
// error and fails loudly rather than silently forking the report.
func (t *CanonicalTotals) Replace(hours, load, distanceKm float64, eventCount int, source string, validated bool) error {
	if t.locked {
		return ErrTotalsLocked
	}
	t.Hours = hours
	t.Load = load
	t.DistanceKm = distanceKm
	t.EventCount = eventCount
	t.Source = source
	t.Validated = validated
	return nil
}
