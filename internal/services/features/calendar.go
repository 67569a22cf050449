package features

import (
	"sort"
	"time"

	"LoadLedger/internal/domain/models"
	"LoadLedger/pkg/util"
)

// BuildDailyLoads sums training load per calendar date over [start, end).
// Records outside the range are skipped. The result is rebuilt from
// scratch on every call.
func BuildDailyLoads(records []models.ActivityRecord, start, end time.Time) models.DailyLoadAggregate {
	agg := models.DailyLoadAggregate{
		Start: util.DayFloor(start),
		End:   util.DayFloor(end),
		Loads: make(map[string]float64),
	}
	for _, r := range records {
		if r.StartLocal.Before(start) || !r.StartLocal.Before(end) {
			continue
		}
		agg.Loads[util.DateKey(r.StartLocal)] += r.TrainingLoad
	}
	return agg
}

// DailySeries returns one load per calendar day over [agg.Start, agg.End),
// ascending. Absent dates read as zero-load observations.
func DailySeries(agg models.DailyLoadAggregate) []float64 {
	var out []float64
	for d := agg.Start; d.Before(agg.End); d = d.AddDate(0, 0, 1) {
		out = append(out, agg.Loads[util.DateKey(d)])
	}
	return out
}

// WeekBucket is one Monday-anchored week of summed load.
type WeekBucket struct {
	Start time.Time
	Load  float64
}

// WeeklyBuckets folds a daily aggregate into Monday-anchored weeks,
// ascending. Days that fail to parse are skipped.
func WeeklyBuckets(agg models.DailyLoadAggregate) []WeekBucket {
	sums := make(map[time.Time]float64)
	for _, key := range agg.Dates() {
		day, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		sums[util.WeekStart(day)] += agg.Loads[key]
	}
	out := make([]WeekBucket, 0, len(sums))
	for start, load := range sums {
		out = append(out, WeekBucket{Start: start, Load: load})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// RestDays counts calendar days before today with summed load under 1.
// Days absent from the aggregate count as rest days.
func RestDays(agg models.DailyLoadAggregate, today time.Time) int {
	end := agg.End
	if floor := util.DayFloor(today); floor.Before(end) {
		end = floor
	}
	count := 0
	for d := agg.Start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if agg.Loads[util.DateKey(d)] < 1 {
			count++
		}
	}
	return count
}
