package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"LoadLedger/internal/domain/models"
	drepo "LoadLedger/internal/domain/repository"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/internal/services/features"
	xlogger "LoadLedger/pkg/logger"
	"LoadLedger/pkg/util"
)

// Acquisition strategy names recorded in the audit footer.
const (
	srcProvider      = "provider"
	srcProviderFull  = "provider_full"
	srcProviderLight = "provider_light"
	srcCache         = "cache"
	srcNone          = "none"
)

// Dataset names shared by footer keys, retry metrics and fetch errors.
const (
	dsProfile        = "profile"
	dsActivities     = "activities"
	dsActivitiesLong = "activities_long"
	dsWellness       = "wellness"
	dsEvents         = "events"
	dsPlanned        = "planned"
)

const (
	fetchBackoff         = 250 * time.Millisecond
	plannedLookaheadDays = 14
	hoursUnitCeiling     = 1000.0 // a window maxing out below this arrived hour-denominated
	dupOverlapSeconds    = 120.0
	dupOverlapShare      = 0.80
)

// DatasetIngestor assembles the normalized dataset bundle a report run
// works from. Every dataset is acquired through an ordered strategy
// chain with a bounded retry budget per strategy; the winning strategy
// names travel with the result so the audit footer can show where each
// dataset came from.
type DatasetIngestor struct {
	api        drepo.DatasetSource
	cache      drepo.DatasetSource
	metrics    drepo.Metrics
	logger     *xlogger.Logger
	retryExtra int
	planned    bool
	now        func() time.Time
}

func NewDatasetIngestor(
	api drepo.DatasetSource,
	cache drepo.DatasetSource,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	retryExtra int,
	planned bool,
) *DatasetIngestor {
	if retryExtra < 0 {
		retryExtra = 0
	}
	return &DatasetIngestor{
		api:        api,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		retryExtra: retryExtra,
		planned:    planned,
		now:        time.Now,
	}
}

// Ingest acquires, normalizes and deduplicates every dataset the given
// window needs. Windows end on the athlete-local current date; analysis
// covers complete days only, so the in-progress day is excluded.
func (ing *DatasetIngestor) Ingest(ctx context.Context, window drepo.ReportWindow) (models.IngestResult, error) {
	started := time.Now()
	res := models.IngestResult{
		ReportType:    string(window.Type),
		ChosenSources: make(map[string]string),
	}

	profile, profSrc, err := fetchChain(ctx, ing, dsProfile, []strategy[models.AthleteProfile]{
		{srcProvider, func(ctx context.Context) (models.AthleteProfile, error) { return ing.api.Profile(ctx) }},
		{srcCache, func(ctx context.Context) (models.AthleteProfile, error) { return ing.cache.Profile(ctx) }},
	})
	if err != nil {
		return res, err
	}
	res.Profile = profile
	res.AthleteID = profile.ID
	res.Timezone = profile.Timezone
	res.ChosenSources[dsProfile] = profSrc
	if profSrc != srcProvider {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "athlete profile served from "+profSrc)
	}

	today := util.DayFloor(ing.now().In(ing.location(profile.Timezone)))
	res.ShortEnd = today
	res.ShortStart = today.AddDate(0, 0, -window.ShortDays)
	res.LongEnd = today
	res.LongStart = today.AddDate(0, 0, -window.LongDays)
	wellStart := today.AddDate(0, 0, -window.WellnessDays)

	shortRaw, detailSrc, err := ing.fetchDetail(ctx, window, res.ShortStart, today)
	if err != nil {
		return res, err
	}
	res.DataSource = detailSrc
	res.ChosenSources[dsActivities] = detailSrc
	if degradedDetail(window, detailSrc) {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "detail activities served by "+detailSrc)
	}

	longRaw, longSrc, err := ing.fetchLong(ctx, window, res.LongStart, today, shortRaw, detailSrc)
	if err != nil {
		return res, err
	}
	res.ChosenSources[dsActivitiesLong] = longSrc
	if longSrc == srcCache {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "trend activities served from cache")
	}

	events, evSrc, err := fetchChain(ctx, ing, dsEvents, []strategy[[]models.ActivityRecord]{
		{srcProvider, func(ctx context.Context) ([]models.ActivityRecord, error) {
			return ing.api.Events(ctx, res.LongStart, today)
		}},
		{srcCache, func(ctx context.Context) ([]models.ActivityRecord, error) {
			return ing.cache.Events(ctx, res.LongStart, today)
		}},
	})
	if err != nil {
		return res, err
	}
	res.ChosenSources[dsEvents] = evSrc
	if evSrc == srcCache {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "calendar events served from cache")
	}

	wellness, wellSrc, err := fetchChain(ctx, ing, dsWellness, []strategy[[]models.WellnessRecord]{
		{srcProvider, func(ctx context.Context) ([]models.WellnessRecord, error) {
			return ing.api.Wellness(ctx, wellStart, today)
		}},
		{srcCache, func(ctx context.Context) ([]models.WellnessRecord, error) {
			return ing.cache.Wellness(ctx, wellStart, today)
		}},
	})
	if err != nil {
		return res, err
	}
	res.ChosenSources[dsWellness] = wellSrc
	if wellSrc == srcCache {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "wellness rows served from cache")
	}

	if ing.planned {
		planned, plSrc, perr := fetchChain(ctx, ing, dsPlanned, []strategy[[]models.PlannedEvent]{
			{srcProvider, func(ctx context.Context) ([]models.PlannedEvent, error) {
				return ing.api.PlannedEvents(ctx, today.AddDate(0, 0, 1), today.AddDate(0, 0, plannedLookaheadDays))
			}},
		})
		if perr != nil {
			// planned events are optional; absence means zero future load
			res.ChosenSources[dsPlanned] = srcNone
			res.Warnings = append(res.Warnings, "planned events unavailable; projecting zero future load")
			ing.logger.Warn("planned events unavailable", xlogger.Error(perr))
		} else {
			res.Planned = planned
			res.ChosenSources[dsPlanned] = plSrc
		}
	}

	// Unit normalization runs before the overlap dedup so the overlap
	// math always sees seconds.
	shortRaw, shortScaled := normalizeDurations(shortRaw)
	longRaw, longScaled := normalizeDurations(longRaw)
	events, eventsScaled := normalizeDurations(events)
	if shortScaled || longScaled || eventsScaled {
		res.Warnings = append(res.Warnings, "durations arrived hour-denominated; converted to seconds")
	}

	res.Short = recordsWithin(dedupeRecords(shortRaw), res.ShortStart, res.ShortEnd)
	res.Long = recordsWithin(dedupeRecords(mergeEventRecords(longRaw, events)), res.LongStart, res.LongEnd)

	// Snapshot totals sum the whole normalized window, unfiltered. The
	// integrity stage recomputes its own counted view and compares.
	res.Snapshot = models.SnapshotTotals{
		Hours:      util.Round(totalHours(res.Short), 2),
		Load:       math.Trunc(totalLoad(res.Short)),
		DistanceKm: util.Round(totalKm(res.Short), 1),
		Count:      len(res.Short),
	}

	res.DailyShort = features.BuildDailyLoads(res.Short, res.ShortStart, res.ShortEnd)
	res.DailyLong = features.BuildDailyLoads(res.Long, res.LongStart, res.LongEnd)

	sort.Slice(wellness, func(i, j int) bool { return wellness[i].Date.Before(wellness[j].Date) })
	res.Wellness = wellnessWithin(wellness, wellStart, today)
	res.WellnessByDate = make(map[string]models.WellnessRecord, len(res.Wellness))
	for _, w := range res.Wellness {
		res.WellnessByDate[util.DateKey(w.Date)] = w
	}

	ing.logger.Info("ingestion complete",
		xlogger.String("report_type", res.ReportType),
		xlogger.String("athlete_id", res.AthleteID),
		xlogger.String("source", res.DataSource),
		xlogger.Int("short_records", len(res.Short)),
		xlogger.Int("long_records", len(res.Long)),
		xlogger.Int("wellness_rows", len(res.Wellness)),
		xlogger.Bool("degraded", res.Degraded),
		xlogger.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

var _ domsvc.Ingestor = (*DatasetIngestor)(nil)

// fetchDetail acquires the short-window activities. Full-detail windows
// fall back to the light payload and then the cache; light windows skip
// straight from the light payload to the cache.
func (ing *DatasetIngestor) fetchDetail(ctx context.Context, window drepo.ReportWindow, from, to time.Time) ([]models.ActivityRecord, string, error) {
	if window.LightDetail {
		return fetchChain(ctx, ing, dsActivities, []strategy[[]models.ActivityRecord]{
			{srcProviderLight, func(ctx context.Context) ([]models.ActivityRecord, error) {
				return ing.api.ActivitiesLight(ctx, from, to)
			}},
			{srcCache, func(ctx context.Context) ([]models.ActivityRecord, error) {
				return ing.cache.ActivitiesLight(ctx, from, to)
			}},
		})
	}
	return fetchChain(ctx, ing, dsActivities, []strategy[[]models.ActivityRecord]{
		{srcProviderFull, func(ctx context.Context) ([]models.ActivityRecord, error) {
			return ing.api.Activities(ctx, from, to)
		}},
		{srcProviderLight, func(ctx context.Context) ([]models.ActivityRecord, error) {
			return ing.api.ActivitiesLight(ctx, from, to)
		}},
		{srcCache, func(ctx context.Context) ([]models.ActivityRecord, error) {
			return ing.cache.Activities(ctx, from, to)
		}},
	})
}

// fetchLong acquires the trend-window activities. When the window presets
// make the long window identical to the short one the detail records are
// reused instead of fetched twice.
func (ing *DatasetIngestor) fetchLong(ctx context.Context, window drepo.ReportWindow, from, to time.Time, short []models.ActivityRecord, detailSrc string) ([]models.ActivityRecord, string, error) {
	if window.LightDetail && window.ShortDays == window.LongDays {
		return append([]models.ActivityRecord(nil), short...), detailSrc, nil
	}
	return fetchChain(ctx, ing, dsActivitiesLong, []strategy[[]models.ActivityRecord]{
		{srcProviderLight, func(ctx context.Context) ([]models.ActivityRecord, error) {
			return ing.api.ActivitiesLight(ctx, from, to)
		}},
		{srcCache, func(ctx context.Context) ([]models.ActivityRecord, error) {
			return ing.cache.ActivitiesLight(ctx, from, to)
		}},
	})
}

func (ing *DatasetIngestor) location(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		ing.logger.Warn("unknown athlete timezone, using UTC", xlogger.String("timezone", tz))
		return time.UTC
	}
	return loc
}

func degradedDetail(window drepo.ReportWindow, chosen string) bool {
	if window.LightDetail {
		return chosen != srcProviderLight
	}
	return chosen != srcProviderFull
}

// strategy is one named way of producing a dataset.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// fetchChain walks an ordered strategy chain, giving each strategy the
// configured retry budget before moving on. Exhausting the whole chain
// yields a DataUnavailableError naming the dataset.
func fetchChain[T any](ctx context.Context, ing *DatasetIngestor, dataset string, chain []strategy[T]) (T, string, error) {
	var zero T
	var lastErr error
	attempts := 0
	for _, s := range chain {
		for try := 0; try <= ing.retryExtra; try++ {
			if try > 0 {
				ing.metrics.RecordFetchRetry(dataset)
				select {
				case <-ctx.Done():
					return zero, "", ctx.Err()
				case <-time.After(fetchBackoff):
				}
			}
			attempts++
			v, err := s.run(ctx)
			if err == nil {
				return v, s.name, nil
			}
			lastErr = err
			ing.logger.Warn("dataset fetch attempt failed",
				xlogger.String("dataset", dataset),
				xlogger.String("strategy", s.name),
				xlogger.Int("attempt", try+1),
				xlogger.Error(err),
			)
			if ctx.Err() != nil {
				return zero, "", ctx.Err()
			}
		}
	}
	return zero, "", &models.DataUnavailableError{Dataset: dataset, Attempts: attempts, Err: lastErr}
}

// normalizeDurations converts hour-denominated durations to seconds. A
// non-empty window whose longest record stays under the ceiling arrived
// in hours.
func normalizeDurations(records []models.ActivityRecord) ([]models.ActivityRecord, bool) {
	var max float64
	for _, r := range records {
		if r.MovingTime > max {
			max = r.MovingTime
		}
	}
	if max <= 0 || max >= hoursUnitCeiling {
		return records, false
	}
	for i := range records {
		records[i].MovingTime *= 3600
	}
	return records, true
}

// mergeEventRecords folds calendar events into the trend evidence. An
// event row replaces an activity sharing its id; cross-source duplicates
// with distinct ids are left for the overlap dedup.
func mergeEventRecords(activities, events []models.ActivityRecord) []models.ActivityRecord {
	if len(events) == 0 {
		return activities
	}
	eventIDs := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e.ID != "" {
			eventIDs[e.ID] = struct{}{}
		}
	}
	merged := make([]models.ActivityRecord, 0, len(activities)+len(events))
	for _, a := range activities {
		if _, dup := eventIDs[a.ID]; dup {
			continue
		}
		merged = append(merged, a)
	}
	return append(merged, events...)
}

// dedupeRecords collapses identical ids, then collapses pairs recording
// the same physical session from two sources. Two records are the same
// session when they overlap more than 120 s and the overlap covers more
// than 80 % of the shorter duration; the higher training load survives.
func dedupeRecords(records []models.ActivityRecord) []models.ActivityRecord {
	byID := make(map[string]int, len(records))
	uniq := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if j, seen := byID[r.ID]; seen && r.ID != "" {
			if r.TrainingLoad > uniq[j].TrainingLoad {
				uniq[j] = r
			}
			continue
		}
		if r.ID != "" {
			byID[r.ID] = len(uniq)
		}
		uniq = append(uniq, r)
	}

	sort.SliceStable(uniq, func(i, j int) bool { return uniq[i].StartLocal.Before(uniq[j].StartLocal) })
	kept := make([]models.ActivityRecord, 0, len(uniq))
	for _, r := range uniq {
		dup := -1
		for j := range kept {
			if sameSession(kept[j], r) {
				dup = j
				break
			}
		}
		if dup >= 0 {
			if r.TrainingLoad > kept[dup].TrainingLoad {
				kept[dup] = r
			}
			continue
		}
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].StartLocal.Before(kept[j].StartLocal) })
	return kept
}

func sameSession(a, b models.ActivityRecord) bool {
	ov := overlapSeconds(a, b)
	if ov <= dupOverlapSeconds {
		return false
	}
	shorter := math.Min(a.MovingTime, b.MovingTime)
	return shorter > 0 && ov > dupOverlapShare*shorter
}

func overlapSeconds(a, b models.ActivityRecord) float64 {
	start := a.StartLocal
	if b.StartLocal.After(start) {
		start = b.StartLocal
	}
	end := a.EndLocal()
	if be := b.EndLocal(); be.Before(end) {
		end = be
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Seconds()
}

func recordsWithin(records []models.ActivityRecord, from, to time.Time) []models.ActivityRecord {
	out := make([]models.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.StartLocal.Before(from) || !r.StartLocal.Before(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// wellnessWithin keeps rows inside [from, to]; the current date is kept
// because morning readiness for today is legitimate input.
func wellnessWithin(rows []models.WellnessRecord, from, to time.Time) []models.WellnessRecord {
	out := make([]models.WellnessRecord, 0, len(rows))
	for _, w := range rows {
		if w.Date.Before(from) || w.Date.After(to) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func totalHours(records []models.ActivityRecord) float64 {
	var s float64
	for _, r := range records {
		s += r.MovingTime
	}
	return s / 3600
}

func totalLoad(records []models.ActivityRecord) float64 {
	var s float64
	for _, r := range records {
		s += r.TrainingLoad
	}
	return s
}

func totalKm(records []models.ActivityRecord) float64 {
	var s float64
	for _, r := range records {
		s += r.Distance
	}
	return s / 1000
}
