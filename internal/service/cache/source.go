package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"LoadLedger/internal/domain/models"
	"LoadLedger/internal/domain/repository"
	xlogger "LoadLedger/pkg/logger"
)

const (
	dsActivities      = "activities"
	dsActivitiesLight = "activities_light"
	dsWellness        = "wellness"
	dsEvents          = "events"
	dsPlanned         = "planned"
)

// WriteThroughSource decorates a live DatasetSource: every successful fetch
// is written to the cache so a later run can fall back to it when the
// provider degrades. It reports the inner source's name because the chain
// below it decides provenance, not the cache.
type WriteThroughSource struct {
	inner     repository.DatasetSource
	store     BytesCache
	ttl       time.Duration
	athleteID string
	metrics   repository.Metrics
	logger    *xlogger.Logger
}

func NewWriteThroughSource(inner repository.DatasetSource, store BytesCache, ttl time.Duration, athleteID string, m repository.Metrics, logger *xlogger.Logger) *WriteThroughSource {
	return &WriteThroughSource{inner: inner, store: store, ttl: ttl, athleteID: athleteID, metrics: m, logger: logger}
}

var _ repository.DatasetSource = (*WriteThroughSource)(nil)

func (s *WriteThroughSource) Name() string { return s.inner.Name() }

func (s *WriteThroughSource) Health(ctx context.Context) error { return s.inner.Health(ctx) }

func (s *WriteThroughSource) Activities(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	recs, err := s.inner.Activities(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.stash(ctx, DatasetKey(s.athleteID, dsActivities, from, to), recs)
	return recs, nil
}

func (s *WriteThroughSource) ActivitiesLight(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	recs, err := s.inner.ActivitiesLight(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.stash(ctx, DatasetKey(s.athleteID, dsActivitiesLight, from, to), recs)
	return recs, nil
}

func (s *WriteThroughSource) Wellness(ctx context.Context, from, to time.Time) ([]models.WellnessRecord, error) {
	recs, err := s.inner.Wellness(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.stash(ctx, DatasetKey(s.athleteID, dsWellness, from, to), recs)
	return recs, nil
}

func (s *WriteThroughSource) Events(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	recs, err := s.inner.Events(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.stash(ctx, DatasetKey(s.athleteID, dsEvents, from, to), recs)
	return recs, nil
}

func (s *WriteThroughSource) PlannedEvents(ctx context.Context, from, to time.Time) ([]models.PlannedEvent, error) {
	recs, err := s.inner.PlannedEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.stash(ctx, DatasetKey(s.athleteID, dsPlanned, from, to), recs)
	return recs, nil
}

func (s *WriteThroughSource) Profile(ctx context.Context) (models.AthleteProfile, error) {
	prof, err := s.inner.Profile(ctx)
	if err != nil {
		return models.AthleteProfile{}, err
	}
	s.stash(ctx, ProfileKey(s.athleteID), prof)
	return prof, nil
}

func (s *WriteThroughSource) stash(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("cache stash marshal failed", xlogger.String("key", key), xlogger.Error(err))
		return
	}
	if err := s.store.SetBytes(ctx, key, b, s.ttl); err != nil {
		s.logger.Warn("cache stash failed", xlogger.String("key", key), xlogger.Error(err))
		return
	}
	s.metrics.RecordCacheOp("store")
}

// Source serves datasets from previously stashed provider responses.
// A miss is an error; the acquisition chain treats it like any other
// strategy failure.
type Source struct {
	store     BytesCache
	athleteID string
	metrics   repository.Metrics
}

func NewSource(store BytesCache, athleteID string, m repository.Metrics) *Source {
	return &Source{store: store, athleteID: athleteID, metrics: m}
}

var _ repository.DatasetSource = (*Source)(nil)

func (s *Source) Name() string { return "cache" }

// Health reports ready: an empty cache is still a functioning cache.
func (s *Source) Health(context.Context) error { return nil }

func (s *Source) Activities(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	var recs []models.ActivityRecord
	if err := s.lookup(ctx, DatasetKey(s.athleteID, dsActivities, from, to), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Source) ActivitiesLight(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	var recs []models.ActivityRecord
	if err := s.lookup(ctx, DatasetKey(s.athleteID, dsActivitiesLight, from, to), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Source) Wellness(ctx context.Context, from, to time.Time) ([]models.WellnessRecord, error) {
	var recs []models.WellnessRecord
	if err := s.lookup(ctx, DatasetKey(s.athleteID, dsWellness, from, to), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Source) Events(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	var recs []models.ActivityRecord
	if err := s.lookup(ctx, DatasetKey(s.athleteID, dsEvents, from, to), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Source) PlannedEvents(ctx context.Context, from, to time.Time) ([]models.PlannedEvent, error) {
	var recs []models.PlannedEvent
	if err := s.lookup(ctx, DatasetKey(s.athleteID, dsPlanned, from, to), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Source) Profile(ctx context.Context) (models.AthleteProfile, error) {
	var prof models.AthleteProfile
	if err := s.lookup(ctx, ProfileKey(s.athleteID), &prof); err != nil {
		return models.AthleteProfile{}, err
	}
	prof.Source = "cache"
	return prof, nil
}

func (s *Source) lookup(ctx context.Context, key string, dest any) error {
	b, ok, err := s.store.GetBytes(ctx, key)
	if err != nil {
		return fmt.Errorf("cache read %s: %w", key, err)
	}
	if !ok {
		s.metrics.RecordCacheOp("miss")
		return fmt.Errorf("cache miss for %s", key)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	s.metrics.RecordCacheOp("hit")
	return nil
}
