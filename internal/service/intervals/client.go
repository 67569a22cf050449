package intervals

import (
	"context"
	"fmt"
	"time"

	"LoadLedger/internal/domain/models"
	drepo "LoadLedger/internal/domain/repository"
	"LoadLedger/internal/service/ratelimit"
	xhttp "LoadLedger/pkg/http"
	xlogger "LoadLedger/pkg/logger"
)

// lightFields is the column projection requested for long-window fetches.
// Wide windows at full detail are slow on the provider side; this subset
// carries everything the long window needs.
const lightFields = "id,name,type,sport_type,start_date_local,distance,moving_time," +
	"icu_training_load,icu_atl,icu_ctl,IF,average_heartrate,VO2MaxGarmin"

// Config holds the provider connection settings.
type Config struct {
	BaseURL    string
	APIKey     string
	AthleteID  string
	Timezone   string
	RatePerSec float64
	RateBurst  int
}

// Client implements a DatasetSource backed by the live provider API.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	logger  *xlogger.Logger
	loc     *time.Location
}

// New creates a provider-backed DatasetSource. The athlete timezone
// anchors all window math; an unknown zone falls back to the provider
// default rather than UTC.
func New(cfg Config, httpc *xhttp.Client, limiter *ratelimit.Limiter, logger *xlogger.Logger) drepo.DatasetSource {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc, _ = time.LoadLocation("Europe/Zurich")
		if loc == nil {
			loc = time.UTC
		}
		if cfg.Timezone != "" {
			logger.Warn("unknown provider timezone, using Europe/Zurich", xlogger.String("timezone", cfg.Timezone))
		}
	}
	return &Client{cfg: cfg, http: httpc, limiter: limiter, logger: logger, loc: loc}
}

func (c *Client) Name() string { return "api" }

func (c *Client) Activities(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	var rows []apiActivity
	err := c.get(ctx, fmt.Sprintf("/athlete/%s/activities", c.cfg.AthleteID), windowParams(from, to), &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	recs := make([]models.ActivityRecord, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.toRecord(c.loc))
	}
	c.logger.Debug("fetched activities", xlogger.Int("count", len(recs)))
	return recs, nil
}

func (c *Client) ActivitiesLight(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	params := windowParams(from, to)
	params["fields"] = []string{lightFields}
	var rows []apiActivity
	err := c.get(ctx, fmt.Sprintf("/athlete/%s/activities", c.cfg.AthleteID), params, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch light activities: %w", err)
	}
	recs := make([]models.ActivityRecord, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.toRecord(c.loc))
	}
	c.logger.Debug("fetched light activities", xlogger.Int("count", len(recs)))
	return recs, nil
}

func (c *Client) Wellness(ctx context.Context, from, to time.Time) ([]models.WellnessRecord, error) {
	var rows []apiWellness
	err := c.get(ctx, fmt.Sprintf("/athlete/%s/wellness", c.cfg.AthleteID), windowParams(from, to), &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch wellness: %w", err)
	}
	recs := make([]models.WellnessRecord, 0, len(rows))
	for _, r := range rows {
		rec := r.toRecord(c.loc)
		if rec.Date.IsZero() {
			continue
		}
		recs = append(recs, rec)
	}
	c.logger.Debug("fetched wellness", xlogger.Int("count", len(recs)))
	return recs, nil
}

// Events returns completed calendar entries inside the window. Notes and
// holidays are calendar noise, not training events.
func (c *Client) Events(ctx context.Context, from, to time.Time) ([]models.ActivityRecord, error) {
	rows, err := c.events(ctx, from, to)
	if err != nil {
		return nil, err
	}
	recs := make([]models.ActivityRecord, 0, len(rows))
	for _, r := range rows {
		if skipCategory(r.Category) || r.MovingTime <= 0 {
			continue
		}
		recs = append(recs, r.toRecord(c.loc))
	}
	c.logger.Debug("fetched events", xlogger.Int("count", len(recs)))
	return recs, nil
}

func (c *Client) PlannedEvents(ctx context.Context, from, to time.Time) ([]models.PlannedEvent, error) {
	rows, err := c.events(ctx, from, to)
	if err != nil {
		return nil, err
	}
	planned := make([]models.PlannedEvent, 0, len(rows))
	for _, r := range rows {
		if skipCategory(r.Category) {
			continue
		}
		planned = append(planned, models.PlannedEvent{
			Date:         parseLocalTime(r.StartDateLocal, c.loc),
			Name:         r.Name,
			ExpectedLoad: r.TrainingLoad,
		})
	}
	c.logger.Debug("fetched planned events", xlogger.Int("count", len(planned)))
	return planned, nil
}

func (c *Client) Profile(ctx context.Context) (models.AthleteProfile, error) {
	var raw []byte
	err := c.get(ctx, fmt.Sprintf("/athlete/%s", c.cfg.AthleteID), nil, &raw)
	if err != nil {
		return models.AthleteProfile{}, fmt.Errorf("fetch profile: %w", err)
	}
	prof, err := decodeProfile(raw)
	if err != nil {
		return models.AthleteProfile{}, err
	}
	return prof, nil
}

func (c *Client) Health(ctx context.Context) error {
	_, err := c.Profile(ctx)
	return err
}

func (c *Client) events(ctx context.Context, from, to time.Time) ([]apiEvent, error) {
	var rows []apiEvent
	err := c.get(ctx, fmt.Sprintf("/athlete/%s/events", c.cfg.AthleteID), windowParams(from, to), &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if err := c.limiter.Wait(ctx, c.cfg.AthleteID, float64(c.cfg.RateBurst), c.cfg.RatePerSec); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	start := time.Now()
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.cfg.BaseURL + path,
		QueryParams: params,
		BasicUser:   "API_KEY",
		BasicPass:   c.cfg.APIKey,
	}, dest)
	if err != nil {
		c.logger.Error("provider request failed",
			xlogger.String("path", path),
			xlogger.Duration("elapsed", time.Since(start)),
			xlogger.Error(err))
		return err
	}
	return nil
}

func windowParams(from, to time.Time) map[string][]string {
	return map[string][]string{
		"oldest": {from.Format("2006-01-02")},
		"newest": {to.Format("2006-01-02")},
	}
}

func skipCategory(cat string) bool {
	return cat == "NOTE" || cat == "HOLIDAY" || cat == "SICK" || cat == "INJURED"
}
