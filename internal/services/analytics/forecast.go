package analytics

import (
	"context"
	"time"

	"LoadLedger/internal/domain/models"
	domsvc "LoadLedger/internal/domain/service"
	"LoadLedger/pkg/util"
)

// Fitness model time constants, days.
const (
	ctlDecay = 42.0
	atlDecay = 7.0
)

const defaultHorizonDays = 14

// Default seeds when neither wellness nor event history carries CTL/ATL.
const (
	defaultSeedCTL = 70.0
	defaultSeedATL = 65.0
)

// ForecastProjector runs the CTL/ATL recursion forward over the planned
// load schedule.
type ForecastProjector struct{}

func NewForecastProjector() *ForecastProjector { return &ForecastProjector{} }

func (p *ForecastProjector) Project(ctx context.Context, in models.IngestResult, integ models.IntegrityResult, horizonDays int) (models.ForecastResult, error) {
	var res models.ForecastResult

	plannedByDate := make(map[string]float64, len(in.Planned))
	for _, ev := range in.Planned {
		plannedByDate[util.DateKey(ev.Date)] += ev.ExpectedLoad
	}

	horizon := horizonDays
	if horizon <= 0 {
		horizon = defaultHorizonDays
		if len(plannedByDate) > 0 {
			if h := len(plannedByDate); h > 7 {
				horizon = h
			} else {
				horizon = 7
			}
		}
	}

	ctl, atl, seed := seeds(integ.Wellness, in.Long)
	today := util.DayFloor(in.ShortEnd)

	daily := make([]models.DailyProjection, 0, horizon)
	for d := 1; d <= horizon; d++ {
		date := today.AddDate(0, 0, d)
		load := plannedByDate[util.DateKey(date)]
		ctl += (load - ctl) / ctlDecay
		atl += (load - atl) / atlDecay
		daily = append(daily, models.DailyProjection{
			Date: date,
			Load: load,
			CTL:  util.Round(ctl, 1),
			ATL:  util.Round(atl, 1),
			TSB:  util.Round(ctl-atl, 1),
		})
	}

	res.Projection = models.ForecastProjection{
		HorizonDays:    horizon,
		Daily:          daily,
		ProjectedPhase: projectedPhase(daily),
		LoadTrend:      loadTrend(daily),
		SeedSource:     seed,
		PlannedCount:   len(plannedByDate),
	}
	return res, nil
}

var _ domsvc.ForecastProjector = (*ForecastProjector)(nil)

// seeds picks starting CTL/ATL: wellness summary first, then the latest
// event's provider fitness snapshot, then fixed defaults.
func seeds(ws models.WellnessSummary, records []models.ActivityRecord) (float64, float64, string) {
	if ws.Defined && (ws.CTL > 0 || ws.ATL > 0) {
		return ws.CTL, ws.ATL, "wellness"
	}
	var latest time.Time
	ctl, atl := 0.0, 0.0
	for _, r := range records {
		if r.CTL <= 0 && r.ATL <= 0 {
			continue
		}
		if r.StartLocal.After(latest) {
			latest = r.StartLocal
			ctl, atl = r.CTL, r.ATL
		}
	}
	if !latest.IsZero() {
		return ctl, atl, "event"
	}
	return defaultSeedCTL, defaultSeedATL, "default"
}

func projectedPhase(daily []models.DailyProjection) string {
	if len(daily) == 0 {
		return models.ProjectedProductive
	}
	switch tsb := daily[len(daily)-1].TSB; {
	case tsb > 10:
		return models.ProjectedRecovery
	case tsb > -10:
		return models.ProjectedProductive
	default:
		return models.ProjectedOverreaching
	}
}

func loadTrend(daily []models.DailyProjection) string {
	if len(daily) < 2 {
		return "stable"
	}
	diff := daily[len(daily)-1].CTL - daily[0].CTL
	switch {
	case diff > 0.1:
		return "increasing"
	case diff < -0.1:
		return "declining"
	default:
		return "stable"
	}
}
