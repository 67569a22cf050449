package intervals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"LoadLedger/internal/domain/models"
)

// The provider is loose with types: numeric ids arrive as numbers or
// strings depending on the route, and zone arrays arrive either as
// [{"id":"Z1","secs":n}] objects, as plain number arrays, or as a JSON
// string wrapping one of those. The wire types below absorb all of it.

type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type zoneSeconds []float64

func (z *zoneSeconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*z = nil
		return nil
	}
	if b[0] == '"' {
		var inner string
		if err := json.Unmarshal(b, &inner); err != nil {
			return err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" || inner == "null" {
			*z = nil
			return nil
		}
		return z.UnmarshalJSON([]byte(inner))
	}
	var entries []struct {
		ID   string  `json:"id"`
		Secs float64 `json:"secs"`
	}
	if err := json.Unmarshal(b, &entries); err == nil {
		out := make([]float64, 0, len(entries))
		for _, e := range entries {
			var n int
			if _, err := fmt.Sscanf(e.ID, "Z%d", &n); err != nil || n < 1 {
				// ids like "SWEETSPOT" carry no zone index
				continue
			}
			for len(out) < n {
				out = append(out, 0)
			}
			out[n-1] += e.Secs
		}
		*z = out
		return nil
	}
	var plain []float64
	if err := json.Unmarshal(b, &plain); err != nil {
		// unknown but valid JSON shape, treat as no zone data
		*z = nil
		return nil
	}
	*z = plain
	return nil
}

type apiActivity struct {
	ID              flexID      `json:"id"`
	Name            string      `json:"name"`
	Type            string      `json:"type"`
	SportType       string      `json:"sport_type"`
	StartDateLocal  string      `json:"start_date_local"`
	Distance        float64     `json:"distance"`
	MovingTime      float64     `json:"moving_time"`
	TrainingLoad    float64     `json:"icu_training_load"`
	ATL             float64     `json:"icu_atl"`
	CTL             float64     `json:"icu_ctl"`
	IntensityFactor float64     `json:"IF"`
	AverageHR       float64     `json:"average_heartrate"`
	VO2Max          float64     `json:"VO2MaxGarmin"`
	PowerZoneTimes  zoneSeconds `json:"icu_zone_times"`
	HRZoneTimes     zoneSeconds `json:"icu_hr_zone_times"`
	PaceZoneTimes   zoneSeconds `json:"pace_zone_times"`
}

func (a apiActivity) toRecord(loc *time.Location) models.ActivityRecord {
	sport := a.SportType
	if sport == "" {
		sport = a.Type
	}
	return models.ActivityRecord{
		ID:              string(a.ID),
		Name:            a.Name,
		SportType:       sport,
		StartLocal:      parseLocalTime(a.StartDateLocal, loc),
		MovingTime:      a.MovingTime,
		Distance:        a.Distance,
		TrainingLoad:    a.TrainingLoad,
		IntensityFactor: a.IntensityFactor,
		AverageHR:       a.AverageHR,
		VO2Max:          a.VO2Max,
		CTL:             a.CTL,
		ATL:             a.ATL,
		PowerZones:      a.PowerZoneTimes,
		HRZones:         a.HRZoneTimes,
		PaceZones:       a.PaceZoneTimes,
	}
}

type apiEvent struct {
	ID             flexID  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Type           string  `json:"type"`
	StartDateLocal string  `json:"start_date_local"`
	MovingTime     float64 `json:"moving_time"`
	Distance       float64 `json:"distance"`
	TrainingLoad   float64 `json:"icu_training_load"`
}

func (e apiEvent) toRecord(loc *time.Location) models.ActivityRecord {
	return models.ActivityRecord{
		ID:           string(e.ID),
		Name:         e.Name,
		SportType:    e.Type,
		Origin:       "event",
		StartLocal:   parseLocalTime(e.StartDateLocal, loc),
		MovingTime:   e.MovingTime,
		Distance:     e.Distance,
		TrainingLoad: e.TrainingLoad,
	}
}

type apiWellness struct {
	Date      string  `json:"id"` // the provider keys wellness rows by date
	RestingHR float64 `json:"restingHR"`
	HRV       float64 `json:"hrv"`
	CTL       float64 `json:"ctl"`
	CTLLoad   float64 `json:"ctlLoad"`
	ATL       float64 `json:"atl"`
	ATLLoad   float64 `json:"atlLoad"`
	Fatigue   float64 `json:"fatigue"`
	Stress    float64 `json:"stress"`
	Readiness float64 `json:"readiness"`
}

func (w apiWellness) toRecord(loc *time.Location) models.WellnessRecord {
	rec := models.WellnessRecord{
		Date:      parseLocalTime(w.Date, loc),
		RestingHR: w.RestingHR,
		HRV:       w.HRV,
		CTL:       w.CTL,
		ATL:       w.ATL,
		Fatigue:   w.Fatigue,
		Stress:    w.Stress,
		Readiness: w.Readiness,
	}
	// older provider versions report the load curves under *Load names
	if rec.CTL == 0 {
		rec.CTL = w.CTLLoad
	}
	if rec.ATL == 0 {
		rec.ATL = w.ATLLoad
	}
	return rec
}

type apiSportSettings struct {
	Types   []string  `json:"types"`
	FTP     float64   `json:"ftp"`
	LTHR    float64   `json:"lthr"`
	MaxHR   float64   `json:"max_hr"`
	HRZones []float64 `json:"hr_zones"`
}

type apiProfile struct {
	ID            flexID             `json:"id"`
	Name          string             `json:"name"`
	Timezone      string             `json:"timezone"`
	Source        string             `json:"source"`
	SportSettings []apiSportSettings `json:"sportSettings"`
}

// Some provider routes wrap the athlete object, some return it bare.
type apiProfileEnvelope struct {
	Athlete *apiProfile `json:"athlete"`
}

// defaultZoneSplit is the static intensity split assumed for athletes
// whose provider settings carry no zone data.
var defaultZoneSplit = []float64{55, 25, 20}

func (p apiProfile) toProfile() models.AthleteProfile {
	tz := p.Timezone
	if len(tz) < 3 {
		tz = "Europe/Zurich"
	}
	prof := models.AthleteProfile{
		ID:          string(p.ID),
		Name:        p.Name,
		Timezone:    tz,
		Source:      "api",
		ZoneProfile: defaultZoneSplit,
	}
	if s, ok := p.rideSettings(); ok {
		prof.FTP = s.FTP
		prof.LTHR = s.LTHR
		prof.MaxHR = s.MaxHR
		prof.HRZones = s.HRZones
	}
	return prof
}

func (p apiProfile) rideSettings() (apiSportSettings, bool) {
	for _, s := range p.SportSettings {
		for _, t := range s.Types {
			if t == "Ride" || t == "VirtualRide" {
				return s, true
			}
		}
	}
	if len(p.SportSettings) > 0 {
		return p.SportSettings[0], true
	}
	return apiSportSettings{}, false
}

// decodeProfile accepts both profile payload shapes and rejects payloads
// that self-describe as synthetic data.
func decodeProfile(raw []byte) (models.AthleteProfile, error) {
	var env apiProfileEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Athlete != nil {
		return env.Athlete.checkedProfile()
	}
	var p apiProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.AthleteProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p.checkedProfile()
}

func (p apiProfile) checkedProfile() (models.AthleteProfile, error) {
	switch p.Source {
	case "mock", "cache", "sandbox":
		return models.AthleteProfile{}, fmt.Errorf("profile origin %q is not live data", p.Source)
	}
	return p.toProfile(), nil
}

// parseLocalTime handles the provider's timestamp shapes: local ISO
// without zone, full RFC3339, and bare dates.
func parseLocalTime(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc)
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t
	}
	return time.Time{}
}
