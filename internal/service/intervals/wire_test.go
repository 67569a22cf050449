package intervals

import (
	"encoding/json"
	"testing"
	"time"
)

func TestZoneSecondsObjectShape(t *testing.T) {
	var z zoneSeconds
	raw := `[{"id":"Z1","secs":1800},{"id":"Z3","secs":600},{"id":"SWEETSPOT","secs":900}]`
	if err := json.Unmarshal([]byte(raw), &z); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []float64{1800, 0, 600}
	if len(z) != len(want) {
		t.Fatalf("got %v, want %v", z, want)
	}
	for i := range want {
		if z[i] != want[i] {
			t.Errorf("zone %d = %v, want %v", i+1, z[i], want[i])
		}
	}
}

func TestZoneSecondsPlainArray(t *testing.T) {
	var z zoneSeconds
	if err := json.Unmarshal([]byte(`[1200, 800, 400]`), &z); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(z) != 3 || z[0] != 1200 || z[2] != 400 {
		t.Fatalf("got %v", z)
	}
}

func TestZoneSecondsStringWrapped(t *testing.T) {
	var z zoneSeconds
	raw := `"[{\"id\":\"Z1\",\"secs\":300},{\"id\":\"Z2\",\"secs\":150}]"`
	if err := json.Unmarshal([]byte(raw), &z); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(z) != 2 || z[0] != 300 || z[1] != 150 {
		t.Fatalf("got %v", z)
	}
}

func TestZoneSecondsUnknownShapeIgnored(t *testing.T) {
	var z zoneSeconds
	if err := json.Unmarshal([]byte(`{"z1":100}`), &z); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if z != nil {
		t.Fatalf("got %v, want nil", z)
	}
}

func TestFlexIDNumberAndString(t *testing.T) {
	var s struct {
		ID flexID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`{"id": 42}`), &s); err != nil {
		t.Fatalf("numeric id: %v", err)
	}
	if s.ID != "42" {
		t.Errorf("numeric id = %q, want 42", s.ID)
	}
	if err := json.Unmarshal([]byte(`{"id": "i98765"}`), &s); err != nil {
		t.Fatalf("string id: %v", err)
	}
	if s.ID != "i98765" {
		t.Errorf("string id = %q, want i98765", s.ID)
	}
}

func TestActivityToRecordNormalizesSport(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Zurich")
	raw := `{
		"id": "i100",
		"name": "Morning Ride",
		"type": "Ride",
		"start_date_local": "2026-08-10T09:30:00",
		"distance": 40000,
		"moving_time": 7200,
		"icu_training_load": 95,
		"IF": 0.82,
		"average_heartrate": 142,
		"VO2MaxGarmin": 48.5,
		"icu_zone_times": [{"id":"Z1","secs":3600},{"id":"Z2","secs":2400}]
	}`
	var a apiActivity
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rec := a.toRecord(loc)
	if rec.SportType != "Ride" {
		t.Errorf("SportType = %q, want Ride (type fallback)", rec.SportType)
	}
	if rec.IntensityFactor != 0.82 {
		t.Errorf("IntensityFactor = %v, want 0.82", rec.IntensityFactor)
	}
	if rec.VO2Max != 48.5 {
		t.Errorf("VO2Max = %v, want 48.5", rec.VO2Max)
	}
	if got := rec.StartLocal.Hour(); got != 9 {
		t.Errorf("StartLocal hour = %d, want 9", got)
	}
	if rec.StartLocal.Location() != loc {
		t.Errorf("StartLocal location = %v, want %v", rec.StartLocal.Location(), loc)
	}
	if len(rec.PowerZones) != 2 || rec.PowerZones[0] != 3600 {
		t.Errorf("PowerZones = %v", rec.PowerZones)
	}
}

func TestWellnessAliasesAndDateKey(t *testing.T) {
	loc := time.UTC
	var w apiWellness
	raw := `{"id":"2026-08-10","restingHR":48,"hrv":92,"ctlLoad":71.5,"atlLoad":64.2,"fatigue":2}`
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rec := w.toRecord(loc)
	if rec.Date.Format("2006-01-02") != "2026-08-10" {
		t.Errorf("Date = %v", rec.Date)
	}
	if rec.CTL != 71.5 || rec.ATL != 64.2 {
		t.Errorf("CTL/ATL = %v/%v, want 71.5/64.2", rec.CTL, rec.ATL)
	}
	if rec.RestingHR != 48 || rec.HRV != 92 {
		t.Errorf("RestingHR/HRV = %v/%v", rec.RestingHR, rec.HRV)
	}
}

func TestDecodeProfileWrappedAndBare(t *testing.T) {
	wrapped := `{"athlete":{"id":7,"name":"A","timezone":"Europe/Berlin","sportSettings":[{"types":["Ride"],"ftp":260,"lthr":162,"max_hr":188,"hr_zones":[120,140,160,175,188]}]}}`
	prof, err := decodeProfile([]byte(wrapped))
	if err != nil {
		t.Fatalf("wrapped: %v", err)
	}
	if prof.ID != "7" || prof.Timezone != "Europe/Berlin" {
		t.Errorf("profile = %+v", prof)
	}
	if prof.FTP != 260 || prof.MaxHR != 188 || len(prof.HRZones) != 5 {
		t.Errorf("ride settings not mapped: %+v", prof)
	}
	if prof.Source != "api" {
		t.Errorf("Source = %q, want api", prof.Source)
	}

	bare := `{"id":"7","name":"A","timezone":""}`
	prof, err = decodeProfile([]byte(bare))
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	if prof.Timezone != "Europe/Zurich" {
		t.Errorf("Timezone default = %q, want Europe/Zurich", prof.Timezone)
	}
	if len(prof.ZoneProfile) == 0 {
		t.Error("ZoneProfile default missing")
	}
}

func TestDecodeProfileRejectsSyntheticOrigin(t *testing.T) {
	for _, origin := range []string{"mock", "cache", "sandbox"} {
		raw := `{"id":"7","source":"` + origin + `"}`
		if _, err := decodeProfile([]byte(raw)); err == nil {
			t.Errorf("origin %q accepted, want error", origin)
		}
	}
}

func TestParseLocalTimeShapes(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Zurich")
	cases := []struct {
		in       string
		wantHour int
	}{
		{"2026-08-10T06:15:00", 6},
		{"2026-08-10", 0},
	}
	for _, tc := range cases {
		got := parseLocalTime(tc.in, loc)
		if got.IsZero() {
			t.Errorf("parseLocalTime(%q) is zero", tc.in)
			continue
		}
		if got.Hour() != tc.wantHour {
			t.Errorf("parseLocalTime(%q).Hour() = %d, want %d", tc.in, got.Hour(), tc.wantHour)
		}
	}
	if got := parseLocalTime("", loc); !got.IsZero() {
		t.Errorf("empty timestamp parsed to %v", got)
	}
	if got := parseLocalTime("not-a-date", loc); !got.IsZero() {
		t.Errorf("garbage timestamp parsed to %v", got)
	}
}
