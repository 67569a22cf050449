package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeDateOnly(t *testing.T) {
    got, ok := ParseTime("2024-10-10")
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Year() != 2024 || got.Month() != time.October || got.Day() != 10 {
        t.Fatalf("unexpected date %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestWeekStart(t *testing.T) {
    // 2024-10-10 is a Thursday; its week starts Monday 2024-10-07.
    thu := time.Date(2024, 10, 10, 15, 30, 0, 0, time.UTC)
    got := WeekStart(thu)
    if DateKey(got) != "2024-10-07" {
        t.Fatalf("unexpected week start %s", DateKey(got))
    }
    mon := time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)
    if !WeekStart(mon).Equal(mon) {
        t.Fatalf("monday should be its own week start")
    }
    sun := time.Date(2024, 10, 13, 23, 0, 0, 0, time.UTC)
    if DateKey(WeekStart(sun)) != "2024-10-07" {
        t.Fatalf("sunday should fold back to monday")
    }
}

func TestDaysBetween(t *testing.T) {
    a := time.Date(2024, 10, 1, 23, 0, 0, 0, time.UTC)
    b := time.Date(2024, 10, 8, 1, 0, 0, 0, time.UTC)
    if got := DaysBetween(a, b); got != 7 {
        t.Fatalf("expected 7 days, got %d", got)
    }
}
