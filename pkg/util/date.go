package util

import (
    "strconv"
    "time"
)

// ParseTime tries RFC3339, RFC3339Nano, date-only, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if t, err := time.Parse("2006-01-02", s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// DayFloor truncates t to midnight in its own location.
func DayFloor(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday midnight of the week containing t.
func WeekStart(t time.Time) time.Time {
    t = DayFloor(t)
    wd := int(t.Weekday())
    if wd == 0 {
        wd = 7
    }
    return t.AddDate(0, 0, -(wd - 1))
}

// DateKey formats t as YYYY-MM-DD in its own location.
func DateKey(t time.Time) string {
    return t.Format("2006-01-02")
}

// DaysBetween counts whole calendar days from a to b (inclusive bounds floored).
func DaysBetween(a, b time.Time) int {
    a, b = DayFloor(a), DayFloor(b)
    return int(b.Sub(a) / (24 * time.Hour))
}
