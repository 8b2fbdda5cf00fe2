package utils

import "time"

const (
	DateLayout      = "2006-01-02"
	DefaultTimezone = "America/Sao_Paulo"
)

// Brasília time (BRT, -03:00). Brazil has no DST since 2019.
var brLoc = func() *time.Location {
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.FixedZone("BRT", -3*3600)
}()

func Location() *time.Location { return brLoc }

// Use explicit "seconds" variant for DB storage
func NowUnixSeconds() int64 { return time.Now().Unix() }

// Returns zero time if t<=0 to let callers decide how to render.
func FromUnixSecondsBR(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(brLoc)
}

func FormatRFC3339BR(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(brLoc).Format(time.RFC3339)
}

// ParseDate accepts a calendar date (2025-01-31) or a full RFC3339 timestamp.
// Calendar dates are interpreted in Brasília time.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, brLoc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(brLoc), true
	}
	return time.Time{}, false
}

// DateOf truncates t to midnight of its calendar day in Brasília time.
func DateOf(t time.Time) time.Time {
	bt := t.In(brLoc)
	return time.Date(bt.Year(), bt.Month(), bt.Day(), 0, 0, 0, 0, brLoc)
}
