package domain

import "time"

// DefaultTimezone is the fallback timezone for owners that never configured one.
const DefaultTimezone = "Asia/Ho_Chi_Minh"

// defaultOffset matches DefaultTimezone when the tzdata database is unavailable.
var defaultOffset = time.FixedZone("UTC+7", 7*60*60)

// LoadLocation resolves an IANA timezone name, falling back to a fixed UTC+7
// zone so planning still works on systems without tzdata.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return defaultOffset
	}
	return loc
}

// WeekdaySunday0 returns the weekday of t under the Sunday=0 convention used
// by stored slots and habits. Go's time.Weekday already counts Sunday as 0,
// but the conversion is kept explicit so no caller depends on that accident.
func WeekdaySunday0(t time.Time) int {
	return int(t.Weekday())
}

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DateKey formats t as YYYY-MM-DD in loc. Used to group sessions per day.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
