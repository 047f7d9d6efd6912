package domain

import (
	"regexp"
	"strconv"
	"time"
)

var (
	// twelveHourRe matches "2:30 PM", "02:30 PM", "2 PM" and "12 AM".
	twelveHourRe = regexp.MustCompile(`^(1[0-2]|0?[1-9])(?::([0-5][0-9]))? (AM|PM)$`)

	// twentyFourHourRe matches "14:30" and "02:30". A single-digit hour
	// without AM/PM is ambiguous and rejected.
	twentyFourHourRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
)

// DateLayout is the only accepted session date format.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time without a date or zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time in the "03:04 PM" form used by session templates.
func (t TimeOfDay) String() string {
	return time.Date(0, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format("03:04 PM")
}

// On places the time of day on the given calendar date in loc. A time that
// falls in a spring-forward gap moves forward by the gap, so "2:30 AM" on the
// switch day becomes 3:30 daylight time.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	at := time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
	if at.Hour() == t.Hour && at.Minute() == t.Minute {
		return at
	}
	wall := time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
	_, offset := wall.Add(-24 * time.Hour).In(loc).Zone()
	return wall.Add(-time.Duration(offset) * time.Second).In(loc)
}

// ParseTimeOfDay accepts 12-hour times with a mandatory AM/PM suffix, with or
// without minutes, and zero-padded 24-hour HH:MM times.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if m := twelveHourRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		hour %= 12
		if m[3] == "PM" {
			hour += 12
		}
		return TimeOfDay{Hour: hour, Minute: minute}, nil
	}
	if m := twentyFourHourRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return TimeOfDay{Hour: hour, Minute: minute}, nil
	}
	return TimeOfDay{}, &TimeFormatError{Value: s}
}

// ParseDate parses a YYYY-MM-DD session date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s}
	}
	return d, nil
}
