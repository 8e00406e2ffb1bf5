// Package clock is the single source of "now" and "today" for the app.
//
// Day boundaries are computed in the user's IANA time zone and handed to the
// database as UTC instants, so a habit ticked at 23:30 in Auckland lands on the
// Auckland day, not the server's.
package clock

import (
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout = "2006-01-02"
	DefaultTZ  = "UTC"
)

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns T. Used in tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Location resolves tz, falling back to UTC for empty or unknown names.
func Location(tz string) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidTZ reports whether tz names a loadable zone.
func ValidTZ(tz string) bool {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Today returns the user's current date as YYYY-MM-DD.
func Today(c Clock, tz string) string {
	return c.Now().In(Location(tz)).Format(DateLayout)
}

// DayRangeUTC returns [start, end) of the given local day as UTC instants.
// An unparseable day yields the zero range.
func DayRangeUTC(day string, tz string) (time.Time, time.Time) {
	loc := Location(tz)
	d, err := time.ParseInLocation(DateLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return d.UTC(), d.AddDate(0, 0, 1).UTC()
}

// TodayRangeUTC is DayRangeUTC for today.
func TodayRangeUTC(c Clock, tz string) (time.Time, time.Time) {
	return DayRangeUTC(Today(c, tz), tz)
}

// Week is a Monday-start local week.
type Week struct {
	Start time.Time // UTC instant of Monday 00:00 local
	End   time.Time // UTC instant of the following Monday 00:00 local
	Days  []string  // YYYY-MM-DD, Monday first
}

// WeekOf returns the week containing the current local day.
func WeekOf(c Clock, tz string) Week {
	loc := Location(tz)
	now := c.Now().In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	offset := (int(midnight.Weekday()) + 6) % 7
	monday := midnight.AddDate(0, 0, -offset)

	w := Week{Start: monday.UTC(), End: monday.AddDate(0, 0, 7).UTC()}
	for i := 0; i < 7; i++ {
		w.Days = append(w.Days, monday.AddDate(0, 0, i).Format(DateLayout))
	}
	return w
}

// IsToday reports whether t falls on the user's current local day.
func IsToday(c Clock, tz string, t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.In(Location(tz)).Format(DateLayout) == Today(c, tz)
}
