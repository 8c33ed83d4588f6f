package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

// Weekdays in calendar order, as stored on subjects and timetables.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Calendar computes "today" at a fixed UTC offset, regardless of the server's timezone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar parses offset ("+05:30", "-04:00", "Z") into a fixed zone.
func NewCalendar(offset string) (*Calendar, error) {
	loc, err := ParseOffset(offset)
	if err != nil {
		return nil, err
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

// NewCalendarFromConfig panics on a bad offset; config is validated at startup.
func NewCalendarFromConfig(conf *Config) *Calendar {
	cal, err := NewCalendar(conf.TodayOffset)
	if err != nil {
		panic(err)
	}
	return cal
}

// ParseOffset turns "+HH:MM" into a fixed *time.Location.
func ParseOffset(offset string) (*time.Location, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" || offset == "Z" || offset == "UTC" {
		return time.UTC, nil
	}
	if len(offset) != 6 || (offset[0] != '+' && offset[0] != '-') || offset[3] != ':' {
		return nil, errors.Errorf("invalid UTC offset %q", offset)
	}
	hh, err := strconv.Atoi(offset[1:3])
	if err != nil || hh > 14 {
		return nil, errors.Errorf("invalid UTC offset %q", offset)
	}
	mm, err := strconv.Atoi(offset[4:6])
	if err != nil || mm > 59 {
		return nil, errors.Errorf("invalid UTC offset %q", offset)
	}
	secs := hh*3600 + mm*60
	if offset[0] == '-' {
		secs = -secs
	}
	return time.FixedZone("UTC"+offset, secs), nil
}

// SetClock replaces the time source. Used by tests.
func (c *Calendar) SetClock(now func() time.Time) { c.now = now }

func (c *Calendar) Location() *time.Location { return c.loc }

// Now returns the current instant in the calendar's zone.
func (c *Calendar) Now() time.Time { return c.now().In(c.loc) }

// Today returns the current local date as YYYY-MM-DD.
func (c *Calendar) Today() string { return c.Now().Format(DateLayout) }

// Weekday returns the current local weekday, lowercased.
func (c *Calendar) Weekday() string { return strings.ToLower(c.Now().Weekday().String()) }

// LastDays returns the n local dates ending today, oldest first.
func (c *Calendar) LastDays(n int) []string {
	now := c.Now()
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, now.AddDate(0, 0, -i).Format(DateLayout))
	}
	return days
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", errors.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}

// IsWeekday reports whether day is a lowercase weekday name.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
