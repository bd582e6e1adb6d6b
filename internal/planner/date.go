package planner

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar days. Days carry no time
// component and no timezone; comparing two day strings with < and >
// compares them chronologically.
const DayFormat = "2006-01-02"

// Weekday numbering used across the planner: 0 = Sunday ... 6 =
// Saturday, identical to time.Weekday. RecurringTask.Days uses the
// same numbering.
const (
	Sunday   = int(time.Sunday)
	Saturday = int(time.Saturday)
)

// Day truncates an instant to its calendar day in the instant's
// location.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseDay validates a YYYY-MM-DD string and returns its midnight UTC
// representation.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return t, nil
}

// WeekdayOf returns the weekday number (0 = Sunday) of a day string.
func WeekdayOf(day string) (int, error) {
	t, err := ParseDay(day)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// AddDays shifts a day string by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DayFormat), nil
}

// DayLabel renders a human-readable relative label for a day given a
// reference today: "Today", "Tomorrow", "Yesterday", or a short
// formatted date.
func DayLabel(day, today string) string {
	switch {
	case day == today:
		return "Today"
	default:
		if tomorrow, err := AddDays(today, 1); err == nil && day == tomorrow {
			return "Tomorrow"
		}
		if yesterday, err := AddDays(today, -1); err == nil && day == yesterday {
			return "Yesterday"
		}
	}
	t, err := ParseDay(day)
	if err != nil {
		return day
	}
	return t.Format("Mon, Jan 2")
}
