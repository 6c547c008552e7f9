package model

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-date layout used for collection dates,
// slot keys and trending history keys.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// AddDays returns the day n calendar days after d.
func AddDays(d time.Time, n int) time.Time {
	return Day(d).AddDate(0, 0, n)
}
