package utils

import (
	"fmt"
	"time"
)

// DayLayout is the wire format for day parameters on the records API.
const DayLayout = "2006-01-02"

// FormatDay renders t as a YYYY-MM-DD string in t's location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD string into the midnight of that day in
// the local time zone.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}
