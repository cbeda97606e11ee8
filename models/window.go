package models

import "time"

// Window is a half-open time interval [Start, End) used to scope queries
// and merge passes. The usual window is a single local day.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayWindow returns the window covering the local day that contains t.
func DayWindow(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// String renders the window as "start/end" in RFC 3339. Stable across
// equal windows, so it doubles as a deduplication key.
func (w Window) String() string {
	return w.Start.Format(time.RFC3339) + "/" + w.End.Format(time.RFC3339)
}

// Days returns the start of every local day the window touches, in order.
// Remote snapshots are fetched day by day, so a multi-day window expands
// into one fetch per returned element.
func (w Window) Days() []time.Time {
	if !w.Start.Before(w.End) {
		return nil
	}
	var days []time.Time
	day := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	for day.Before(w.End) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// ScanScope limits a pending-write scan. The zero value means "all".
type ScanScope struct {
	// Day, when non-nil, restricts the scan to the local day containing
	// this timestamp.
	Day *time.Time
}

// ScopeAll returns an unrestricted scan scope.
func ScopeAll() ScanScope {
	return ScanScope{}
}

// ScopeDay returns a scope restricted to the local day containing t.
func ScopeDay(t time.Time) ScanScope {
	return ScanScope{Day: &t}
}

// Window converts the scope into a query window.
// Unrestricted scopes return ok=false: the caller must not filter by time.
func (s ScanScope) Window() (Window, bool) {
	if s.Day == nil {
		return Window{}, false
	}
	return DayWindow(*s.Day), true
}
