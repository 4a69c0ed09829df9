package core

import (
	"fmt"
	"time"
)

// Window names a time range used to bound aggregation.
type Window string

const (
	WindowAll   Window = "all"
	WindowMonth Window = "month"
	WindowWeek  Window = "week"
	WindowDay   Window = "day"
)

// ParseWindow maps a user-supplied window name to a Window.
// An empty string means all-time.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowMonth:
		return WindowMonth, nil
	case WindowWeek:
		return WindowWeek, nil
	case WindowDay:
		return WindowDay, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Bounds returns the inclusive [from, to] range for the window
// evaluated at now, in now's location. bounded is false for the
// all-time window, in which case from and to are zero.
//
// month is month-to-date, week is a rolling 7-day window (now minus
// 6 days), day starts at local midnight. The upper bound is always now.
func (w Window) Bounds(now time.Time) (from, to time.Time, bounded bool) {
	switch w {
	case WindowMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		from = now.AddDate(0, 0, -6)
	case WindowDay:
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}, time.Time{}, false
	}
	return from, now, true
}
