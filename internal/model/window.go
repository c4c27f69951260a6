package model

import (
	"fmt"
	"strings"
	"time"
)

// Window is a named date range anchored to "now".
type Window int

const (
	All Window = iota
	Today
	Week
	Month
)

// Days returns how many calendar days back the window reaches, or -1 when unbounded.
func (w Window) Days() int {
	switch w {
	case Today:
		return 0
	case Week:
		return 7
	case Month:
		return 30
	default:
		return -1
	}
}

// Contains reports whether t falls in the window relative to now. Only the
// calendar date is compared; time-of-day is ignored.
func (w Window) Contains(t, now time.Time) bool {
	days := w.Days()
	if days < 0 {
		return true
	}
	date := truncateDay(t.In(now.Location()))
	today := truncateDay(now)
	if w == Today {
		return date.Equal(today)
	}
	return !date.Before(today.AddDate(0, 0, -days))
}

func (w Window) String() string {
	switch w {
	case Today:
		return "today"
	case Week:
		return "week"
	case Month:
		return "month"
	default:
		return "all"
	}
}

// ParseWindow maps a config value to a Window.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month":
		return Month, nil
	case "week":
		return Week, nil
	case "today", "day":
		return Today, nil
	case "all":
		return All, nil
	default:
		return All, fmt.Errorf("unknown window %q", s)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
