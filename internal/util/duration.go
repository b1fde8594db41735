// Package util provides shared formatting and parsing helpers for swarmdash.
package util

import (
	"fmt"
	"strconv"
	"time"
)

// NoDuration is the sentinel rendered for an absent duration.
const NoDuration = "—"

// ParseDuration parses human-friendly duration strings.
// Supports: 30s, 5m, 1h, 1d, 1w and standard Go durations (e.g., 1h30m).
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	unit := s[len(s)-1]
	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		// Not a simple unit, try standard Go duration
		return time.ParseDuration(s)
	}

	switch unit {
	case 's':
		return time.Duration(value) * time.Second, nil
	case 'm':
		return time.Duration(value) * time.Minute, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	default:
		return time.ParseDuration(s)
	}
}

// HumanDuration formats d as a compact age string: "42s", "7m", "3h 05m".
// Negative durations clamp to zero.
func HumanDuration(d time.Duration) string {
	s := int(d.Seconds())
	if s < 0 {
		s = 0
	}
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	if s < 3600 {
		return fmt.Sprintf("%dm", s/60)
	}
	return fmt.Sprintf("%dh %02dm", s/3600, (s%3600)/60)
}

// HumanDurationPtr formats an optional duration, rendering NoDuration for nil.
func HumanDurationPtr(d *time.Duration) string {
	if d == nil {
		return NoDuration
	}
	return HumanDuration(*d)
}

// RelativeAge formats an optional age as "Ns ago" style text, with day
// granularity above 24h. nil renders as "n/a".
func RelativeAge(d *time.Duration) string {
	if d == nil {
		return "n/a"
	}
	s := int(d.Seconds())
	if s < 0 {
		s = 0
	}
	switch {
	case s < 60:
		return fmt.Sprintf("%ds ago", s)
	case s < 3600:
		return fmt.Sprintf("%dm ago", s/60)
	case s < 86400:
		return fmt.Sprintf("%dh ago", s/3600)
	default:
		return fmt.Sprintf("%dd ago", s/86400)
	}
}
