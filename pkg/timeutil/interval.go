// Package timeutil parses refresh intervals and renders the relative time
// labels shown next to deadlines and sync indicators.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInterval is wrapped by every ParseInterval failure.
var ErrInvalidInterval = errors.New("invalid interval")

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitMap        = map[string]time.Duration{
		"s":       time.Second,
		"sec":     time.Second,
		"secs":    time.Second,
		"second":  time.Second,
		"seconds": time.Second,
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hrs":     time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
		"d":       24 * time.Hour,
		"day":     24 * time.Hour,
		"days":    24 * time.Hour,
	}
	disabled = map[string]bool{"": true, "0": true, "off": true, "never": true, "none": true}
)

// ParseInterval parses a compact duration such as "15m", "1h" or "1h30m".
// Empty input, "0", "off" and "never" yield zero, meaning disabled.
func ParseInterval(input string) (time.Duration, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if disabled[remaining] {
		return 0, nil
	}

	total := time.Duration(0)
	for len(remaining) > 0 {
		matches := segmentPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, fmt.Errorf("%w: bad segment %q", ErrInvalidInterval, strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: value %q: %v", ErrInvalidInterval, matches[1], err)
		}
		base, ok := unitMap[matches[2]]
		if !ok {
			return 0, fmt.Errorf("%w: unsupported unit %q", ErrInvalidInterval, matches[2])
		}
		total += time.Duration(value) * base
		remaining = remaining[len(matches[0]):]
	}
	return total, nil
}

// FormatInterval renders d with day/hour/minute/second tokens, or "off" for
// a non-positive duration.
func FormatInterval(d time.Duration) string {
	if d <= 0 {
		return "off"
	}
	units := []struct {
		label string
		value time.Duration
	}{
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}
	var b strings.Builder
	remaining := d
	for _, u := range units {
		if remaining < u.value {
			continue
		}
		count := remaining / u.value
		remaining -= count * u.value
		fmt.Fprintf(&b, "%d%s", count, u.label)
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
