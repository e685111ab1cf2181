package timeutil

import (
	"fmt"
	"time"
)

// PastDue is the countdown label for a deadline that has passed.
const PastDue = "Past due"

// Urgency grades how close a deadline is.
type Urgency int

const (
	UrgencyNone     Urgency = iota // a week or more
	UrgencyLow                     // three to seven days
	UrgencyMedium                  // one to three days
	UrgencyHigh                    // six to twenty-four hours
	UrgencyCritical                // under six hours
	UrgencyOverdue
)

// Countdown renders the time left until due as "2d 3h 15m", "3h 15m" or
// "15m", and grades its urgency.
func Countdown(due, now time.Time) (string, Urgency) {
	remaining := due.Sub(now)
	if remaining <= 0 {
		return PastDue, UrgencyOverdue
	}
	totalMins := int64(remaining / time.Minute)
	days := totalMins / (24 * 60)
	hours := (totalMins / 60) % 24
	mins := totalMins % 60

	var text string
	switch {
	case days > 0:
		text = fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		text = fmt.Sprintf("%dh %dm", hours, mins)
	default:
		text = fmt.Sprintf("%dm", mins)
	}

	switch {
	case days >= 7:
		return text, UrgencyNone
	case days >= 3:
		return text, UrgencyLow
	case days >= 1:
		return text, UrgencyMedium
	case hours >= 6:
		return text, UrgencyHigh
	}
	return text, UrgencyCritical
}

// Ago renders how long ago t was: "just now", "5m ago", "3h ago", "2d ago".
// A zero t renders as "never".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
	return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
}
