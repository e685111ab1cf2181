package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseIntervalDisabled(t *testing.T) {
	for _, in := range []string{"", "  ", "0", "off", "Never"} {
		d, err := ParseInterval(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if d != 0 {
			t.Fatalf("%q: expected 0, got %v", in, d)
		}
	}
}

func TestParseIntervalComposite(t *testing.T) {
	d, err := ParseInterval("1h30m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 90 * time.Minute; d != want {
		t.Fatalf("expected %v, got %v", want, d)
	}
	if got := FormatInterval(d); got != "1h30m" {
		t.Fatalf("unexpected label: %s", got)
	}
	if got := FormatInterval(0); got != "off" {
		t.Fatalf("unexpected label for zero: %s", got)
	}
}

func TestParseIntervalInvalid(t *testing.T) {
	for _, in := range []string{"noop", "5 fortnights", "10m garbage"} {
		if _, err := ParseInterval(in); !errors.Is(err, ErrInvalidInterval) {
			t.Fatalf("%q: expected ErrInvalidInterval, got %v", in, err)
		}
	}
}

func TestCountdown(t *testing.T) {
	now := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		due     time.Duration
		text    string
		urgency Urgency
	}{
		"past":     {-time.Minute, PastDue, UrgencyOverdue},
		"exact":    {0, PastDue, UrgencyOverdue},
		"minutes":  {42 * time.Minute, "42m", UrgencyCritical},
		"hours":    {7*time.Hour + 5*time.Minute, "7h 5m", UrgencyHigh},
		"days":     {(2*24+3)*time.Hour + 15*time.Minute, "2d 3h 15m", UrgencyMedium},
		"few days": {4 * 24 * time.Hour, "4d 0h 0m", UrgencyLow},
		"weeks":    {10 * 24 * time.Hour, "10d 0h 0m", UrgencyNone},
	}
	for name, tc := range tests {
		text, urgency := Countdown(now.Add(tc.due), now)
		if text != tc.text || urgency != tc.urgency {
			t.Fatalf("%s: got (%q, %d), want (%q, %d)", name, text, urgency, tc.text, tc.urgency)
		}
	}
}

func TestAgo(t *testing.T) {
	now := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		at   time.Time
		want string
	}{
		"zero":    {time.Time{}, "never"},
		"now":     {now.Add(-10 * time.Second), "just now"},
		"minutes": {now.Add(-5 * time.Minute), "5m ago"},
		"hours":   {now.Add(-3 * time.Hour), "3h ago"},
		"days":    {now.Add(-50 * time.Hour), "2d ago"},
	}
	for name, tc := range tests {
		if got := Ago(tc.at, now); got != tc.want {
			t.Fatalf("%s: got %q, want %q", name, got, tc.want)
		}
	}
}
