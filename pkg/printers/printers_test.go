package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/view"
)

var now = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

func init() {
	color.NoColor = true
}

func TestDaysIn(t *testing.T) {
	tests := map[string]struct {
		then time.Time
		want int
	}{
		"leap feb": {time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29},
		"feb":      {time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		"april":    {time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), 30},
		"december": {time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 31},
	}
	for name, tc := range tests {
		if got := DaysIn(tc.then); got != tc.want {
			t.Fatalf("%s: got %d, want %d", name, got, tc.want)
		}
	}
	if got := StartDay(now); got != time.Monday {
		t.Fatalf("April 2024 starts on %s", got)
	}
	if got := NextMonth(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)); got.Month() != time.February {
		t.Fatalf("next month of Jan 31 is %s", got.Month())
	}
}

func TestRows(t *testing.T) {
	due := now.Add(26 * time.Hour)
	posted := now.Add(-3 * time.Hour)
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, Now: now, ShowID: true}
	pp.Rows([]view.Row{
		{Kind: view.KindAssignment, ID: "a1", Title: "Lab report", CourseLabel: "Biology", At: &due, Status: record.StatusNotSubmitted},
		{Kind: view.KindAnnouncement, ID: "n1", Title: "Welcome", CourseLabel: "Algebra", At: &posted},
		{Kind: view.KindCourse, ID: "c1", Title: "Chemistry", Detail: "CHEM 101"},
	})
	out := buf.String()
	for _, want := range []string{"a1", "Lab report", "Biology", "Not submitted", "1d 2h 0m", "3h ago", "no date", "CHEM 101"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRowsEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Rows(nil)
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestStatuses(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, Now: now}
	pp.Statuses([]cache.Status{
		{Category: record.CategoryCourses, SyncedAt: now.Add(-5 * time.Minute), Count: 4},
		{Category: record.CategoryAssignments, Err: "canvas: HTTP 500"},
		{Category: record.CategoryCalendar},
	})
	out := buf.String()
	for _, want := range []string{"Courses", "5m ago", "canvas: HTTP 500", "never synced"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMonth(t *testing.T) {
	due := time.Date(2024, 4, 25, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, Now: now}
	pp.Month(now, []view.Row{{At: &due}, {}})
	out := buf.String()
	if !strings.Contains(out, "April 2024") || !strings.Contains(out, "30") {
		t.Fatalf("unexpected month grid:\n%s", out)
	}
}
