// Package view derives the ordered rows each tab displays from a cache
// snapshot and the interaction state. Everything here is a pure function of
// its inputs, so the UI can re-project on every frame.
package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/state"
)

// UpcomingWindow is how far ahead the Dashboard looks.
const UpcomingWindow = 30 * 24 * time.Hour

// Kind identifies what a Row was built from.
type Kind int

const (
	KindCourse Kind = iota
	KindAssignment
	KindEvent
	// KindDeadline is an assignment due date shown on the calendar.
	KindDeadline
	KindAnnouncement
)

func (k Kind) String() string {
	switch k {
	case KindCourse:
		return "course"
	case KindAssignment:
		return "assignment"
	case KindEvent:
		return "event"
	case KindDeadline:
		return "deadline"
	case KindAnnouncement:
		return "announcement"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Row is one displayable line of a tab.
type Row struct {
	Kind        Kind
	ID          record.ID
	Title       string
	CourseID    record.ID
	CourseLabel string
	// At is the due date, start time or posting time, if any.
	At     *time.Time
	Status record.SubmissionStatus
	Detail string
	// Unread marks announcements not yet opened on Canvas.
	Unread bool
	// Record is the underlying record value (record.Course, record.Assignment,
	// record.CalendarEvent or record.Announcement).
	Record any
}

// Project returns the rows of tab for the given snapshot and state. now
// anchors "today" and past-due detection.
func Project(tab state.Tab, snap *cache.Snapshot, st state.State, now time.Time) []Row {
	if snap == nil {
		snap = cache.Empty()
	}
	switch tab {
	case state.TabDashboard:
		return dashboard(snap, now)
	case state.TabCourses:
		return courses(snap)
	case state.TabAssignments:
		return assignments(snap, st, now)
	case state.TabCalendar:
		return calendar(snap, st, now)
	case state.TabAnnouncements:
		return announcements(snap)
	}
	return nil
}

// EffectiveStatus is the assignment status as of now: an unsubmitted
// assignment whose deadline passed counts as late.
func EffectiveStatus(a record.Assignment, now time.Time) record.SubmissionStatus {
	status := a.Status
	if status == "" {
		status = record.StatusNotSubmitted
	}
	if status == record.StatusNotSubmitted && a.DueAt != nil && a.DueAt.Before(now) {
		return record.StatusLate
	}
	return status
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func assignmentRow(snap *cache.Snapshot, a record.Assignment, now time.Time) Row {
	return Row{
		Kind:        KindAssignment,
		ID:          a.ID,
		Title:       titleOr(a.Title, "Unnamed assignment"),
		CourseID:    a.CourseID,
		CourseLabel: snap.CourseLabel(a.CourseID),
		At:          a.DueAt,
		Status:      EffectiveStatus(a, now),
		Detail:      pointsDetail(a),
		Record:      a,
	}
}

func dashboard(snap *cache.Snapshot, now time.Time) []Row {
	from := StartOfDay(now)
	until := now.Add(UpcomingWindow)
	rows := make([]Row, 0, len(snap.Assignments))
	for _, a := range snap.Assignments {
		if a.DueAt == nil || a.DueAt.Before(from) || a.DueAt.After(until) {
			continue
		}
		if a.Status.Done() {
			continue
		}
		rows = append(rows, assignmentRow(snap, a, now))
	}
	sort.SliceStable(rows, func(i, j int) bool { return lessDueAsc(rows[i], rows[j]) })
	return rows
}

func courses(snap *cache.Snapshot) []Row {
	rows := make([]Row, 0, len(snap.Courses))
	for _, c := range snap.Courses {
		rows = append(rows, Row{
			Kind:        KindCourse,
			ID:          c.ID,
			Title:       titleOr(c.Name, "Unnamed course"),
			CourseID:    c.ID,
			CourseLabel: snap.CourseLabel(c.ID),
			Detail:      joinNonEmpty(" · ", c.Code, c.Term),
			Record:      c,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := compareFold(rows[i].Title, rows[j].Title); c != 0 {
			return c < 0
		}
		return record.CompareID(rows[i].ID, rows[j].ID) < 0
	})
	return rows
}

func assignments(snap *cache.Snapshot, st state.State, now time.Time) []Row {
	rows := make([]Row, 0, len(snap.Assignments))
	for _, a := range snap.Assignments {
		if !st.Filter.Allows(a.CourseID) {
			continue
		}
		rows = append(rows, assignmentRow(snap, a, now))
	}
	var less func(a, b Row) bool
	switch st.Sort {
	case state.SortDueDesc:
		less = lessDueDesc
	case state.SortCourse:
		less = lessCourse
	case state.SortStatus:
		less = lessStatus
	default:
		less = lessDueAsc
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return rows
}

func calendar(snap *cache.Snapshot, st state.State, now time.Time) []Row {
	covered := make(map[record.ID]bool)
	byID := make(map[record.ID]record.Assignment, len(snap.Assignments))
	for _, a := range snap.Assignments {
		byID[a.ID] = a
	}
	rows := make([]Row, 0, len(snap.Events)+len(snap.Assignments))
	for _, e := range snap.Events {
		if e.AssignmentID != nil {
			covered[*e.AssignmentID] = true
		}
		var course record.ID
		if e.CourseID != nil {
			course = *e.CourseID
		}
		// Events without a course are never filtered out.
		if course != "" && !st.Filter.Allows(course) {
			continue
		}
		start := e.StartAt
		row := Row{
			Kind:        KindEvent,
			ID:          e.ID,
			Title:       titleOr(e.Title, "Untitled"),
			CourseID:    course,
			CourseLabel: snap.CourseLabel(course),
			At:          &start,
			Detail:      e.Location,
			Record:      e,
		}
		if e.AssignmentID != nil {
			row.Kind = KindDeadline
			// The event's start is the deadline; the assignment, when cached,
			// carries the submission state.
			a, ok := byID[*e.AssignmentID]
			if !ok {
				a = record.Assignment{ID: *e.AssignmentID, DueAt: &start}
			}
			a.DueAt = &start
			row.Status = EffectiveStatus(a, now)
		}
		rows = append(rows, row)
	}
	for _, a := range snap.Assignments {
		if a.DueAt == nil || covered[a.ID] || !st.Filter.Allows(a.CourseID) {
			continue
		}
		row := assignmentRow(snap, a, now)
		row.Kind = KindDeadline
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := compareTime(a.At, b.At); c != 0 {
			return c < 0
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return record.CompareID(a.ID, b.ID) < 0
	})
	return rows
}

func announcements(snap *cache.Snapshot) []Row {
	rows := make([]Row, 0, len(snap.Announcements))
	for _, n := range snap.Announcements {
		posted := n.PostedAt
		rows = append(rows, Row{
			Kind:        KindAnnouncement,
			ID:          n.ID,
			Title:       titleOr(n.Title, "Untitled"),
			CourseID:    n.CourseID,
			CourseLabel: snap.CourseLabel(n.CourseID),
			At:          &posted,
			Detail:      n.Excerpt,
			Unread:      n.Unread,
			Record:      n,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.At.Equal(*b.At) {
			return a.At.After(*b.At)
		}
		return record.CompareID(a.ID, b.ID) < 0
	})
	return rows
}

// compareTime orders dated before undated.
func compareTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

func lessDueAsc(a, b Row) bool {
	if c := compareTime(a.At, b.At); c != 0 {
		return c < 0
	}
	return record.CompareID(a.ID, b.ID) < 0
}

func lessDueDesc(a, b Row) bool {
	switch {
	case a.At == nil && b.At == nil:
		return record.CompareID(a.ID, b.ID) < 0
	case a.At == nil:
		return false
	case b.At == nil:
		return true
	case !a.At.Equal(*b.At):
		return a.At.After(*b.At)
	}
	return record.CompareID(a.ID, b.ID) < 0
}

func lessCourse(a, b Row) bool {
	if c := compareFold(a.CourseLabel, b.CourseLabel); c != 0 {
		return c < 0
	}
	if a.CourseID != b.CourseID {
		return record.CompareID(a.CourseID, b.CourseID) < 0
	}
	return lessDueAsc(a, b)
}

func lessStatus(a, b Row) bool {
	if pa, pb := a.Status.Priority(), b.Status.Priority(); pa != pb {
		return pa < pb
	}
	return lessDueAsc(a, b)
}

// compareFold compares case-insensitively, falling back to a byte comparison
// so distinct strings never tie.
func compareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func titleOr(title, fallback string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fallback
}

func pointsDetail(a record.Assignment) string {
	switch {
	case a.Score != nil && a.PointsPossible > 0:
		return fmt.Sprintf("%.1f/%g pts", *a.Score, a.PointsPossible)
	case a.PointsPossible > 0:
		return fmt.Sprintf("%g pts", a.PointsPossible)
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
