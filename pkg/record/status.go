package record

import (
	"fmt"
	"strings"
)

// SubmissionStatus is the user's submission state for an assignment.
type SubmissionStatus string

const (
	// StatusNotSubmitted means nothing has been turned in yet.
	StatusNotSubmitted SubmissionStatus = "not_submitted"
	// StatusSubmitted means work was turned in but not graded.
	StatusSubmitted SubmissionStatus = "submitted"
	// StatusGraded means the submission has a grade.
	StatusGraded SubmissionStatus = "graded"
	// StatusMissing means the service flagged the assignment as missing.
	StatusMissing SubmissionStatus = "missing"
	// StatusLate means the deadline passed without a submission, or the
	// submission was flagged late.
	StatusLate SubmissionStatus = "late"
)

// Statuses lists the statuses in priority order.
func Statuses() []SubmissionStatus {
	return []SubmissionStatus{
		StatusMissing,
		StatusLate,
		StatusNotSubmitted,
		StatusSubmitted,
		StatusGraded,
	}
}

// Priority orders statuses for sorting: the lower the number, the more urgent.
// Unknown values sort with not submitted.
func (s SubmissionStatus) Priority() int {
	switch s {
	case StatusMissing:
		return 0
	case StatusLate:
		return 1
	case StatusSubmitted:
		return 3
	case StatusGraded:
		return 4
	default:
		return 2
	}
}

// Done reports whether the status needs no further action from the user.
func (s SubmissionStatus) Done() bool {
	return s == StatusSubmitted || s == StatusGraded
}

// Label is the short human-readable form.
func (s SubmissionStatus) Label() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusGraded:
		return "Graded"
	case StatusMissing:
		return "Missing"
	case StatusLate:
		return "Late"
	default:
		return "Not submitted"
	}
}

// ParseSubmissionStatus accepts the canonical names and a few loose aliases.
func ParseSubmissionStatus(raw string) (SubmissionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "not_submitted", "unsubmitted", "todo":
		return StatusNotSubmitted, nil
	case "submitted":
		return StatusSubmitted, nil
	case "graded":
		return StatusGraded, nil
	case "missing":
		return StatusMissing, nil
	case "late", "past_due":
		return StatusLate, nil
	}
	return "", fmt.Errorf("record: unknown submission status %q", raw)
}

// CourseLabel resolves a course reference to a display name. A dangling
// reference yields a placeholder and an empty reference yields "".
func CourseLabel(courses map[ID]Course, id ID) string {
	if id == "" {
		return ""
	}
	if c, ok := courses[id]; ok {
		if name := strings.TrimSpace(c.Name); name != "" {
			return name
		}
		if code := strings.TrimSpace(c.Code); code != "" {
			return code
		}
	}
	return fmt.Sprintf("Unknown course (%s)", id)
}
