// Package record defines the learning-management records browsed by coursework.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID identifies a remote record. The service hands out numeric identifiers for
// most resources but string identifiers for some calendar items, so IDs are kept
// opaque.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("record: decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record: decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// CompareID orders identifiers numerically when both are numeric and
// lexically otherwise. Numeric identifiers sort before non-numeric ones.
func CompareID(a, b ID) int {
	an, bn := isNumeric(string(a)), isNumeric(string(b))
	switch {
	case an && bn:
		as := strings.TrimLeft(string(a), "0")
		bs := strings.TrimLeft(string(b), "0")
		if len(as) != len(bs) {
			if len(as) < len(bs) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(as, bs); c != 0 {
			return c
		}
		return strings.Compare(string(a), string(b))
	case an:
		return -1
	case bn:
		return 1
	default:
		return strings.Compare(string(a), string(b))
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Category names one of the independently synchronized resource kinds.
type Category string

const (
	// CategoryCourses holds the user's active courses.
	CategoryCourses Category = "courses"
	// CategoryAssignments holds assignments across all courses.
	CategoryAssignments Category = "assignments"
	// CategoryCalendar holds calendar events.
	CategoryCalendar Category = "calendar"
	// CategoryAnnouncements holds course announcements.
	CategoryAnnouncements Category = "announcements"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryCourses,
		CategoryAssignments,
		CategoryCalendar,
		CategoryAnnouncements,
	}
}

// ParseCategory converts user input to a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range Categories() {
		if candidate == c {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("record: unknown category %q", raw)
}

// Title is the human label for the category.
func (c Category) Title() string {
	switch c {
	case CategoryCourses:
		return "Courses"
	case CategoryAssignments:
		return "Assignments"
	case CategoryCalendar:
		return "Calendar"
	case CategoryAnnouncements:
		return "Announcements"
	default:
		return string(c)
	}
}

// Course is an enrolled course.
type Course struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
	Term string `json:"term,omitempty"`
}

// Assignment belongs to a course by reference only; the course may be unknown.
type Assignment struct {
	ID             ID               `json:"id"`
	CourseID       ID               `json:"course_id"`
	Title          string           `json:"title"`
	DueAt          *time.Time       `json:"due_at,omitempty"`
	Status         SubmissionStatus `json:"status,omitempty"`
	PointsPossible float64          `json:"points_possible,omitempty"`
	Score          *float64         `json:"score,omitempty"`
	URL            string           `json:"url,omitempty"`
}

// CalendarEvent is a dated item on the user's calendar.
type CalendarEvent struct {
	ID           ID         `json:"id"`
	Title        string     `json:"title"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        *time.Time `json:"end_at,omitempty"`
	CourseID     *ID        `json:"course_id,omitempty"`
	AssignmentID *ID        `json:"assignment_id,omitempty"`
	Location     string     `json:"location,omitempty"`
}

// Announcement is a course announcement with a plain-text excerpt.
type Announcement struct {
	ID       ID        `json:"id"`
	CourseID ID        `json:"course_id"`
	Title    string    `json:"title"`
	PostedAt time.Time `json:"posted_at"`
	Excerpt  string    `json:"excerpt,omitempty"`
	Author   string    `json:"author,omitempty"`
	Unread   bool      `json:"unread,omitempty"`
}

// User is the account the API token belongs to.
type User struct {
	ID        ID     `json:"id"`
	Name      string `json:"name,omitempty"`
	ShortName string `json:"short_name,omitempty"`
}

// DisplayName prefers the short name, then the full name.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.ShortName != "":
		return u.ShortName
	}
	return u.Name
}

// Batch is the result of fetching a single category. Only the slice matching
// Category is meaningful.
type Batch struct {
	Category      Category
	Courses       []Course
	Assignments   []Assignment
	Events        []CalendarEvent
	Announcements []Announcement
	// User rides along with courses when the profile could be fetched.
	User *User
}

// Len reports how many records the batch carries for its category.
func (b Batch) Len() int {
	switch b.Category {
	case CategoryCourses:
		return len(b.Courses)
	case CategoryAssignments:
		return len(b.Assignments)
	case CategoryCalendar:
		return len(b.Events)
	case CategoryAnnouncements:
		return len(b.Announcements)
	default:
		return 0
	}
}
