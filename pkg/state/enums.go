package state

import (
	"fmt"
	"strings"
)

// Tab is one of the top-level screens.
type Tab int

const (
	// TabDashboard shows upcoming work that still needs attention.
	TabDashboard Tab = iota
	// TabCourses lists enrolled courses.
	TabCourses
	// TabAssignments lists every assignment, sorted by the active SortMode.
	TabAssignments
	// TabCalendar lists calendar events and assignment deadlines.
	TabCalendar
	// TabAnnouncements lists course announcements, newest first.
	TabAnnouncements

	tabCount = int(TabAnnouncements) + 1
)

// Tabs lists every tab in display order.
func Tabs() []Tab {
	return []Tab{TabDashboard, TabCourses, TabAssignments, TabCalendar, TabAnnouncements}
}

// Valid reports whether t names a known tab.
func (t Tab) Valid() bool {
	return t >= TabDashboard && t <= TabAnnouncements
}

// Next is the following tab, wrapping from the last to the first.
func (t Tab) Next() Tab {
	return Tab((int(t) + 1) % tabCount)
}

// Prev is the preceding tab, wrapping from the first to the last.
func (t Tab) Prev() Tab {
	return Tab((int(t) + tabCount - 1) % tabCount)
}

// Filtered reports whether the course filter applies to the tab.
func (t Tab) Filtered() bool {
	return t == TabAssignments || t == TabCalendar
}

// Dated reports whether the tab supports jumping to today.
func (t Tab) Dated() bool {
	return t == TabAssignments || t == TabCalendar
}

func (t Tab) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabCourses:
		return "Courses"
	case TabAssignments:
		return "Assignments"
	case TabCalendar:
		return "Calendar"
	case TabAnnouncements:
		return "Announcements"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

// ParseTab accepts a tab name or its 1-based position.
func ParseTab(raw string) (Tab, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for i, t := range Tabs() {
		if key == strings.ToLower(t.String()) || key == fmt.Sprint(i+1) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("state: unknown tab %q", raw)
}

// SortMode orders the Assignments tab.
type SortMode int

const (
	// SortDueAsc orders by due date, earliest first, undated last.
	SortDueAsc SortMode = iota
	// SortDueDesc orders by due date, latest first, undated still last.
	SortDueDesc
	// SortCourse orders by course name, then due date.
	SortCourse
	// SortStatus orders by submission urgency, then due date.
	SortStatus

	sortCount = int(SortStatus) + 1
)

// SortModes lists every mode in cycle order.
func SortModes() []SortMode {
	return []SortMode{SortDueAsc, SortDueDesc, SortCourse, SortStatus}
}

// Next is the following mode in the cycle.
func (m SortMode) Next() SortMode {
	return SortMode((int(m) + 1) % sortCount)
}

// Prev is the preceding mode in the cycle.
func (m SortMode) Prev() SortMode {
	return SortMode((int(m) + sortCount - 1) % sortCount)
}

func (m SortMode) String() string {
	switch m {
	case SortDueAsc:
		return "Due ↑"
	case SortDueDesc:
		return "Due ↓"
	case SortCourse:
		return "Course"
	case SortStatus:
		return "Status"
	default:
		return fmt.Sprintf("SortMode(%d)", int(m))
	}
}

// ParseSortMode accepts the flag spellings used by the CLI.
func ParseSortMode(raw string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "due", "due-asc", "asc":
		return SortDueAsc, nil
	case "due-desc", "desc":
		return SortDueDesc, nil
	case "course":
		return SortCourse, nil
	case "status":
		return SortStatus, nil
	}
	return 0, fmt.Errorf("state: unknown sort mode %q", raw)
}
