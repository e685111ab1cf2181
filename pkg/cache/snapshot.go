package cache

import (
	"sort"
	"time"

	"tableflip.dev/coursework/pkg/record"
)

// SchemaVersion is written into every persisted snapshot.
const SchemaVersion = 1

// Snapshot is an immutable view of every cached record. Each record set is
// deduplicated by ID and ordered by ID. Callers must not mutate a Snapshot
// obtained from a Store.
type Snapshot struct {
	Version       int                           `json:"version"`
	Courses       []record.Course               `json:"courses"`
	Assignments   []record.Assignment           `json:"assignments"`
	Events        []record.CalendarEvent        `json:"calendar_events"`
	Announcements []record.Announcement         `json:"announcements"`
	User          *record.User                  `json:"user,omitempty"`
	SyncedAt      map[record.Category]time.Time `json:"synced_at"`
	Errors        map[record.Category]string    `json:"-"`

	// Revision increases every time a Store publishes a new snapshot.
	Revision uint64 `json:"-"`

	courses map[record.ID]record.Course
}

// Empty returns a snapshot with no records.
func Empty() *Snapshot {
	s := &Snapshot{Version: SchemaVersion}
	s.normalize()
	return s
}

// CourseMap indexes courses by ID.
func (s *Snapshot) CourseMap() map[record.ID]record.Course {
	if s == nil {
		return nil
	}
	return s.courses
}

// Course looks up a course by ID.
func (s *Snapshot) Course(id record.ID) (record.Course, bool) {
	if s == nil {
		return record.Course{}, false
	}
	c, ok := s.courses[id]
	return c, ok
}

// CourseLabel resolves a course reference with the dangling-reference fallback.
func (s *Snapshot) CourseLabel(id record.ID) string {
	return record.CourseLabel(s.CourseMap(), id)
}

// UnreadAnnouncements counts announcements not yet read on Canvas.
func (s *Snapshot) UnreadAnnouncements() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, a := range s.Announcements {
		if a.Unread {
			n++
		}
	}
	return n
}

// Count reports how many records the snapshot holds for a category.
func (s *Snapshot) Count(c record.Category) int {
	if s == nil {
		return 0
	}
	switch c {
	case record.CategoryCourses:
		return len(s.Courses)
	case record.CategoryAssignments:
		return len(s.Assignments)
	case record.CategoryCalendar:
		return len(s.Events)
	case record.CategoryAnnouncements:
		return len(s.Announcements)
	}
	return 0
}

// Status summarizes the last sync attempt for one category.
type Status struct {
	Category record.Category
	SyncedAt time.Time
	Err      string
	Count    int
}

// Synced reports whether the category has ever been fetched successfully.
func (st Status) Synced() bool { return !st.SyncedAt.IsZero() }

// Failed reports whether the last attempt failed.
func (st Status) Failed() bool { return st.Err != "" }

// Status returns the sync status of a category.
func (s *Snapshot) Status(c record.Category) Status {
	st := Status{Category: c, Count: s.Count(c)}
	if s == nil {
		return st
	}
	st.SyncedAt = s.SyncedAt[c]
	st.Err = s.Errors[c]
	return st
}

// Statuses returns the status of every category in display order.
func (s *Snapshot) Statuses() []Status {
	cats := record.Categories()
	out := make([]Status, 0, len(cats))
	for _, c := range cats {
		out = append(out, s.Status(c))
	}
	return out
}

// clone makes a shallow copy whose maps may be modified independently. Record
// slices are shared until replaced.
func (s *Snapshot) clone() *Snapshot {
	next := *s
	next.SyncedAt = make(map[record.Category]time.Time, len(s.SyncedAt)+1)
	for k, v := range s.SyncedAt {
		next.SyncedAt[k] = v
	}
	next.Errors = make(map[record.Category]string, len(s.Errors)+1)
	for k, v := range s.Errors {
		next.Errors[k] = v
	}
	return &next
}

// replace swaps in the batch's records for its category.
func (s *Snapshot) replace(b record.Batch) {
	switch b.Category {
	case record.CategoryCourses:
		s.Courses = dedupeCourses(b.Courses)
		s.courses = indexCourses(s.Courses)
		// A course batch without a profile keeps the last known one.
		if b.User != nil {
			u := *b.User
			s.User = &u
		}
	case record.CategoryAssignments:
		s.Assignments = dedupeAssignments(b.Assignments)
	case record.CategoryCalendar:
		s.Events = dedupeEvents(b.Events)
	case record.CategoryAnnouncements:
		s.Announcements = dedupeAnnouncements(b.Announcements)
	}
}

// batch extracts a category's records as a Batch.
func (s *Snapshot) batch(c record.Category) record.Batch {
	b := record.Batch{Category: c}
	switch c {
	case record.CategoryCourses:
		b.Courses = s.Courses
		b.User = s.User
	case record.CategoryAssignments:
		b.Assignments = s.Assignments
	case record.CategoryCalendar:
		b.Events = s.Events
	case record.CategoryAnnouncements:
		b.Announcements = s.Announcements
	}
	return b
}

// normalize fills defaults for a freshly decoded or constructed snapshot.
func (s *Snapshot) normalize() {
	if s.Version == 0 {
		s.Version = SchemaVersion
	}
	s.Courses = dedupeCourses(s.Courses)
	s.Assignments = dedupeAssignments(s.Assignments)
	s.Events = dedupeEvents(s.Events)
	s.Announcements = dedupeAnnouncements(s.Announcements)
	if s.SyncedAt == nil {
		s.SyncedAt = map[record.Category]time.Time{}
	}
	for c, at := range s.SyncedAt {
		if at.IsZero() {
			delete(s.SyncedAt, c)
		}
	}
	if s.Errors == nil {
		s.Errors = map[record.Category]string{}
	}
	s.courses = indexCourses(s.Courses)
}

func indexCourses(courses []record.Course) map[record.ID]record.Course {
	idx := make(map[record.ID]record.Course, len(courses))
	for _, c := range courses {
		idx[c.ID] = c
	}
	return idx
}

func dedupeCourses(in []record.Course) []record.Course {
	return dedupe(in, func(v record.Course) record.ID { return v.ID })
}

func dedupeAssignments(in []record.Assignment) []record.Assignment {
	return dedupe(in, func(v record.Assignment) record.ID { return v.ID })
}

func dedupeEvents(in []record.CalendarEvent) []record.CalendarEvent {
	return dedupe(in, func(v record.CalendarEvent) record.ID { return v.ID })
}

func dedupeAnnouncements(in []record.Announcement) []record.Announcement {
	return dedupe(in, func(v record.Announcement) record.ID { return v.ID })
}

// dedupe copies in, keeps the last record seen for each ID, drops records
// without an ID and orders the result by ID.
func dedupe[T any](in []T, id func(T) record.ID) []T {
	seen := make(map[record.ID]int, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		key := id(v)
		if key == "" {
			continue
		}
		if i, ok := seen[key]; ok {
			out[i] = v
			continue
		}
		seen[key] = len(out)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return record.CompareID(id(out[i]), id(out[j])) < 0 })
	return out
}
