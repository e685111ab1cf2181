package view

import (
	"sort"
	"time"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/state"
)

// Projector binds a snapshot and a clock so the state machine can ask about
// list shapes. It implements state.Projection.
type Projector struct {
	Snap *cache.Snapshot
	Now  time.Time
}

var _ state.Projection = Projector{}

// Len implements state.Projection.
func (p Projector) Len(tab state.Tab, s state.State) int {
	return len(Project(tab, p.Snap, s, p.Now))
}

// TodayIndex implements state.Projection. The calendar falls back to its last
// row when everything is in the past; assignments fall back to the first.
func (p Projector) TodayIndex(tab state.Tab, s state.State) int {
	rows := Project(tab, p.Snap, s, p.Now)
	if len(rows) == 0 {
		return -1
	}
	from := StartOfDay(p.Now)
	for i, r := range rows {
		if r.At != nil && !r.At.Before(from) {
			return i
		}
	}
	if tab == state.TabCalendar {
		return len(rows) - 1
	}
	return 0
}

// FilterOptions implements state.Projection: known courses by name, then any
// course referenced by an assignment or event that is not known, by ID.
func (p Projector) FilterOptions() []record.ID {
	return FilterOptions(p.Snap)
}

// FilterOptions lists the course IDs offered by the filter popup.
func FilterOptions(snap *cache.Snapshot) []record.ID {
	if snap == nil {
		return nil
	}
	rows := courses(snap)
	out := make([]record.ID, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	dangling := map[record.ID]bool{}
	note := func(id record.ID) {
		if id == "" {
			return
		}
		if _, ok := snap.Course(id); !ok {
			dangling[id] = true
		}
	}
	for _, a := range snap.Assignments {
		note(a.CourseID)
	}
	for _, e := range snap.Events {
		if e.CourseID != nil {
			note(*e.CourseID)
		}
	}
	extra := make([]record.ID, 0, len(dangling))
	for id := range dangling {
		extra = append(extra, id)
	}
	sort.Slice(extra, func(i, j int) bool { return record.CompareID(extra[i], extra[j]) < 0 })
	return append(out, extra...)
}

// FilterOption is one line of the filter popup.
type FilterOption struct {
	CourseID record.ID
	Label    string
	Checked  bool
}

// PopupFrame is the rendered filter popup.
type PopupFrame struct {
	Options []FilterOption
	Cursor  int
}

// Frame is everything the renderer needs for one tick.
type Frame struct {
	Tab  state.Tab
	Rows []Row
	// Selected indexes Rows, or is -1 when Rows is empty.
	Selected int
	Sort     state.SortMode
	Filter   []record.ID
	// Popup is nil while the filter popup is closed.
	Popup    *PopupFrame
	Statuses []cache.Status
	Syncing  bool
	// Focal is the first upcoming assignment that still needs work.
	Focal    record.ID
	Overview Overview
	Now      time.Time
	Revision uint64
}

// Overview is the Dashboard summary line.
type Overview struct {
	// Name is empty until a profile has been cached.
	Name     string
	Courses  int
	Upcoming int
	Unread   int
}

// Summarize counts enrolled courses, calendar items from today through
// UpcomingWindow and unread announcements.
func Summarize(snap *cache.Snapshot, now time.Time) Overview {
	if snap == nil {
		return Overview{}
	}
	o := Overview{
		Name:    snap.User.DisplayName(),
		Courses: len(snap.Courses),
		Unread:  snap.UnreadAnnouncements(),
	}
	from, until := StartOfDay(now), now.Add(UpcomingWindow)
	for _, e := range snap.Events {
		if !e.StartAt.Before(from) && !e.StartAt.After(until) {
			o.Upcoming++
		}
	}
	return o
}

// Render builds the frame for the active tab.
func Render(snap *cache.Snapshot, st state.State, now time.Time, syncing bool) Frame {
	if snap == nil {
		snap = cache.Empty()
	}
	rows := Project(st.Tab, snap, st, now)
	selected := -1
	if len(rows) > 0 {
		selected = st.Current()
		if selected < 0 {
			selected = 0
		}
		if selected >= len(rows) {
			selected = len(rows) - 1
		}
	}

	f := Frame{
		Tab:      st.Tab,
		Rows:     rows,
		Selected: selected,
		Sort:     st.Sort,
		Filter:   st.Filter.IDs(),
		Statuses: snap.Statuses(),
		Syncing:  syncing,
		Focal:    focal(snap, now),
		Overview: Summarize(snap, now),
		Now:      now,
		Revision: snap.Revision,
	}
	if st.Popup.Open {
		ids := FilterOptions(snap)
		opts := make([]FilterOption, 0, len(ids))
		for _, id := range ids {
			opts = append(opts, FilterOption{
				CourseID: id,
				Label:    snap.CourseLabel(id),
				Checked:  st.Filter.Contains(id),
			})
		}
		f.Popup = &PopupFrame{Options: opts, Cursor: st.Popup.Cursor}
	}
	return f
}

// SelectedRow returns the highlighted row, if any.
func (f Frame) SelectedRow() (Row, bool) {
	if f.Selected < 0 || f.Selected >= len(f.Rows) {
		return Row{}, false
	}
	return f.Rows[f.Selected], true
}

// Failed lists the categories whose last sync failed.
func (f Frame) Failed() []cache.Status {
	var out []cache.Status
	for _, st := range f.Statuses {
		if st.Failed() {
			out = append(out, st)
		}
	}
	return out
}

// LastSynced is the oldest successful sync time across categories, or zero
// if any category has never synced.
func (f Frame) LastSynced() time.Time {
	var oldest time.Time
	for _, st := range f.Statuses {
		if !st.Synced() {
			return time.Time{}
		}
		if oldest.IsZero() || st.SyncedAt.Before(oldest) {
			oldest = st.SyncedAt
		}
	}
	return oldest
}

func focal(snap *cache.Snapshot, now time.Time) record.ID {
	rows := dashboard(snap, now)
	for _, r := range rows {
		if !r.Status.Done() {
			return r.ID
		}
	}
	return ""
}
