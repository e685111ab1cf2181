// Package state is the interaction state machine behind the terminal UI. It
// is a pure function of (state, event) and knows nothing about rendering or
// the network; list lengths come from a Projection.
package state

import (
	"tableflip.dev/coursework/pkg/record"
)

// Popup is the course filter popup. The zero value is closed.
type Popup struct {
	Open   bool
	Cursor int
}

// State is the complete interaction state. It is a value: Apply returns a new
// State and never mutates its argument.
type State struct {
	Tab    Tab
	Sort   SortMode
	Filter Filter
	Popup  Popup

	selection [tabCount]int
}

// New returns the startup state: Dashboard, no filter, due date ascending.
func New() State {
	return State{Tab: TabDashboard, Sort: SortDueAsc}
}

// Selected is the selection index for a tab. Callers must check the projected
// list is non-empty before using it.
func (s State) Selected(t Tab) int {
	if !t.Valid() {
		return 0
	}
	return s.selection[t]
}

// Current is the selection index on the active tab.
func (s State) Current() int {
	return s.Selected(s.Tab)
}

// WithSelected returns a copy with the tab's selection set to i. The result is
// not clamped; pass it through Apply or Clamp.
func (s State) WithSelected(t Tab, i int) State {
	if t.Valid() {
		s.selection[t] = i
	}
	return s
}

// Projection reports the shape of the lists a state projects to.
type Projection interface {
	// Len is the number of rows tab shows under s.
	Len(tab Tab, s State) int
	// TodayIndex is the first row dated today or later, or -1 for an empty
	// list. When nothing qualifies the implementation picks a fallback row.
	TodayIndex(tab Tab, s State) int
	// FilterOptions lists the course IDs offered by the filter popup, in
	// display order.
	FilterOptions() []record.ID
}

// Effect asks the caller to do something outside the state machine.
type Effect int

const (
	// EffectNone needs no action.
	EffectNone Effect = iota
	// EffectRefresh asks for a sync cycle.
	EffectRefresh
	// EffectQuit asks the program to exit.
	EffectQuit
)

// Event is an input to Apply.
type Event interface {
	event()
}

type (
	// SwitchTab activates a specific tab.
	SwitchTab struct{ Tab Tab }
	// CycleTab moves to the next (+1) or previous (-1) tab, wrapping.
	CycleTab struct{ Delta int }
	// Move moves the selection, or the popup cursor while the popup is open.
	// It clamps at the ends instead of wrapping.
	Move struct{ Delta int }
	// JumpTop selects the first row.
	JumpTop struct{}
	// JumpBottom selects the last row.
	JumpBottom struct{}
	// JumpToday selects the first row dated today or later. Calendar and
	// Assignments only.
	JumpToday struct{}
	// CycleSort advances the Assignments sort mode and resets its selection.
	CycleSort struct{}
	// OpenFilterPopup opens the course filter on a filtered tab.
	OpenFilterPopup struct{}
	// CloseFilterPopup closes the course filter.
	CloseFilterPopup struct{}
	// ToggleFilterPopup opens or closes the course filter.
	ToggleFilterPopup struct{}
	// ToggleCourseInFilter adds or removes a course while the popup is open.
	ToggleCourseInFilter struct{ CourseID record.ID }
	// ToggleFilterAtCursor toggles the course under the popup cursor.
	ToggleFilterAtCursor struct{}
	// ClearFilter drops every selected course while the popup is open.
	ClearFilter struct{}
	// SyncCompleted reports that a category's data changed.
	SyncCompleted struct{ Category record.Category }
	// RequestRefresh asks for a sync cycle.
	RequestRefresh struct{}
	// Quit asks the program to exit.
	Quit struct{}
)

func (SwitchTab) event()            {}
func (CycleTab) event()             {}
func (Move) event()                 {}
func (JumpTop) event()              {}
func (JumpBottom) event()           {}
func (JumpToday) event()            {}
func (CycleSort) event()            {}
func (OpenFilterPopup) event()      {}
func (CloseFilterPopup) event()     {}
func (ToggleFilterPopup) event()    {}
func (ToggleCourseInFilter) event() {}
func (ToggleFilterAtCursor) event() {}
func (ClearFilter) event()          {}
func (SyncCompleted) event()        {}
func (RequestRefresh) event()       {}
func (Quit) event()                 {}

// Apply advances s by one event. Every tab's selection and the popup cursor
// are clamped to p afterwards, so a shrinking list never leaves a selection
// out of range.
func Apply(s State, ev Event, p Projection) (State, Effect) {
	effect := EffectNone
	switch e := ev.(type) {
	case SwitchTab:
		if e.Tab.Valid() && e.Tab != s.Tab {
			s.Tab = e.Tab
			s.Popup = Popup{}
		}
	case CycleTab:
		switch {
		case e.Delta > 0:
			s.Tab = s.Tab.Next()
			s.Popup = Popup{}
		case e.Delta < 0:
			s.Tab = s.Tab.Prev()
			s.Popup = Popup{}
		}
	case Move:
		if s.Popup.Open {
			s.Popup.Cursor += e.Delta
		} else {
			s.selection[s.Tab] += e.Delta
		}
	case JumpTop:
		if s.Popup.Open {
			s.Popup.Cursor = 0
		} else {
			s.selection[s.Tab] = 0
		}
	case JumpBottom:
		if s.Popup.Open {
			s.Popup.Cursor = len(p.FilterOptions()) - 1
		} else {
			s.selection[s.Tab] = p.Len(s.Tab, s) - 1
		}
	case JumpToday:
		if s.Popup.Open || !s.Tab.Dated() {
			break
		}
		if s.Tab == TabAssignments && s.Sort != SortDueAsc {
			// Only the ascending order has a meaningful "today" boundary.
			s.selection[s.Tab] = 0
			break
		}
		if i := p.TodayIndex(s.Tab, s); i >= 0 {
			s.selection[s.Tab] = i
		}
	case CycleSort:
		if s.Tab == TabAssignments && !s.Popup.Open {
			s.Sort = s.Sort.Next()
			s.selection[TabAssignments] = 0
		}
	case OpenFilterPopup:
		if s.Tab.Filtered() {
			s.Popup = Popup{Open: true}
		}
	case CloseFilterPopup:
		s.Popup = Popup{}
	case ToggleFilterPopup:
		if s.Popup.Open {
			s.Popup = Popup{}
		} else if s.Tab.Filtered() {
			s.Popup = Popup{Open: true}
		}
	case ToggleCourseInFilter:
		if s.Popup.Open && e.CourseID != "" {
			s.Filter = s.Filter.Toggle(e.CourseID)
		}
	case ToggleFilterAtCursor:
		if !s.Popup.Open {
			break
		}
		if opts := p.FilterOptions(); s.Popup.Cursor >= 0 && s.Popup.Cursor < len(opts) {
			s.Filter = s.Filter.Toggle(opts[s.Popup.Cursor])
		}
	case ClearFilter:
		if s.Popup.Open {
			s.Filter = Filter{}
		}
	case SyncCompleted:
		// Data changed underneath us; clamping below is all that is needed.
	case RequestRefresh:
		effect = EffectRefresh
	case Quit:
		effect = EffectQuit
	}
	return Clamp(s, p), effect
}

// Clamp bounds every tab's selection to its projected length and the popup
// cursor to the filter options. An empty list stores 0.
func Clamp(s State, p Projection) State {
	for _, t := range Tabs() {
		s.selection[t] = clamp(s.selection[t], p.Len(t, s))
	}
	if s.Popup.Open {
		s.Popup.Cursor = clamp(s.Popup.Cursor, len(p.FilterOptions()))
	} else {
		s.Popup.Cursor = 0
	}
	return s
}

func clamp(i, n int) int {
	switch {
	case n <= 0 || i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}
