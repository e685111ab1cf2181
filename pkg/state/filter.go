package state

import (
	"sort"

	"tableflip.dev/coursework/pkg/record"
)

// Filter is an immutable set of course IDs. The empty filter allows every
// course; there is no separate "all selected" state.
type Filter struct {
	ids map[record.ID]struct{}
}

// NewFilter builds a filter allowing exactly the given courses.
func NewFilter(ids ...record.ID) Filter {
	f := Filter{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if f.ids == nil {
			f.ids = make(map[record.ID]struct{}, len(ids))
		}
		f.ids[id] = struct{}{}
	}
	return f
}

// Empty reports whether the filter is unrestricted.
func (f Filter) Empty() bool { return len(f.ids) == 0 }

// Len is the number of selected courses.
func (f Filter) Len() int { return len(f.ids) }

// Contains reports whether the course was explicitly selected.
func (f Filter) Contains(id record.ID) bool {
	_, ok := f.ids[id]
	return ok
}

// Allows reports whether records of the course pass the filter.
func (f Filter) Allows(id record.ID) bool {
	return f.Empty() || f.Contains(id)
}

// Toggle returns a copy with id added if absent or removed if present.
func (f Filter) Toggle(id record.ID) Filter {
	next := make(map[record.ID]struct{}, len(f.ids)+1)
	for k := range f.ids {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else if id != "" {
		next[id] = struct{}{}
	}
	if len(next) == 0 {
		return Filter{}
	}
	return Filter{ids: next}
}

// IDs lists the selected courses in ID order.
func (f Filter) IDs() []record.ID {
	out := make([]record.ID, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return record.CompareID(out[i], out[j]) < 0 })
	return out
}

// Equal reports whether both filters select the same courses.
func (f Filter) Equal(o Filter) bool {
	if len(f.ids) != len(o.ids) {
		return false
	}
	for id := range f.ids {
		if !o.Contains(id) {
			return false
		}
	}
	return true
}
