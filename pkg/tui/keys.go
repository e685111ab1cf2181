package tui

import (
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/coursework/pkg/state"
)

type keyMap struct {
	Tabs     [5]key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Today    key.Binding
	Sort     key.Binding
	Filter   key.Binding
	Toggle   key.Binding
	Clear    key.Binding
	Close    key.Binding
	Refresh  key.Binding
	Month    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	k := keyMap{
		NextTab:  key.NewBinding(key.WithKeys("tab", "shift+right"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "shift+left"), key.WithHelp("S-tab", "prev tab")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Toggle:   key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "toggle")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Close:    key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "close")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Month:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "month grid")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll detail up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll detail down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for i, t := range state.Tabs() {
		n := string(rune('1' + i))
		k.Tabs[i] = key.NewBinding(key.WithKeys(n), key.WithHelp(n, t.String()))
	}
	return k
}

// shortHelp lists the bindings relevant to the current state.
func (k keyMap) shortHelp(st state.State) []key.Binding {
	if st.Popup.Open {
		return []key.Binding{k.Up, k.Down, k.Toggle, k.Clear, k.Close}
	}
	out := []key.Binding{k.NextTab, k.Down, k.Up}
	if st.Tab.Dated() {
		out = append(out, k.Today)
	}
	if st.Tab == state.TabAssignments {
		out = append(out, k.Sort)
	}
	if st.Tab.Filtered() {
		out = append(out, k.Filter)
	}
	if st.Tab == state.TabCalendar {
		out = append(out, k.Month)
	}
	return append(out, k.Refresh, k.Help, k.Quit)
}

func (k keyMap) fullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.Tabs[:],
		{k.NextTab, k.PrevTab, k.Up, k.Down, k.Top, k.Bottom},
		{k.Today, k.Sort, k.Filter, k.Month, k.Toggle, k.Clear, k.Close},
		{k.PageUp, k.PageDown, k.Refresh, k.Help, k.Quit},
	}
}

// event maps a key press onto a state machine event. Keys with no meaning in
// the current mode report false.
func (k keyMap) event(msg tea.KeyPressMsg, st state.State) (state.Event, bool) {
	if st.Popup.Open {
		switch {
		case key.Matches(msg, k.Up):
			return state.Move{Delta: -1}, true
		case key.Matches(msg, k.Down):
			return state.Move{Delta: 1}, true
		case key.Matches(msg, k.Top):
			return state.JumpTop{}, true
		case key.Matches(msg, k.Bottom):
			return state.JumpBottom{}, true
		case key.Matches(msg, k.Toggle):
			return state.ToggleFilterAtCursor{}, true
		case key.Matches(msg, k.Clear):
			return state.ClearFilter{}, true
		case key.Matches(msg, k.Filter):
			return state.ToggleFilterPopup{}, true
		case key.Matches(msg, k.Close):
			return state.CloseFilterPopup{}, true
		case key.Matches(msg, k.Quit):
			return state.Quit{}, true
		}
		return nil, false
	}

	for i, b := range k.Tabs {
		if key.Matches(msg, b) {
			return state.SwitchTab{Tab: state.Tabs()[i]}, true
		}
	}
	switch {
	case key.Matches(msg, k.NextTab):
		return state.CycleTab{Delta: 1}, true
	case key.Matches(msg, k.PrevTab):
		return state.CycleTab{Delta: -1}, true
	case key.Matches(msg, k.Up):
		return state.Move{Delta: -1}, true
	case key.Matches(msg, k.Down):
		return state.Move{Delta: 1}, true
	case key.Matches(msg, k.Top):
		return state.JumpTop{}, true
	case key.Matches(msg, k.Bottom):
		return state.JumpBottom{}, true
	case key.Matches(msg, k.Today):
		return state.JumpToday{}, true
	case key.Matches(msg, k.Sort):
		return state.CycleSort{}, true
	case key.Matches(msg, k.Filter):
		return state.ToggleFilterPopup{}, true
	case key.Matches(msg, k.Refresh):
		return state.RequestRefresh{}, true
	case key.Matches(msg, k.Quit):
		return state.Quit{}, true
	}
	return nil, false
}
