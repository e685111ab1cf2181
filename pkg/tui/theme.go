package tui

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/timeutil"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Tabs     TabsTheme
	Overview OverviewTheme
	List     ListTheme
	Month    MonthTheme
	Popup    PopupTheme
	Detail   lipgloss.Style
	Footer   FooterTheme
}

// OverviewTheme styles the Dashboard summary panel.
type OverviewTheme struct {
	Box      lipgloss.Style
	Greeting lipgloss.Style
	Stat     lipgloss.Style
	Alert    lipgloss.Style
}

// MonthTheme styles the calendar month grid.
type MonthTheme struct {
	Box      lipgloss.Style
	Title    lipgloss.Style
	Weekdays lipgloss.Style
	Day      lipgloss.Style
	Busy     lipgloss.Style
}

// TabsTheme styles the tab strip.
type TabsTheme struct {
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Bar      lipgloss.Style
}

// ListTheme styles rows of the active tab.
type ListTheme struct {
	Row      lipgloss.Style
	Selected lipgloss.Style
	Focal    lipgloss.Style
	Dim      lipgloss.Style
	Course   lipgloss.Style
	Empty    lipgloss.Style
	Unread   lipgloss.Style
}

// PopupTheme styles the course filter popup.
type PopupTheme struct {
	Box      lipgloss.Style
	Title    lipgloss.Style
	Option   lipgloss.Style
	Selected lipgloss.Style
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help    lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Spinner lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("212")
	muted := lipgloss.Color("244")
	danger := lipgloss.Color("203")

	return Theme{
		Tabs: TabsTheme{
			Active:   lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true).Padding(0, 1),
			Inactive: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
			Bar:      lipgloss.NewStyle().MarginBottom(1),
		},
		List: ListTheme{
			Row:      lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Reverse(true),
			Focal:    lipgloss.NewStyle().Foreground(accent).Bold(true),
			Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Course:   lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
			Empty:    lipgloss.NewStyle().Foreground(muted).Italic(true),
			Unread:   lipgloss.NewStyle().Foreground(danger).Bold(true),
		},
		Overview: OverviewTheme{
			Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1).MarginBottom(1),
			Greeting: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Stat:     lipgloss.NewStyle().Foreground(muted),
			Alert:    lipgloss.NewStyle().Foreground(danger),
		},
		Month: MonthTheme{
			Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
			Title:    lipgloss.NewStyle().Width(monthGridWidth).Align(lipgloss.Center).Italic(true),
			Weekdays: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Day:      lipgloss.NewStyle().Foreground(muted).Faint(true),
			Busy:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		},
		Popup: PopupTheme{
			Box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2),
			Title:    lipgloss.NewStyle().Bold(true),
			Option:   lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		},
		Detail: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Footer: FooterTheme{
			Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:  lipgloss.NewStyle().Foreground(muted),
			Error:   lipgloss.NewStyle().Foreground(danger),
			Spinner: lipgloss.NewStyle().Foreground(accent),
		},
	}
}

// Status returns the style for a submission status.
func (t Theme) Status(s record.SubmissionStatus) lipgloss.Style {
	switch s {
	case record.StatusMissing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	case record.StatusLate:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case record.StatusSubmitted:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	case record.StatusGraded:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	}
	return t.List.Dim
}

// Urgency returns the style for a countdown, green through red.
func (t Theme) Urgency(u timeutil.Urgency) lipgloss.Style {
	colors := map[timeutil.Urgency]string{
		timeutil.UrgencyNone:     "78",
		timeutil.UrgencyLow:      "185",
		timeutil.UrgencyMedium:   "214",
		timeutil.UrgencyHigh:     "208",
		timeutil.UrgencyCritical: "196",
		timeutil.UrgencyOverdue:  "196",
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[u]))
	if u == timeutil.UrgencyCritical {
		s = s.Bold(true)
	}
	return s
}
