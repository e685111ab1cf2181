package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/coursework/pkg/printers"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/state"
	"tableflip.dev/coursework/pkg/timeutil"
	"tableflip.dev/coursework/pkg/view"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	detailHeight  = 8
	dateLayout    = "Mon Jan 02 15:04"

	monthGridWidth = len("Su Mo Tu We Th Fr Sa")
)

// View renders the current frame.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	f := m.Frame()

	header := m.renderTabs(f, width)
	if f.Tab == state.TabDashboard && f.Popup == nil && !m.showHelp {
		header = lipgloss.JoinVertical(lipgloss.Left, header, m.renderOverview(f, width))
	}
	footer := m.renderFooter(f, width)
	bodyHeight := height - lipgloss.Height(header) - lipgloss.Height(footer)

	var body string
	switch {
	case f.Popup != nil:
		body = m.renderPopup(f)
	case m.showHelp:
		body = m.help.FullHelpView(m.keys.fullHelp())
	default:
		row, ok := f.SelectedRow()
		if !ok || bodyHeight <= detailHeight+4 {
			body = m.renderRows(f, width, bodyHeight)
			break
		}
		detail := m.renderDetail(row, f, width)
		list := m.renderRows(f, width, bodyHeight-lipgloss.Height(detail))
		body = lipgloss.JoinVertical(lipgloss.Left, list, detail)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderTabs(f view.Frame, width int) string {
	parts := make([]string, 0, len(state.Tabs())+1)
	for i, t := range state.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == f.Tab {
			parts = append(parts, m.theme.Tabs.Active.Render(label))
		} else {
			parts = append(parts, m.theme.Tabs.Inactive.Render(label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	var meta []string
	if f.Tab == state.TabAssignments {
		meta = append(meta, "sort: "+f.Sort.String())
	}
	if f.Tab.Filtered() && len(f.Filter) > 0 {
		meta = append(meta, fmt.Sprintf("filter: %d course%s", len(f.Filter), plural(len(f.Filter))))
	}
	if len(meta) > 0 {
		line += "  " + m.theme.List.Dim.Render(strings.Join(meta, " · "))
	}
	return m.theme.Tabs.Bar.Render(truncate.String(line, uint(width)))
}

func (m *Model) renderOverview(f view.Frame, width int) string {
	o := f.Overview
	name := o.Name
	if name == "" {
		name = "Student"
	}
	st := m.theme.Overview
	unread := fmt.Sprintf("%d unread announcement%s", o.Unread, plural(o.Unread))
	if o.Unread > 0 {
		unread = st.Alert.Render("● " + unread)
	} else {
		unread = st.Stat.Render("○ " + unread)
	}
	stats := strings.Join([]string{
		st.Stat.Render(fmt.Sprintf("● %d course%s enrolled", o.Courses, plural(o.Courses))),
		st.Stat.Render(fmt.Sprintf("○ %d upcoming event%s", o.Upcoming, plural(o.Upcoming))),
		unread,
	}, "   ")
	// Border and padding take four columns.
	inner := uint(max(width-4, 10))
	lines := []string{
		truncate.String(st.Greeting.Render(fmt.Sprintf("Welcome back, %s.", name)), inner),
		truncate.String(stats, inner),
	}
	return st.Box.Render(strings.Join(lines, "\n"))
}

// renderRows draws the list, with the month grid beside it on the Calendar
// tab when toggled on.
func (m *Model) renderRows(f view.Frame, width, height int) string {
	if f.Tab != state.TabCalendar || !m.monthView {
		return m.renderList(f, width, height)
	}
	grid := m.renderMonth(f)
	listWidth := width - lipgloss.Width(grid) - 2
	if listWidth < 20 {
		return grid
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", m.renderList(f, listWidth, height))
}

// renderMonth draws the month holding the selected row, or the current
// month. Days with items are bold, today is underlined and the selected
// row's day is highlighted.
func (m *Model) renderMonth(f view.Frame) string {
	now := f.Now.Local()
	then := now
	selected := -1
	if r, ok := f.SelectedRow(); ok && r.At != nil {
		then = r.At.Local()
		selected = then.Day()
	}
	busy := make(map[int]bool)
	for _, r := range f.Rows {
		if r.At == nil {
			continue
		}
		at := r.At.Local()
		if at.Year() == then.Year() && at.Month() == then.Month() {
			busy[at.Day()] = true
		}
	}

	st := m.theme.Month
	lines := []string{
		st.Title.Render(fmt.Sprintf("%s %d", then.Month(), then.Year())),
		st.Weekdays.Render("Su Mo Tu We Th Fr Sa"),
	}
	wd := printers.StartDay(then)
	week := strings.Repeat("   ", int(wd))
	for day := 1; day <= printers.DaysIn(then); day++ {
		style := st.Day
		if busy[day] {
			style = st.Busy
		}
		if now.Year() == then.Year() && now.Month() == then.Month() && now.Day() == day {
			style = style.Underline(true)
		}
		if day == selected {
			style = m.theme.List.Selected
		}
		week += style.Render(fmt.Sprintf("%2d", day))
		wd++
		if wd > time.Saturday {
			lines = append(lines, week)
			week, wd = "", time.Sunday
		} else {
			week += " "
		}
	}
	if week != "" {
		lines = append(lines, strings.TrimRight(week, " "))
	}
	return st.Box.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderList(f view.Frame, width, height int) string {
	if height < 1 {
		height = 1
	}
	if len(f.Rows) == 0 {
		return m.theme.List.Empty.Render(emptyMessage(f))
	}
	offset := 0
	if f.Selected >= height {
		offset = f.Selected - height + 1
	}
	end := offset + height
	if end > len(f.Rows) {
		end = len(f.Rows)
	}
	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		r := f.Rows[i]
		line := truncate.StringWithTail(m.rowLine(r, f), uint(width), "…")
		switch {
		case i == f.Selected:
			line = m.theme.List.Selected.Render(line)
		case r.ID == f.Focal && r.Kind == view.KindAssignment:
			line = m.theme.List.Focal.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) rowLine(r view.Row, f view.Frame) string {
	dim := m.theme.List.Dim
	course := m.theme.List.Course.Render(r.CourseLabel)
	switch r.Kind {
	case view.KindCourse:
		return fmt.Sprintf("%s  %s", r.Title, dim.Render(r.Detail))
	case view.KindAnnouncement:
		mark, title := "  ", r.Title
		if r.Unread {
			mark = m.theme.List.Unread.Render("● ")
			title = m.theme.List.Unread.Render(title)
		}
		return fmt.Sprintf("%s%-9s  %s  %s", mark, timeutil.Ago(*r.At, f.Now), title, course)
	case view.KindEvent:
		when := r.At.Local().Format(dateLayout)
		return fmt.Sprintf("%s  %s  %s  %s", when, r.Title, course, dim.Render(r.Detail))
	}

	marker := "  "
	if r.ID == f.Focal {
		marker = "▸ "
	}
	when := dim.Render(fmt.Sprintf("%-16s", "no due date"))
	countdown := ""
	if r.At != nil {
		when = r.At.Local().Format(dateLayout)
		if !r.Status.Done() {
			text, urgency := timeutil.Countdown(*r.At, f.Now)
			countdown = m.theme.Urgency(urgency).Render(text)
		}
	}
	status := m.theme.Status(r.Status).Render(fmt.Sprintf("%-13s", r.Status.Label()))
	return fmt.Sprintf("%s%s  %s  %s  %s  %s", marker, when, status, r.Title, course, countdown)
}

func (m *Model) renderDetail(r view.Row, f view.Frame, width int) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, m.theme.List.Dim.Render(label+": ")+value)
		}
	}

	lines = append(lines, m.theme.Popup.Title.Render(r.Title))
	switch rec := r.Record.(type) {
	case record.Assignment:
		add("Course", r.CourseLabel)
		if rec.DueAt != nil {
			due := rec.DueAt.Local().Format(dateLayout)
			if !r.Status.Done() {
				text, _ := timeutil.Countdown(*rec.DueAt, f.Now)
				due += "  (" + text + ")"
			}
			add("Due", due)
		}
		add("Status", r.Status.Label())
		add("Points", r.Detail)
		add("Link", rec.URL)
	case record.CalendarEvent:
		add("Course", r.CourseLabel)
		when := rec.StartAt.Local().Format(dateLayout)
		if rec.EndAt != nil {
			when += " to " + rec.EndAt.Local().Format("15:04")
		}
		add("When", when)
		add("Where", rec.Location)
		if r.Kind == view.KindDeadline {
			add("Status", r.Status.Label())
		}
	case record.Course:
		add("Code", rec.Code)
		add("Term", rec.Term)
	case record.Announcement:
		add("Course", r.CourseLabel)
		add("From", rec.Author)
		if rec.Unread {
			add("State", "unread")
		}
		add("Posted", rec.PostedAt.Local().Format(dateLayout))
		if rec.Excerpt != "" {
			lines = append(lines, "", wordwrap.String(rec.Excerpt, inner))
		}
	default:
		add("Course", r.CourseLabel)
	}
	if r.ID != m.detailFor {
		m.detailFor = r.ID
		m.detail.SetYOffset(0)
	}
	// Two columns of border and two of padding surround the viewport.
	m.detail.SetWidth(inner)
	m.detail.SetHeight(detailHeight - 2)
	m.detail.SetContent(strings.Join(lines, "\n"))
	return m.theme.Detail.Render(m.detail.View())
}

func (m *Model) renderPopup(f view.Frame) string {
	p := f.Popup
	lines := []string{m.theme.Popup.Title.Render("Filter courses"), ""}
	if len(p.Options) == 0 {
		lines = append(lines, m.theme.List.Empty.Render("No courses cached yet"))
	}
	for i, opt := range p.Options {
		box := "[ ]"
		if opt.Checked {
			box = "[x]"
		}
		line := box + " " + opt.Label
		if i == p.Cursor {
			line = m.theme.Popup.Selected.Render("› " + line)
		} else {
			line = m.theme.Popup.Option.Render("  " + line)
		}
		lines = append(lines, line)
	}
	if len(f.Filter) == 0 {
		lines = append(lines, "", m.theme.List.Dim.Render("No selection shows every course"))
	}
	return m.theme.Popup.Box.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter(f view.Frame, width int) string {
	var left string
	if f.Syncing {
		left = m.spinner.View() + " "
	}
	switch {
	case m.status != "" && m.statusErr:
		left += m.theme.Footer.Error.Render(m.status)
	case m.status != "":
		left += m.theme.Footer.Status.Render(m.status)
	default:
		left += m.theme.Footer.Status.Render("synced " + timeutil.Ago(f.LastSynced(), f.Now))
	}
	if failed := f.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, st := range failed {
			names = append(names, st.Category.Title())
		}
		left += "  " + m.theme.Footer.Error.Render("⚠ "+strings.Join(names, ", ")+" failed")
	}
	helpLine := m.theme.Footer.Help.Render(m.help.ShortHelpView(m.keys.shortHelp(m.st)))
	return truncate.String(left, uint(width)) + "\n" + truncate.String(helpLine, uint(width))
}

// emptyMessage explains an empty tab, naming the failure when the backing
// category has no data because its sync failed.
func emptyMessage(f view.Frame) string {
	cat := tabCategory(f.Tab)
	for _, st := range f.Statuses {
		if st.Category != cat {
			continue
		}
		switch {
		case st.Failed():
			return fmt.Sprintf("No %s: last sync failed (%s)", strings.ToLower(cat.Title()), st.Err)
		case !st.Synced():
			return "Nothing cached yet, waiting for the first sync"
		}
	}
	switch f.Tab {
	case state.TabDashboard:
		return "Nothing due in the next 30 days"
	case state.TabAssignments, state.TabCalendar:
		if len(f.Filter) > 0 {
			return "Nothing matches the course filter"
		}
	}
	return "Nothing here"
}

func tabCategory(t state.Tab) record.Category {
	switch t {
	case state.TabCourses:
		return record.CategoryCourses
	case state.TabCalendar:
		return record.CategoryCalendar
	case state.TabAnnouncements:
		return record.CategoryAnnouncements
	}
	return record.CategoryAssignments
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
