// Package printers renders projections and sync status for the non-interactive
// commands.
package printers

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/timeutil"
	"tableflip.dev/coursework/pkg/view"
)

const dateLayout = "Mon Jan 02 15:04"

// PrettyPrint writes coloured tables. The zero value writes to color.Output
// using the wall clock.
type PrettyPrint struct {
	ShowID bool
	Out    io.Writer
	Now    time.Time
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now.IsZero() {
		return time.Now()
	}
	return pp.Now
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)
	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " item")
	default:
		_, _ = c.Fprintln(pp.out(), " items")
	}
}

// Rows prints a projected tab as a table.
func (pp *PrettyPrint) Rows(rows []view.Row) {
	if len(rows) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	now := pp.now()
	faint := color.New(color.Faint)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, r := range rows {
		cells := make([]interface{}, 0, 6)
		if pp.ShowID {
			cells = append(cells, y.Sprint(r.ID))
		}
		when := faint.Sprint("no date")
		if r.At != nil {
			when = r.At.Local().Format(dateLayout)
		}
		cells = append(cells, when, r.Title, faint.Sprint(r.CourseLabel))
		switch r.Kind {
		case view.KindAssignment, view.KindDeadline:
			cells = append(cells, statusColor(r.Status).Sprint(r.Status.Label()), countdown(r, now))
		case view.KindAnnouncement:
			cells = append(cells, faint.Sprint(timeutil.Ago(*r.At, now)), "")
		default:
			cells = append(cells, faint.Sprint(r.Detail), "")
		}
		tbl.AddRow(cells...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Statuses prints per-category record counts and sync state.
func (pp *PrettyPrint) Statuses(statuses []cache.Status) {
	bold := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	faint := color.New(color.Faint)
	now := pp.now()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Category"), bold.Sprint("Records"), bold.Sprint("Synced"), bold.Sprint("Status"))
	for _, st := range statuses {
		state := ok.Sprint("ok")
		switch {
		case st.Failed():
			state = bad.Sprint(st.Err)
		case !st.Synced():
			state = faint.Sprint("never synced")
		}
		tbl.AddRow(st.Category.Title(), st.Count, timeutil.Ago(st.SyncedAt, now), state)
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func countdown(r view.Row, now time.Time) string {
	if r.At == nil || r.Status.Done() {
		return ""
	}
	text, urgency := timeutil.Countdown(*r.At, now)
	return urgencyColor(urgency).Sprint(text)
}

func statusColor(s record.SubmissionStatus) *color.Color {
	switch s {
	case record.StatusMissing:
		return color.New(color.FgRed, color.Bold)
	case record.StatusLate:
		return color.New(color.FgYellow)
	case record.StatusSubmitted:
		return color.New(color.FgCyan)
	case record.StatusGraded:
		return color.New(color.FgGreen)
	}
	return color.New(color.Faint)
}

func urgencyColor(u timeutil.Urgency) *color.Color {
	switch u {
	case timeutil.UrgencyNone:
		return color.New(color.FgGreen)
	case timeutil.UrgencyLow:
		return color.New(color.FgHiGreen)
	case timeutil.UrgencyMedium:
		return color.New(color.FgYellow)
	case timeutil.UrgencyHigh:
		return color.New(color.FgHiRed)
	}
	return color.New(color.FgRed, color.Bold)
}
