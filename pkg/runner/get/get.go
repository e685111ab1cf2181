package get

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/printers"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/state"
	"tableflip.dev/coursework/pkg/view"
)

// Refresher performs one synchronous sync cycle. *syncer.Coordinator
// satisfies it.
type Refresher interface {
	RunOnce(ctx context.Context) error
}

// Get prints one tab's projection of the cached snapshot.
type Get struct {
	Tab     state.Tab
	Sort    state.SortMode
	Courses []record.ID
	ShowID  bool
	JSON    bool

	Cache *cache.Store
	// Refresher, when set, runs one sync cycle before printing. Failures are
	// reported and the cached data is printed anyway.
	Refresher Refresher
	Logger    *zap.Logger
	Out       io.Writer
	Now       time.Time
}

// RowJSON is the --json shape of a row.
type RowJSON struct {
	Kind     string     `json:"kind"`
	ID       record.ID  `json:"id"`
	Title    string     `json:"title"`
	CourseID record.ID  `json:"course_id,omitempty"`
	Course   string     `json:"course,omitempty"`
	At       *time.Time `json:"at,omitempty"`
	Status   string     `json:"status,omitempty"`
	Detail   string     `json:"detail,omitempty"`
}

func (g *Get) Do(ctx context.Context) error {
	if g.Cache == nil {
		return errors.New("can not get, no cache")
	}
	if g.Now.IsZero() {
		g.Now = time.Now()
	}
	out := g.Out
	if out == nil {
		out = color.Output
	}

	if g.Refresher != nil {
		if err := g.Refresher.RunOnce(ctx); err != nil {
			if g.Logger != nil {
				g.Logger.Warn("refresh incomplete", zap.Error(err))
			}
			if !g.JSON {
				_, _ = fmt.Fprintf(out, "refresh incomplete, showing cached data: %v\n", err)
			}
		}
	}

	st := state.New()
	st.Tab = g.Tab
	st.Sort = g.Sort
	if g.Tab.Filtered() {
		st.Filter = state.NewFilter(g.Courses...)
	}
	snap := g.Cache.Read()
	rows := view.Project(g.Tab, snap, st, g.Now)

	if g.JSON {
		return writeJSON(out, rowsJSON(rows))
	}

	pp := printers.PrettyPrint{ShowID: g.ShowID, Out: out, Now: g.Now}
	pp.NewLine()
	if g.Tab == state.TabCalendar {
		pp.Month(g.Now, rows)
		pp.NewLine()
	}
	pp.TitleWithCount(g.Tab.String(), len(rows))
	pp.Rows(rows)
	if failed := snap.Status(categoryFor(g.Tab)); failed.Failed() {
		_, _ = color.New(color.FgRed).Fprintf(out, "last %s sync failed: %s\n", failed.Category, failed.Err)
	}
	return nil
}

func rowsJSON(rows []view.Row) []RowJSON {
	out := make([]RowJSON, 0, len(rows))
	for _, r := range rows {
		j := RowJSON{
			Kind:     r.Kind.String(),
			ID:       r.ID,
			Title:    r.Title,
			CourseID: r.CourseID,
			Course:   r.CourseLabel,
			At:       r.At,
			Detail:   r.Detail,
		}
		if r.Kind == view.KindAssignment || r.Status != "" {
			j.Status = string(r.Status)
		}
		out = append(out, j)
	}
	return out
}

func categoryFor(t state.Tab) record.Category {
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

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
