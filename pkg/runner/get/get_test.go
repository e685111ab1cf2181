package get

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/state"
)

func init() {
	color.NoColor = true
}

var now = time.Date(2024, time.April, 20, 12, 0, 0, 0, time.UTC)

func due(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func seeded() *cache.Store {
	c := cache.New(nil, nil)
	c.Merge(record.Batch{
		Category: record.CategoryCourses,
		Courses:  []record.Course{{ID: "1", Name: "Algebra"}, {ID: "2", Name: "Biology"}},
	}, now)
	c.Merge(record.Batch{
		Category: record.CategoryAssignments,
		Assignments: []record.Assignment{
			{ID: "a2", CourseID: "2", Title: "Lab", DueAt: due(48 * time.Hour)},
			{ID: "a1", CourseID: "1", Title: "Quiz", DueAt: due(24 * time.Hour)},
			{ID: "a3", CourseID: "2", Title: "Essay", DueAt: due(-24 * time.Hour)},
		},
	}, now)
	return c
}

type refresher struct {
	calls int
	err   error
}

func (r *refresher) RunOnce(context.Context) error {
	r.calls++
	return r.err
}

func TestGetJSONAppliesSortAndFilter(t *testing.T) {
	var out bytes.Buffer
	g := Get{
		Tab:     state.TabAssignments,
		Sort:    state.SortDueAsc,
		Courses: []record.ID{"2"},
		JSON:    true,
		Cache:   seeded(),
		Out:     &out,
		Now:     now,
	}
	require.NoError(t, g.Do(context.Background()))

	var rows []RowJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, record.ID("a3"), rows[0].ID)
	assert.Equal(t, "late", rows[0].Status)
	assert.Equal(t, record.ID("a2"), rows[1].ID)
	assert.Equal(t, "Biology", rows[1].Course)
}

func TestGetIgnoresFilterOnUnfilteredTabs(t *testing.T) {
	var out bytes.Buffer
	g := Get{Tab: state.TabCourses, Courses: []record.ID{"2"}, JSON: true, Cache: seeded(), Out: &out, Now: now}
	require.NoError(t, g.Do(context.Background()))

	var rows []RowJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Algebra", rows[0].Title)
}

func TestGetPrettyPrintsTable(t *testing.T) {
	var out bytes.Buffer
	g := Get{Tab: state.TabDashboard, Cache: seeded(), Out: &out, Now: now}
	require.NoError(t, g.Do(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Dashboard - 2 items")
	assert.Contains(t, text, "Quiz")
	assert.Contains(t, text, "Lab")
	assert.NotContains(t, text, "Essay")
}

func TestGetCalendarPrintsMonth(t *testing.T) {
	var out bytes.Buffer
	g := Get{Tab: state.TabCalendar, Cache: seeded(), Out: &out, Now: now}
	require.NoError(t, g.Do(context.Background()))
	assert.Contains(t, out.String(), "April 2024")
}

func TestGetRefreshFailureStillPrints(t *testing.T) {
	var out bytes.Buffer
	r := &refresher{err: errors.New("offline")}
	g := Get{Tab: state.TabAssignments, Cache: seeded(), Refresher: r, Out: &out, Now: now}
	require.NoError(t, g.Do(context.Background()))

	assert.Equal(t, 1, r.calls)
	assert.Contains(t, out.String(), "refresh incomplete")
	assert.Contains(t, out.String(), "Quiz")
}

func TestGetReportsFailedCategory(t *testing.T) {
	var out bytes.Buffer
	c := seeded()
	c.RecordError(record.CategoryAnnouncements, errors.New("forbidden"))
	g := Get{Tab: state.TabAnnouncements, Cache: c, Out: &out, Now: now}
	require.NoError(t, g.Do(context.Background()))
	assert.Contains(t, out.String(), "last announcements sync failed: forbidden")
}

func TestGetRequiresCache(t *testing.T) {
	g := Get{}
	assert.Error(t, g.Do(context.Background()))
}
