package canvas

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/coursework/pkg/record"
)

const (
	// CalendarWindow is how far ahead calendar events are requested.
	CalendarWindow = 30 * 24 * time.Hour

	announcementsPerPage = 25
	courseFanout         = 4
)

// Fetch retrieves every record of one category. It implements
// syncer.Fetcher.
func (c *Client) Fetch(ctx context.Context, category record.Category) (record.Batch, error) {
	b := record.Batch{Category: category}
	var err error
	switch category {
	case record.CategoryCourses:
		b.Courses, err = c.Courses(ctx)
		if err == nil {
			// The profile only feeds the greeting; losing it never fails
			// the category.
			if u, uerr := c.Self(ctx); uerr == nil {
				b.User = &u
			} else if !isCanceled(uerr) {
				c.log.Debug("profile fetch failed", zap.Error(uerr))
			}
		}
	case record.CategoryAssignments:
		b.Assignments, err = c.Assignments(ctx)
	case record.CategoryCalendar:
		b.Events, err = c.CalendarEvents(ctx)
	case record.CategoryAnnouncements:
		b.Announcements, err = c.Announcements(ctx)
	default:
		return b, fmt.Errorf("canvas: unknown category %q", category)
	}
	if err != nil {
		if !isCanceled(err) {
			c.log.Debug("fetch failed", zap.String("category", string(category)), zap.Error(err))
		}
		return record.Batch{Category: category}, err
	}
	return b, nil
}

// Courses lists the user's active enrollments with their terms.
func (c *Client) Courses(ctx context.Context) ([]record.Course, error) {
	v, err, _ := c.group.Do("courses", func() (any, error) {
		q := url.Values{}
		q.Set("enrollment_state", "active")
		q.Add("include[]", "term")
		q.Set("per_page", strconv.Itoa(PerPage))
		wire, err := listAll[wireCourse](ctx, c, "/courses", q)
		if err != nil {
			return nil, err
		}
		out := make([]record.Course, 0, len(wire))
		for _, w := range wire {
			if w.ID == "" {
				continue
			}
			out = append(out, w.record())
		}
		c.mu.Lock()
		c.courses, c.coursesAt = out, c.now()
		c.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]record.Course), nil
}

// Self returns the profile of the token's owner.
func (c *Client) Self(ctx context.Context) (record.User, error) {
	w, err := getOne[wireUser](ctx, c, "/users/self")
	if err != nil {
		return record.User{}, err
	}
	return w.record(), nil
}

// knownCourses returns a recent course list, refetching when it is stale.
// Concurrent callers share a single request.
func (c *Client) knownCourses(ctx context.Context) ([]record.Course, error) {
	c.mu.Lock()
	courses, at := c.courses, c.coursesAt
	c.mu.Unlock()
	if courses != nil && c.now().Sub(at) < courseListMaxAge {
		return courses, nil
	}
	return c.Courses(ctx)
}

// Assignments lists every assignment of every active course, with the
// caller's submission, ordered by due date per course.
func (c *Client) Assignments(ctx context.Context) ([]record.Assignment, error) {
	courses, err := c.knownCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	now := c.now()

	var mu sync.Mutex
	perCourse := make(map[record.ID][]record.Assignment, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(courseFanout)
	for _, course := range courses {
		g.Go(func() error {
			q := url.Values{}
			q.Add("include[]", "submission")
			q.Set("order_by", "due_at")
			q.Set("per_page", strconv.Itoa(PerPage))
			wire, err := listAll[wireAssignment](gctx, c, "/courses/"+url.PathEscape(string(course.ID))+"/assignments", q)
			if err != nil {
				return fmt.Errorf("course %s: %w", course.ID, err)
			}
			out := make([]record.Assignment, 0, len(wire))
			for _, w := range wire {
				if w.ID != "" {
					out = append(out, w.record(course.ID, now))
				}
			}
			mu.Lock()
			perCourse[course.ID] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []record.Assignment
	for _, course := range courses {
		all = append(all, perCourse[course.ID]...)
	}
	return all, nil
}

// CalendarEvents lists calendar events and assignment deadlines from today
// through CalendarWindow for every active course.
func (c *Client) CalendarEvents(ctx context.Context) ([]record.CalendarEvent, error) {
	courses, err := c.knownCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if len(courses) == 0 {
		return nil, nil
	}
	now := c.now()
	start := now.Format(time.DateOnly)
	end := now.Add(CalendarWindow).Format(time.DateOnly)

	types := []string{"event", "assignment"}
	results := make([][]wireEvent, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, typ := range types {
		g.Go(func() error {
			q := url.Values{}
			q.Set("type", typ)
			q.Set("start_date", start)
			q.Set("end_date", end)
			q.Set("per_page", strconv.Itoa(PerPage))
			for _, course := range courses {
				q.Add("context_codes[]", contextCode(course.ID))
			}
			wire, err := listAll[wireEvent](gctx, c, "/calendar_events", q)
			if err != nil {
				return fmt.Errorf("%s events: %w", typ, err)
			}
			results[i] = wire
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []record.CalendarEvent
	for _, wire := range results {
		for _, w := range wire {
			if w.ID == "" {
				continue
			}
			if e, ok := w.record(); ok {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// Announcements lists announcements across every active course.
func (c *Client) Announcements(ctx context.Context) ([]record.Announcement, error) {
	courses, err := c.knownCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if len(courses) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(announcementsPerPage))
	q.Set("latest_only", "false")
	for _, course := range courses {
		q.Add("context_codes[]", contextCode(course.ID))
	}
	wire, err := listAll[wireTopic](ctx, c, "/announcements", q)
	if err != nil {
		return nil, err
	}
	out := make([]record.Announcement, 0, len(wire))
	for _, w := range wire {
		if w.ID != "" {
			out = append(out, w.record())
		}
	}
	return out, nil
}
