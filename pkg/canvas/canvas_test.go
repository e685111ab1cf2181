package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tableflip.dev/coursework/pkg/record"
)

var fixedNow = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "tok", Options{
		Logger: zaptest.NewLogger(t),
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return c, srv
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("canvas.example.edu", "tok", Options{})
	assert.Error(t, err)
	_, err = New("https://canvas.example.edu", " ", Options{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCoursesFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "active", r.URL.Query().Get("enrollment_state"))
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id": 2, "name": "Algebra", "course_code": "MATH 101"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2&per_page=50&enrollment_state=active>; rel="next", <%s/api/v1/courses?page=1>; rel="first"`, srv.URL, srv.URL))
		fmt.Fprint(w, `[{"id": 1, "name": "Biology", "course_code": "BIO 110", "term": {"name": "Spring 2024"}}]`)
	})
	c, s := newTestClient(t, mux)
	srv = s

	courses, err := c.Courses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []record.Course{
		{ID: "1", Name: "Biology", Code: "BIO 110", Term: "Spring 2024"},
		{ID: "2", Name: "Algebra", Code: "MATH 101"},
	}, courses)
}

func TestPaginationStaysOnHost(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `<https://elsewhere.example.com/api/v1/courses?page=2>; rel="next"`)
		fmt.Fprint(w, `[]`)
	}))
	_, err := c.Courses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaves")
}

func TestErrorTaxonomy(t *testing.T) {
	tests := map[string]struct {
		status int
		header map[string]string
		body   string
		check  func(t *testing.T, err error)
	}{
		"unauthorized": {
			status: http.StatusUnauthorized,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthorized) },
		},
		"forbidden": {
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusForbidden, apiErr.Status)
				assert.Contains(t, apiErr.Message, "insufficient permissions")
			},
		},
		"rate limited": {
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "2.5"},
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 2500*time.Millisecond, rl.RetryAfter)
			},
		},
		"rate limited without header": {
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, time.Second, rl.RetryAfter)
			},
		},
		"server error envelope": {
			status: http.StatusInternalServerError,
			body:   `{"errors":[{"message":"boom"}]}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "boom", apiErr.Message)
				assert.True(t, IsRetryable(err))
			},
		},
		"not found plain": {
			status: http.StatusNotFound,
			body:   "no such thing\n",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "no such thing", apiErr.Message)
				assert.False(t, IsRetryable(err))
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tc.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			_, err := c.Fetch(context.Background(), record.CategoryCourses)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestDecodeErrorIsWrapped(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not": "a list"}`)
	}))
	_, err := c.Courses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /api/v1/courses")
}

func TestFetchAssignments(t *testing.T) {
	var courseCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		courseCalls.Add(1)
		fmt.Fprint(w, `[{"id": 1, "name": "Biology"}, {"id": 2, "name": "Algebra"}]`)
	})
	mux.HandleFunc("/api/v1/courses/1/assignments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "submission", r.URL.Query().Get("include[]"))
		assert.Equal(t, "due_at", r.URL.Query().Get("order_by"))
		fmt.Fprint(w, `[
			{"id": 10, "course_id": 1, "name": "Lab", "due_at": "2024-04-25T23:59:00Z", "points_possible": 10,
			 "submission": {"workflow_state": "graded", "score": 9.5}},
			{"id": 11, "name": "Quiz", "due_at": "2024-04-01T00:00:00Z",
			 "submission": {"workflow_state": "unsubmitted", "missing": true}}
		]`)
	})
	mux.HandleFunc("/api/v1/courses/2/assignments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": "20", "course_id": 2, "name": "Essay", "due_at": null}]`)
	})
	c, _ := newTestClient(t, mux)

	b, err := c.Fetch(context.Background(), record.CategoryAssignments)
	require.NoError(t, err)
	assert.Equal(t, record.CategoryAssignments, b.Category)
	require.Len(t, b.Assignments, 3)

	lab := b.Assignments[0]
	assert.Equal(t, record.ID("10"), lab.ID)
	assert.Equal(t, record.StatusGraded, lab.Status)
	require.NotNil(t, lab.Score)
	assert.Equal(t, 9.5, *lab.Score)
	assert.Equal(t, 10.0, lab.PointsPossible)

	quiz := b.Assignments[1]
	assert.Equal(t, record.ID("1"), quiz.CourseID, "course id falls back to the requesting course")
	assert.Equal(t, record.StatusMissing, quiz.Status)

	essay := b.Assignments[2]
	assert.Nil(t, essay.DueAt)
	assert.Equal(t, record.StatusNotSubmitted, essay.Status)

	// The course list is remembered briefly so dependent categories share it.
	_, err = c.Fetch(context.Background(), record.CategoryAssignments)
	require.NoError(t, err)
	assert.Equal(t, int32(1), courseCalls.Load())
}

func TestFetchAssignmentsFailsWholeCategory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1}, {"id": 2}]`)
	})
	mux.HandleFunc("/api/v1/courses/1/assignments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 10}]`)
	})
	mux.HandleFunc("/api/v1/courses/2/assignments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c, _ := newTestClient(t, mux)

	b, err := c.Fetch(context.Background(), record.CategoryAssignments)
	require.Error(t, err)
	assert.Empty(t, b.Assignments)
	assert.Equal(t, record.CategoryAssignments, b.Category)
}

func TestFetchCalendar(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1}, {"id": 2}]`)
	})
	mux.HandleFunc("/api/v1/calendar_events", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, []string{"course_1", "course_2"}, q["context_codes[]"])
		assert.Equal(t, "2024-04-20", q.Get("start_date"))
		assert.Equal(t, "2024-05-20", q.Get("end_date"))
		switch q.Get("type") {
		case "event":
			fmt.Fprint(w, `[
				{"id": 100, "title": "Lecture", "start_at": "2024-04-22T09:00:00Z", "end_at": "2024-04-22T10:00:00Z",
				 "context_code": "course_1", "location_name": "Hall B"},
				{"id": 101, "title": "No start"}
			]`)
		case "assignment":
			fmt.Fprint(w, `[{"id": "assignment_10", "title": "Lab", "context_code": "course_2",
				"assignment": {"id": 10, "due_at": "2024-04-25T23:59:00Z"}}]`)
		default:
			t.Errorf("unexpected type %q", q.Get("type"))
		}
	})
	c, _ := newTestClient(t, mux)

	b, err := c.Fetch(context.Background(), record.CategoryCalendar)
	require.NoError(t, err)
	require.Len(t, b.Events, 2)

	lecture := b.Events[0]
	assert.Equal(t, "Hall B", lecture.Location)
	require.NotNil(t, lecture.CourseID)
	assert.Equal(t, record.ID("1"), *lecture.CourseID)
	assert.Nil(t, lecture.AssignmentID)

	deadline := b.Events[1]
	assert.Equal(t, record.ID("assignment_10"), deadline.ID)
	require.NotNil(t, deadline.AssignmentID)
	assert.Equal(t, record.ID("10"), *deadline.AssignmentID)
	assert.Equal(t, time.Date(2024, 4, 25, 23, 59, 0, 0, time.UTC), deadline.StartAt)
}

func TestFetchAnnouncements(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1}]`)
	})
	mux.HandleFunc("/api/v1/announcements", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `[{"id": 5, "title": "Welcome", "message": "<p>Hi &amp; welcome</p>", "posted_at": "2024-04-01T08:00:00Z",
			"user_name": "Prof. Oak", "context_code": "course_1", "read_state": "unread"},
			{"id": 6, "title": "Seen", "posted_at": "2024-04-02T08:00:00Z", "context_code": "course_1", "read_state": "read"}]`)
	})
	c, _ := newTestClient(t, mux)

	b, err := c.Fetch(context.Background(), record.CategoryAnnouncements)
	require.NoError(t, err)
	require.Len(t, b.Announcements, 2)
	n := b.Announcements[0]
	assert.Equal(t, "Hi & welcome", n.Excerpt)
	assert.Equal(t, record.ID("1"), n.CourseID)
	assert.Equal(t, "Prof. Oak", n.Author)
	assert.True(t, n.Unread)
	assert.False(t, b.Announcements[1].Unread)
}

func TestFetchCoursesCarriesProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "name": "Algebra"}]`)
	})
	mux.HandleFunc("/api/v1/users/self", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"id": 42, "name": "Ada Lovelace", "short_name": "Ada"}`)
	})
	c, _ := newTestClient(t, mux)

	b, err := c.Fetch(context.Background(), record.CategoryCourses)
	require.NoError(t, err)
	require.NotNil(t, b.User)
	assert.Equal(t, record.ID("42"), b.User.ID)
	assert.Equal(t, "Ada", b.User.DisplayName())
}

func TestFetchCoursesSurvivesProfileFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "name": "Algebra"}]`)
	})
	mux.HandleFunc("/api/v1/users/self", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"nope"}]}`, http.StatusInternalServerError)
	})
	c, _ := newTestClient(t, mux)

	b, err := c.Fetch(context.Background(), record.CategoryCourses)
	require.NoError(t, err)
	assert.Len(t, b.Courses, 1)
	assert.Nil(t, b.User)
}

func TestFetchWithoutCoursesSkipsRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	c, _ := newTestClient(t, mux)
	for _, cat := range []record.Category{record.CategoryCalendar, record.CategoryAnnouncements} {
		b, err := c.Fetch(context.Background(), cat)
		require.NoError(t, err)
		assert.Zero(t, b.Len())
	}
}

func TestFetchUnknownCategory(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	_, err := c.Fetch(context.Background(), record.Category("grades"))
	assert.Error(t, err)
}

func TestFetchHonoursContext(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Fetch(ctx, record.CategoryCourses)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{``, ""},
		{`<https://x/a?page=2>; rel="next"`, "https://x/a?page=2"},
		{`<https://x/a?page=1>; rel="current",<https://x/a?page=2>; rel="next"`, "https://x/a?page=2"},
		{`<https://x/a?page=3>; rel="last"`, ""},
		{`<https://x/a?page=2>; rel=next`, "https://x/a?page=2"},
		{`https://x/a?page=2; rel="next"`, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, nextLink(tc.header), tc.header)
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, " Hi  there  ", StripHTML("<p>Hi <b>there</b></p>"))
	assert.Equal(t, `a & b < c > d "e" 'f' g`, StripHTML("a &amp; b &lt; c &gt; d &quot;e&quot; &#39;f&#39;&nbsp;g"))
	assert.Equal(t, "Hi there", Excerpt("<p>Hi <b>there</b></p>\n\n"))

	long := Excerpt(strings.Repeat("word ", 200))
	assert.True(t, strings.HasSuffix(long, "…"))
	assert.LessOrEqual(t, len([]rune(long)), ExcerptWidth)
}

func TestDeriveStatus(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	tests := map[string]struct {
		sub  *wireSubmission
		due  *time.Time
		want record.SubmissionStatus
	}{
		"no submission future":  {nil, &future, record.StatusNotSubmitted},
		"no submission past":    {nil, &past, record.StatusLate},
		"no submission undated": {nil, nil, record.StatusNotSubmitted},
		"graded":                {&wireSubmission{WorkflowState: "graded"}, &past, record.StatusGraded},
		"submitted":             {&wireSubmission{WorkflowState: "submitted"}, &past, record.StatusSubmitted},
		"missing":               {&wireSubmission{WorkflowState: "unsubmitted", Missing: true}, &past, record.StatusMissing},
		"past due":              {&wireSubmission{WorkflowState: "unsubmitted"}, &past, record.StatusLate},
		"flagged late":          {&wireSubmission{WorkflowState: "unsubmitted", Late: true}, &future, record.StatusLate},
		"open":                  {&wireSubmission{WorkflowState: "unsubmitted"}, &future, record.StatusNotSubmitted},
	}
	for name, tc := range tests {
		assert.Equal(t, tc.want, deriveStatus(tc.sub, tc.due, fixedNow), name)
	}
}
