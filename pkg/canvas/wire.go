package canvas

import (
	"strings"
	"time"

	"tableflip.dev/coursework/pkg/record"
)

// Wire shapes of the Canvas REST API. Only the fields the client reads are
// declared; everything else is ignored by the decoder.

type wireCourse struct {
	ID         record.ID `json:"id"`
	Name       string    `json:"name"`
	CourseCode string    `json:"course_code"`
	Term       *struct {
		Name string `json:"name"`
	} `json:"term"`
}

type wireSubmission struct {
	Score         *float64 `json:"score"`
	WorkflowState string   `json:"workflow_state"`
	Late          bool     `json:"late"`
	Missing       bool     `json:"missing"`
}

type wireAssignment struct {
	ID             record.ID       `json:"id"`
	CourseID       record.ID       `json:"course_id"`
	Name           string          `json:"name"`
	DueAt          *time.Time      `json:"due_at"`
	PointsPossible *float64        `json:"points_possible"`
	HTMLURL        string          `json:"html_url"`
	Submission     *wireSubmission `json:"submission"`
}

type wireEvent struct {
	ID           record.ID  `json:"id"`
	Title        string     `json:"title"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	ContextCode  string     `json:"context_code"`
	LocationName string     `json:"location_name"`
	Assignment   *struct {
		ID    record.ID  `json:"id"`
		DueAt *time.Time `json:"due_at"`
	} `json:"assignment"`
}

type wireTopic struct {
	ID          record.ID  `json:"id"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	PostedAt    *time.Time `json:"posted_at"`
	UserName    string     `json:"user_name"`
	ContextCode string     `json:"context_code"`
	ReadState   string     `json:"read_state"`
}

type wireUser struct {
	ID        record.ID `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
}

func (w wireUser) record() record.User {
	return record.User{ID: w.ID, Name: w.Name, ShortName: w.ShortName}
}

func (w wireCourse) record() record.Course {
	c := record.Course{ID: w.ID, Name: w.Name, Code: w.CourseCode}
	if w.Term != nil {
		c.Term = w.Term.Name
	}
	return c
}

func (w wireAssignment) record(courseID record.ID, now time.Time) record.Assignment {
	a := record.Assignment{
		ID:       w.ID,
		CourseID: w.CourseID,
		Title:    w.Name,
		DueAt:    w.DueAt,
		Status:   deriveStatus(w.Submission, w.DueAt, now),
		URL:      w.HTMLURL,
	}
	if a.CourseID == "" {
		a.CourseID = courseID
	}
	if w.PointsPossible != nil {
		a.PointsPossible = *w.PointsPossible
	}
	if w.Submission != nil {
		a.Score = w.Submission.Score
	}
	return a
}

// record converts an event. ok is false for events with no usable start.
func (w wireEvent) record() (record.CalendarEvent, bool) {
	start := w.StartAt
	if start == nil && w.Assignment != nil {
		start = w.Assignment.DueAt
	}
	if start == nil {
		return record.CalendarEvent{}, false
	}
	e := record.CalendarEvent{
		ID:       w.ID,
		Title:    w.Title,
		StartAt:  *start,
		EndAt:    w.EndAt,
		Location: w.LocationName,
	}
	if id, ok := courseFromContext(w.ContextCode); ok {
		e.CourseID = &id
	}
	if w.Assignment != nil && w.Assignment.ID != "" {
		id := w.Assignment.ID
		e.AssignmentID = &id
	}
	return e, true
}

func (w wireTopic) record() record.Announcement {
	n := record.Announcement{
		ID:      w.ID,
		Title:   w.Title,
		Excerpt: Excerpt(w.Message),
		Author:  w.UserName,
		Unread:  w.ReadState == "unread",
	}
	if w.PostedAt != nil {
		n.PostedAt = *w.PostedAt
	}
	if id, ok := courseFromContext(w.ContextCode); ok {
		n.CourseID = id
	}
	return n
}

// deriveStatus maps a submission onto a SubmissionStatus. Past-due work is
// missing when Canvas flags it so, otherwise late.
func deriveStatus(sub *wireSubmission, due *time.Time, now time.Time) record.SubmissionStatus {
	pastDue := due != nil && due.Before(now)
	if sub != nil {
		switch sub.WorkflowState {
		case "graded":
			return record.StatusGraded
		case "submitted", "pending_review":
			return record.StatusSubmitted
		}
		if sub.Missing {
			return record.StatusMissing
		}
		if sub.Late || pastDue {
			return record.StatusLate
		}
		return record.StatusNotSubmitted
	}
	if pastDue {
		return record.StatusLate
	}
	return record.StatusNotSubmitted
}

func courseFromContext(code string) (record.ID, bool) {
	id, ok := strings.CutPrefix(code, "course_")
	if !ok || id == "" {
		return "", false
	}
	return record.ID(id), true
}

func contextCode(id record.ID) string {
	return "course_" + string(id)
}
