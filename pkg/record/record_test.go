package record

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	cases := map[string]ID{
		`12345`:             "12345",
		`"assignment_9"`:    "assignment_9",
		`" 77 "`:            "77",
		`null`:              "",
		`90071992547409931`: "90071992547409931",
	}
	for in, want := range cases {
		var got ID
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if got != want {
			t.Fatalf("unmarshal %s: expected %q, got %q", in, want, got)
		}
	}
}

func TestIDUnmarshalRejectsObjects(t *testing.T) {
	var got ID
	if err := json.Unmarshal([]byte(`{"id":1}`), &got); err == nil {
		t.Fatalf("expected error decoding object as id")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(" " + string(c) + " ")
		if err != nil {
			t.Fatalf("parse %s: %v", c, err)
		}
		if got != c {
			t.Fatalf("expected %s, got %s", c, got)
		}
	}
	if _, err := ParseCategory("grades"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestStatusPriorityOrder(t *testing.T) {
	statuses := Statuses()
	for i := 1; i < len(statuses); i++ {
		if statuses[i-1].Priority() >= statuses[i].Priority() {
			t.Fatalf("expected %s before %s", statuses[i-1], statuses[i])
		}
	}
	if SubmissionStatus("bogus").Priority() != StatusNotSubmitted.Priority() {
		t.Fatalf("unknown status should rank with not submitted")
	}
}

func TestCourseLabel(t *testing.T) {
	courses := map[ID]Course{
		"1": {ID: "1", Name: "Biology"},
		"2": {ID: "2", Code: "CHEM-101"},
	}
	tests := []struct {
		id   ID
		want string
	}{
		{"1", "Biology"},
		{"2", "CHEM-101"},
		{"3", "Unknown course (3)"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CourseLabel(courses, tt.id); got != tt.want {
			t.Fatalf("CourseLabel(%q): expected %q, got %q", tt.id, tt.want, got)
		}
	}
	if got := CourseLabel(nil, "9"); got != "Unknown course (9)" {
		t.Fatalf("nil course map: got %q", got)
	}
}

func TestBatchLen(t *testing.T) {
	b := Batch{Category: CategoryAssignments, Assignments: make([]Assignment, 3), Courses: make([]Course, 9)}
	if b.Len() != 3 {
		t.Fatalf("expected 3, got %d", b.Len())
	}
}

func TestCompareID(t *testing.T) {
	tests := []struct {
		a, b ID
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"007", "7", -1},
		{"42", "assignment_1", -1},
		{"assignment_2", "assignment_10", 1},
		{"x", "x", 0},
	}
	for _, tt := range tests {
		if got := CompareID(tt.a, tt.b); got != tt.want {
			t.Fatalf("CompareID(%q, %q): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		user *User
		want string
	}{
		{nil, ""},
		{&User{Name: "Ada Lovelace"}, "Ada Lovelace"},
		{&User{Name: "Ada Lovelace", ShortName: "Ada"}, "Ada"},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}
