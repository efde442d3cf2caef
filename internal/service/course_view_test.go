package service

import (
	"testing"

	"github.com/stemsi/course-feed/internal/schedule"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no markup", "  Process models.  ", "Process models."},
		{"paragraphs", "<p>Process models.</p><p>Recommended background: CS 2102.</p>", "Process models.\nRecommended background: CS 2102."},
		{"line break", "First line<br>Second   line", "First line\nSecond line"},
		{"entities", "<p>Design &amp; analysis</p>", "Design & analysis"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewCourseView(t *testing.T) {
	c := schedule.Course{
		Subject:     schedule.Subject{Code: "CS", Name: "Computer Science"},
		Code:        "2005",
		Description: "<p>Process models.</p>",
		Sections: []schedule.Section{
			section("A", capacity(2, 25), capacity(0, 0)),
		},
	}
	v := NewCourseView(c)
	if v.Key != "CS 2005" {
		t.Errorf("Key = %q", v.Key)
	}
	if v.DescriptionText != "Process models." {
		t.Errorf("DescriptionText = %q", v.DescriptionText)
	}
	if len(v.Terms) != 1 || v.Terms[0] != "A" {
		t.Errorf("Terms = %v", v.Terms)
	}
	if len(v.Availability) != 1 || v.Availability[0].Status != TermAvailable {
		t.Errorf("Availability = %+v", v.Availability)
	}

	s := NewCourseSummary(c)
	if s.SectionCount != 1 || s.Subject != "CS" {
		t.Errorf("summary = %+v", s)
	}
}
