package service

import (
	"reflect"
	"testing"

	"github.com/stemsi/course-feed/internal/schedule"
)

func capacity(remaining, maximum int) schedule.Capacity {
	return schedule.Capacity{Remaining: remaining, Maximum: maximum, Disabled: remaining == 0 && maximum == 0}
}

func section(term schedule.TermPeriod, enroll, waitlist schedule.Capacity) schedule.Section {
	return schedule.Section{Term: term, Enrollment: enroll, Waitlist: waitlist}
}

func TestSectionAvailability(t *testing.T) {
	tests := []struct {
		name     string
		enroll   schedule.Capacity
		waitlist schedule.Capacity
		want     TermStatus
	}{
		{"open seats", capacity(7, 25), capacity(0, 0), TermAvailable},
		{"full with waitlist", capacity(0, 25), capacity(3, 5), TermWaitlisted},
		{"full everywhere", capacity(0, 25), capacity(0, 5), TermFull},
		{"no waitlist", capacity(0, 25), capacity(0, 0), TermFull},
		{"over-enrolled", capacity(-2, 25), capacity(0, 0), TermFull},
		{"over-enrolled waitlist", capacity(0, 25), capacity(-1, 5), TermFull},
		{"disabled enrollment", capacity(0, 0), capacity(0, 0), TermFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SectionAvailability(section(schedule.TermPeriod("A"), tt.enroll, tt.waitlist))
			if got != tt.want {
				t.Errorf("SectionAvailability() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCourseAvailabilityLastSectionWins(t *testing.T) {
	c := schedule.Course{Sections: []schedule.Section{
		section("A", capacity(5, 25), capacity(0, 0)),
		section("B", capacity(0, 25), capacity(0, 0)),
		section("A", capacity(0, 25), capacity(2, 5)),
	}}

	got := CourseAvailability(c)
	want := []TermAvailability{
		{Term: "A", Status: TermWaitlisted},
		{Term: "B", Status: TermFull},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CourseAvailability() = %+v, want %+v", got, want)
	}
}

func TestCourseTermsFirstSeenOrder(t *testing.T) {
	c := schedule.Course{Sections: []schedule.Section{
		{Term: "C"}, {Term: "A"}, {Term: "C"}, {Term: "Fall"},
	}}
	got := CourseTerms(c)
	want := []schedule.TermPeriod{"C", "A", "Fall"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CourseTerms() = %v, want %v", got, want)
	}
	if terms := CourseTerms(schedule.Course{}); len(terms) != 0 {
		t.Errorf("CourseTerms(empty) = %v", terms)
	}
}

func TestIsAvailable(t *testing.T) {
	c := schedule.Course{Sections: []schedule.Section{
		section("A", capacity(0, 25), capacity(0, 0)),
		section("B", capacity(3, 25), capacity(0, 0)),
	}}
	if !IsAvailable(c, "") {
		t.Error("course with an open term should be available")
	}
	if IsAvailable(c, "A") {
		t.Error("term A is full")
	}
	if !IsAvailable(c, "B") {
		t.Error("term B has seats")
	}
}

func TestCapacityString(t *testing.T) {
	if got := CapacityString(capacity(-3, 20)); got != "-3/20" {
		t.Errorf("CapacityString() = %q", got)
	}
}
