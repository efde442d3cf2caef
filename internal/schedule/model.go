package schedule

import (
	"fmt"
	"time"
)

// Subject is a department-level grouping of courses, keyed by Code.
type Subject struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Course is a catalog entry together with every section offered for it.
// All fields except Sections are fixed by the row that first introduced the course.
type Course struct {
	Subject       Subject       `json:"subject"`
	Code          string        `json:"code"`
	Title         string        `json:"title"`
	AcademicLevel AcademicLevel `json:"academic_level"`
	Credits       float64       `json:"credits"`
	Notes         string        `json:"notes"`
	Description   string        `json:"description"`
	Sections      []Section     `json:"sections"`
}

// Key returns the course identity key, e.g. "CS 2005".
func (c Course) Key() string {
	return CourseKey(c.Subject.Code, c.Code)
}

// CourseKey builds the identity key shared by every row of one course.
func CourseKey(subjectCode, courseCode string) string {
	return fmt.Sprintf("%s %s", subjectCode, courseCode)
}

// Section is one scheduled offering of a course. Each accepted feed row yields exactly one.
type Section struct {
	Term         TermPeriod    `json:"term"`
	DeliveryMode DeliveryMode  `json:"delivery_mode"`
	Format       SectionFormat `json:"format"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	Enrollment   Capacity      `json:"enrollment"`
	Waitlist     Capacity      `json:"waitlist"`
	Tags         Tags          `json:"tags"`
	Locations    []string      `json:"locations"`
	Patterns     []Pattern     `json:"patterns"`
	Instructors  string        `json:"instructors"`
}

// Capacity is a seat count derived from an "occupied/maximum" fraction.
// Remaining goes negative when a section is over-enrolled.
type Capacity struct {
	Remaining int  `json:"remaining"`
	Maximum   int  `json:"maximum" validate:"min=0"`
	Disabled  bool `json:"disabled"`
}

// Pattern is a weekly meeting: where, on which days, and between which times.
type Pattern struct {
	LocationID string     `json:"location_id"`
	Days       []DayCode  `json:"days"`
	StartTime  CourseTime `json:"start_time"`
	EndTime    CourseTime `json:"end_time"`
}

// CourseTime is a time of day in 24-hour form.
type CourseTime struct {
	Hour   int `json:"hour" validate:"min=0,max=23"`
	Minute int `json:"minute" validate:"min=0,max=59"`
}

func (t CourseTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Schedule is the materialized result of an ingestion: subjects and courses in
// the order they were first seen in the feed.
type Schedule struct {
	Subjects []Subject `json:"subjects"`
	Courses  []Course  `json:"courses"`
}

// SectionCount returns the number of sections across all courses.
func (s *Schedule) SectionCount() int {
	n := 0
	for _, c := range s.Courses {
		n += len(c.Sections)
	}
	return n
}
