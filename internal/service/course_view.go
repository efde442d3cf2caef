package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/stemsi/course-feed/internal/schedule"
)

// CourseView is a course as served by the API: the stored record plus
// fields derived for display.
type CourseView struct {
	schedule.Course
	Key             string                `json:"key"`
	DescriptionText string                `json:"description_text"`
	Terms           []schedule.TermPeriod `json:"terms"`
	Availability    []TermAvailability    `json:"availability"`
}

// CourseSummary is the list form of a course. Sections are omitted.
type CourseSummary struct {
	Key           string                 `json:"key"`
	Subject       string                 `json:"subject"`
	Code          string                 `json:"code"`
	Title         string                 `json:"title"`
	AcademicLevel schedule.AcademicLevel `json:"academic_level"`
	Credits       float64                `json:"credits"`
	SectionCount  int                    `json:"section_count"`
	Availability  []TermAvailability     `json:"availability"`
}

// NewCourseView builds the detail view of c.
func NewCourseView(c schedule.Course) CourseView {
	return CourseView{
		Course:          c,
		Key:             c.Key(),
		DescriptionText: PlainText(c.Description),
		Terms:           CourseTerms(c),
		Availability:    CourseAvailability(c),
	}
}

// NewCourseSummary builds the list view of c.
func NewCourseSummary(c schedule.Course) CourseSummary {
	return CourseSummary{
		Key:           c.Key(),
		Subject:       c.Subject.Code,
		Code:          c.Code,
		Title:         c.Title,
		AcademicLevel: c.AcademicLevel,
		Credits:       c.Credits,
		SectionCount:  len(c.Sections),
		Availability:  CourseAvailability(c),
	}
}

// PlainText strips the markup the feed embeds in course descriptions.
// Block elements become line breaks; runs of blank space collapse.
func PlainText(html string) string {
	if !strings.Contains(html, "<") {
		return strings.TrimSpace(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
