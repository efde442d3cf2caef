package service

import (
	"fmt"

	"github.com/stemsi/course-feed/internal/schedule"
)

// TermStatus summarizes whether a course can still be taken in a term.
type TermStatus string

const (
	TermAvailable  TermStatus = "Available"
	TermWaitlisted TermStatus = "Waitlisted"
	TermFull       TermStatus = "Full"
	TermDisabled   TermStatus = "Disabled"
)

// TermAvailability pairs a term with the status of its last listed section.
type TermAvailability struct {
	Term   schedule.TermPeriod `json:"term"`
	Status TermStatus          `json:"status"`
}

// hasSeats needs a positive remaining count. Over-enrolled capacities
// (negative remaining) count as full.
func hasSeats(c schedule.Capacity) bool {
	return !c.Disabled && c.Remaining > 0
}

// SectionAvailability classifies a single section from its seat counts.
// An over-enrolled section reports as full, not available.
func SectionAvailability(sec schedule.Section) TermStatus {
	enroll := hasSeats(sec.Enrollment)
	waitlist := hasSeats(sec.Waitlist)

	switch {
	case enroll:
		return TermAvailable
	case waitlist:
		return TermWaitlisted
	default:
		return TermFull
	}
}

// CourseTerms returns the distinct terms of a course's sections in first-seen order.
func CourseTerms(c schedule.Course) []schedule.TermPeriod {
	seen := make(map[schedule.TermPeriod]bool)
	var terms []schedule.TermPeriod
	for _, sec := range c.Sections {
		if !seen[sec.Term] {
			seen[sec.Term] = true
			terms = append(terms, sec.Term)
		}
	}
	return terms
}

// CourseAvailability reports one status per term. The last section listed
// for a term decides its status.
func CourseAvailability(c schedule.Course) []TermAvailability {
	terms := CourseTerms(c)
	out := make([]TermAvailability, 0, len(terms))
	for _, term := range terms {
		status := TermDisabled
		for _, sec := range c.Sections {
			if sec.Term == term {
				status = SectionAvailability(sec)
			}
		}
		out = append(out, TermAvailability{Term: term, Status: status})
	}
	return out
}

// IsAvailable reports whether any term of c has open or waitlist seats.
// With term set, only that term is considered.
func IsAvailable(c schedule.Course, term schedule.TermPeriod) bool {
	for _, ta := range CourseAvailability(c) {
		if term != "" && ta.Term != term {
			continue
		}
		if ta.Status == TermAvailable || ta.Status == TermWaitlisted {
			return true
		}
	}
	return false
}

// CapacityString renders a capacity as "remaining/maximum".
func CapacityString(c schedule.Capacity) string {
	return fmt.Sprintf("%d/%d", c.Remaining, c.Maximum)
}
