package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const titleSeparator = " - "

// Plain decimal forms. A leading minus is let through so negative values
// report as out of range instead of malformed.
var (
	creditsPattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	countPattern   = regexp.MustCompile(`^-?\d+$`)
)

// ParseSubject derives the subject from a row: the code is the title up to its
// first space, the name is the last "; "-separated segment of the subject field.
func ParseSubject(e Entry) (Subject, error) {
	code, _, found := strings.Cut(e.CourseTitle, " ")
	if !found || code == "" {
		return Subject{}, invalid(FieldTitle, e.CourseTitle, "no subject code before the first space", ErrMalformed)
	}

	segments := strings.Split(e.Subject, "; ")
	name := strings.TrimSpace(segments[len(segments)-1])

	return Subject{Code: code, Name: name}, nil
}

// ValidateLiteral checks value against vocab and returns the matching literal.
func ValidateLiteral[T ~string](value string, vocab Vocabulary[T]) (T, error) {
	if literal, ok := vocab.Lookup(value); ok {
		return literal, nil
	}
	var zero T
	return zero, invalid(vocab.Field, value, "not an allowed value", ErrNotInVocabulary)
}

// ValidateField looks up the named field on e and checks it against vocab.
// An unknown field name is a caller bug, not a feed problem, and is reported as a plain error.
func ValidateField[T ~string](e Entry, field string, vocab Vocabulary[T]) (T, error) {
	value, ok := e.Field(field)
	if !ok {
		var zero T
		return zero, fmt.Errorf("schedule: unknown feed field %q", field)
	}
	literal, err := ValidateLiteral(value, vocab)
	if err != nil {
		// report under the field that was actually read
		err.(*ValidationError).Field = field
	}
	return literal, err
}

// ParseCredits parses a non-negative decimal credit value.
func ParseCredits(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	if !creditsPattern.MatchString(text) {
		return 0, invalid(FieldCredits, raw, "not a plain decimal", ErrMalformed)
	}
	credits, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, invalid(FieldCredits, raw, "not a number", ErrMalformed)
	}
	if credits < 0 {
		return 0, invalid(FieldCredits, raw, "must not be negative", ErrOutOfRange)
	}
	return credits, nil
}

// ParseCourseCode splits a title such as "CS 2005 - Software Process Management"
// into the course code ("2005") and the course title.
func ParseCourseCode(title, subjectCode string) (code, courseTitle string, err error) {
	prefix, suffix, found := strings.Cut(title, titleSeparator)
	if !found {
		return "", "", invalid(FieldTitle, title, fmt.Sprintf("missing %q separator", titleSeparator), ErrMalformed)
	}
	code = strings.Replace(prefix, subjectCode+" ", "", 1)
	return code, suffix, nil
}

type seatFraction struct {
	Occupied int `json:"occupied" validate:"min=0"`
	Maximum  int `json:"maximum" validate:"min=0"`
}

// ParseCapacity parses an "occupied/maximum" seat fraction read from field.
func ParseCapacity(field, raw string) (Capacity, error) {
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return Capacity{}, invalid(field, raw, fmt.Sprintf("expected occupied/maximum, got %d parts", len(parts)), ErrMalformed)
	}

	occupied, err := parseCount(parts[0])
	if err != nil {
		return Capacity{}, invalid(field, raw, "occupied count is not a number", ErrMalformed)
	}
	maximum, err := parseCount(parts[1])
	if err != nil {
		return Capacity{}, invalid(field, raw, "maximum is not a number", ErrMalformed)
	}

	if err := checkRanges(field, raw, seatFraction{Occupied: occupied, Maximum: maximum}); err != nil {
		return Capacity{}, err
	}

	return Capacity{
		Remaining: maximum - occupied,
		Maximum:   maximum,
		Disabled:  maximum == 0 && occupied == 0,
	}, nil
}

func parseCount(part string) (int, error) {
	part = strings.TrimSpace(part)
	if !countPattern.MatchString(part) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(part)
}

// ParseTags splits "Key :: Value; Key :: Value" into ordered tags.
// A part without the " :: " separator is kept as a key with an empty value,
// and a part with nothing before the separator is kept under the empty key.
func ParseTags(raw string) Tags {
	var tags Tags
	for _, part := range strings.Split(raw, "; ") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, " :: ")
		tags.Set(key, value)
	}
	return tags
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

// ParseDate parses a calendar date. Timestamps are accepted and reduced to their date.
func ParseDate(field, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, invalid(field, raw, "not a calendar date", ErrMalformed)
}

// ParseTerm reads a period type such as "A Term" and validates the bare period.
func ParseTerm(raw string) (TermPeriod, error) {
	return ValidateLiteral(strings.TrimSuffix(raw, " Term"), TermPeriods)
}
