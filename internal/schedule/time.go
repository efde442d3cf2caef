package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldTime names time-of-day values in validation errors.
const FieldTime = "time"

// A leading minus is let through so negative hours report as out of range.
var timePattern = regexp.MustCompile(`^(-?\d{1,2}):(\d{2})(?: +(\S+))?$`)

// ParseTime reads "H:MM" or "H:MM AM|PM" into 24-hour form.
//
// Only hours below 12 paired with PM are shifted by 12. Neither "12:MM AM" nor
// "12:MM PM" is adjusted, so both are stored as hour 12. The feed is read with
// that convention and it is kept as is.
func ParseTime(raw string) (CourseTime, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return CourseTime{}, invalid(FieldTime, raw, "expected H:MM or H:MM AM|PM", ErrMalformed)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	marker, hasMarker := m[3], m[3] != ""

	pm := false
	if hasMarker {
		switch strings.ToUpper(marker) {
		case "AM":
		case "PM":
			pm = true
		default:
			return CourseTime{}, invalid(FieldTime, raw, "expected AM or PM after the minutes", ErrMalformed)
		}
	}

	t := CourseTime{Hour: hour, Minute: minute}
	if err := checkRanges(FieldTime, raw, t); err != nil {
		return CourseTime{}, err
	}

	if pm && t.Hour < 12 {
		t.Hour += 12
	}
	return t, nil
}
