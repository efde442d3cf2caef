package schedule

import (
	"fmt"
	"strings"
)

// ParseLocations splits the section-details field into locations and meeting patterns.
//
// Segments are separated by "; ". A modality sentinel such as "Off Campus |"
// contributes its pseudo location and ends parsing. Every other non-empty segment
// must read "location | D-D-D | H:MM AM - H:MM PM".
func ParseLocations(raw string) ([]string, []Pattern, error) {
	var locations []string
	var patterns []Pattern

	for _, segment := range strings.Split(raw, "; ") {
		if pseudo, ok := locationSentinels[segment]; ok {
			locations = append(locations, pseudo)
			break
		}
		if segment == "" {
			continue
		}

		pattern, err := parsePattern(segment)
		if err != nil {
			return nil, nil, err
		}
		locations = append(locations, pattern.LocationID)
		patterns = append(patterns, pattern)
	}

	if len(locations) == 0 {
		locations = append(locations, NoLocation)
	}
	return locations, patterns, nil
}

func parsePattern(segment string) (Pattern, error) {
	portions := strings.Split(segment, " | ")
	if len(portions) != 3 {
		return Pattern{}, invalid(FieldSectionDetails, segment,
			fmt.Sprintf("expected 3 parts separated by \" | \", got %d", len(portions)), ErrMalformed)
	}

	var days []DayCode
	for _, code := range strings.Split(portions[1], "-") {
		day, err := ValidateLiteral(code, DayCodes)
		if err != nil {
			return Pattern{}, invalid(FieldSectionDetails, segment, fmt.Sprintf("unknown day code %q", code), ErrNotInVocabulary)
		}
		days = append(days, day)
	}

	times := strings.Split(portions[2], titleSeparator)
	if len(times) != 2 {
		return Pattern{}, invalid(FieldSectionDetails, segment, "expected a start and end time", ErrMalformed)
	}
	start, err := ParseTime(times[0])
	if err != nil {
		return Pattern{}, meetingTimeError(segment, err)
	}
	end, err := ParseTime(times[1])
	if err != nil {
		return Pattern{}, meetingTimeError(segment, err)
	}

	return Pattern{
		LocationID: portions[0],
		Days:       days,
		StartTime:  start,
		EndTime:    end,
	}, nil
}

func meetingTimeError(segment string, err error) error {
	return &ValidationError{
		Field: FieldSectionDetails,
		Value: segment,
		Msg:   fmt.Sprintf("bad meeting time: %v", err),
		Err:   err,
	}
}
