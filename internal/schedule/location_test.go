package schedule

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseLocations(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantLocations []string
		wantPatterns  []Pattern
	}{
		{
			name:          "empty field",
			raw:           "",
			wantLocations: []string{NoLocation},
		},
		{
			name:          "single pattern",
			raw:           "Fuller Labs 320 | M-T-R-F | 10:00 AM - 10:50 AM",
			wantLocations: []string{"Fuller Labs 320"},
			wantPatterns: []Pattern{{
				LocationID: "Fuller Labs 320",
				Days:       []DayCode{Monday, Tuesday, Thursday, Friday},
				StartTime:  CourseTime{10, 0},
				EndTime:    CourseTime{10, 50},
			}},
		},
		{
			name:          "two patterns",
			raw:           "Salisbury Labs 104 | M-W | 1:00 PM - 2:50 PM; Kaven Hall 116 | F | 9:00 AM - 9:50 AM",
			wantLocations: []string{"Salisbury Labs 104", "Kaven Hall 116"},
			wantPatterns: []Pattern{
				{LocationID: "Salisbury Labs 104", Days: []DayCode{Monday, Wednesday}, StartTime: CourseTime{13, 0}, EndTime: CourseTime{14, 50}},
				{LocationID: "Kaven Hall 116", Days: []DayCode{Friday}, StartTime: CourseTime{9, 0}, EndTime: CourseTime{9, 50}},
			},
		},
		{
			name:          "sentinel stops parsing",
			raw:           "Off Campus |; Room 1 | M | 1:00 PM - 2:00 PM",
			wantLocations: []string{"Off Campus"},
		},
		{
			name:          "pattern then sentinel",
			raw:           "Room A | T | 1:00 PM - 1:50 PM; Online-synchronous |",
			wantLocations: []string{"Room A", "Online-synchronous"},
			wantPatterns: []Pattern{
				{LocationID: "Room A", Days: []DayCode{Tuesday}, StartTime: CourseTime{13, 0}, EndTime: CourseTime{13, 50}},
			},
		},
		{
			name:          "inactive online",
			raw:           "Online (inactive) |",
			wantLocations: []string{"Online"},
		},
		{
			name:          "asynchronous",
			raw:           "Online-asynchronous |",
			wantLocations: []string{"Online-asynchronous"},
		},
		{
			name:          "other",
			raw:           "Other |",
			wantLocations: []string{"Other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locations, patterns, err := ParseLocations(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(locations, tt.wantLocations) {
				t.Errorf("locations = %v, want %v", locations, tt.wantLocations)
			}
			if !reflect.DeepEqual(patterns, tt.wantPatterns) {
				t.Errorf("patterns = %+v, want %+v", patterns, tt.wantPatterns)
			}
		})
	}
}

func TestParseLocationsRejects(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		cause error
	}{
		{"two parts", "Room 1 | 10:00 AM - 10:50 AM", ErrMalformed},
		{"four parts", "Room 1 | M | 10:00 AM - 10:50 AM | extra", ErrMalformed},
		{"unknown sentinel", "Somewhere |", ErrMalformed},
		{"bad day", "Room 1 | M-X | 10:00 AM - 10:50 AM", ErrNotInVocabulary},
		{"single time", "Room 1 | M | 10:00 AM", ErrMalformed},
		{"hour out of range", "Room 1 | M | 25:00 AM - 10:50 AM", ErrOutOfRange},
		{"bad minute", "Room 1 | M | 10:00 AM - 10:75 AM", ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseLocations(tt.raw)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != FieldSectionDetails {
				t.Errorf("field = %q, want %q", ve.Field, FieldSectionDetails)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("cause = %v, want %v", err, tt.cause)
			}
		})
	}
}
