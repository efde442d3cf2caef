package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseSubject(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		subject  string
		wantCode string
		wantName string
		wantErr  bool
	}{
		{"last segment wins", "CS 2005 - Software Process Management", "Sci; Computer Science", "CS", "Computer Science", false},
		{"single segment", "MA 1021 - Calculus I", "Mathematical Sciences", "MA", "Mathematical Sciences", false},
		{"no space in title", "CS2005", "Computer Science", "", "", true},
		{"leading space", " CS 2005 - X", "Computer Science", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubject(Entry{CourseTitle: tt.title, Subject: tt.subject})
			if tt.wantErr {
				if !IsRecoverable(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Code != tt.wantCode || got.Name != tt.wantName {
				t.Errorf("got %+v, want {%s %s}", got, tt.wantCode, tt.wantName)
			}
		})
	}
}

func TestValidateLiteral(t *testing.T) {
	mode, err := ValidateLiteral("Hybrid", DeliveryModes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != DeliveryHybrid {
		t.Errorf("got %q, want %q", mode, DeliveryHybrid)
	}

	_, err = ValidateLiteral("hybrid", DeliveryModes)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Field != FieldDeliveryMode || ve.Value != "hybrid" {
		t.Errorf("error should name field and value, got %+v", ve)
	}
	if !errors.Is(err, ErrNotInVocabulary) {
		t.Errorf("expected ErrNotInVocabulary in chain")
	}
}

func TestValidateField(t *testing.T) {
	e := Entry{AcademicLevel: "Graduate", InstructionalFormat: "Recital"}

	level, err := ValidateField(e, FieldAcademicLevel, AcademicLevels)
	if err != nil || level != LevelGraduate {
		t.Fatalf("got %q, %v", level, err)
	}

	_, err = ValidateField(e, FieldInstructionalFormat, SectionFormats)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Field != FieldInstructionalFormat || ve.Value != "Recital" {
		t.Errorf("unexpected error detail: %+v", ve)
	}

	_, err = ValidateField(e, "No_Such_Field", SectionFormats)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if IsRecoverable(err) {
		t.Errorf("unknown field must not be a validation error: %v", err)
	}
}

func TestParseCredits(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"3", 3, false},
		{"0.5", 0.5, false},
		{" 1.5 ", 1.5, false},
		{"0", 0, false},
		{"", 0, true},
		{"three", 0, true},
		{"0x1p-2", 0, true},
		{"1_0", 0, true},
		{"+3", 0, true},
		{".5", 0, true},
		{"1e2", 0, true},
		{"Inf", 0, true},
		{"3 credits", 0, true},
		{"NaN", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCredits(tt.raw)
		if tt.wantErr {
			if !IsRecoverable(err) {
				t.Errorf("ParseCredits(%q): expected validation error, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCredits(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCredits(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseCourseCode(t *testing.T) {
	code, title, err := ParseCourseCode("CS 2005 - Software Process Management", "CS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "2005" || title != "Software Process Management" {
		t.Errorf("got (%q, %q)", code, title)
	}

	// only the first separator splits
	code, title, err = ParseCourseCode("HI 1331 - Europe - 1500 to 1800", "HI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "1331" || title != "Europe - 1500 to 1800" {
		t.Errorf("got (%q, %q)", code, title)
	}

	if _, _, err := ParseCourseCode("CS 2005 Software", "CS"); !IsRecoverable(err) {
		t.Errorf("expected validation error for missing separator, got %v", err)
	}
}

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		raw      string
		occupied int
		want     Capacity
	}{
		{"18/25", 18, Capacity{Remaining: 7, Maximum: 25}},
		{"0/0", 0, Capacity{Remaining: 0, Maximum: 0, Disabled: true}},
		{"30/25", 30, Capacity{Remaining: -5, Maximum: 25}},
		{"0/40", 0, Capacity{Remaining: 40, Maximum: 40}},
		{"5/0", 5, Capacity{Remaining: -5, Maximum: 0}},
	}

	for _, tt := range tests {
		got, err := ParseCapacity(FieldEnrollment, tt.raw)
		if err != nil {
			t.Errorf("ParseCapacity(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCapacity(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
		if got.Remaining+tt.occupied != got.Maximum {
			t.Errorf("ParseCapacity(%q): remaining + occupied != maximum", tt.raw)
		}
	}
}

func TestParseCapacityRejects(t *testing.T) {
	for _, raw := range []string{"", "18", "18/25/30", "a/25", "18/b", "/25", "-1/25", "+18/25", "18/+25", "1_8/25", "0x10/25"} {
		_, err := ParseCapacity(FieldWaitlist, raw)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ParseCapacity(%q): expected *ValidationError, got %v", raw, err)
			continue
		}
		if ve.Field != FieldWaitlist {
			t.Errorf("ParseCapacity(%q): error names field %q", raw, ve.Field)
		}
	}

	_, err := ParseCapacity(FieldEnrollment, "-3/10")
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative occupancy should be out of range, got %v", err)
	}
	if !strings.Contains(err.Error(), "occupied") {
		t.Errorf("message should mention the occupied count: %v", err)
	}
}

func TestParseTags(t *testing.T) {
	tags := ParseTags("Course Type :: Waitlist Section; Writing Intensive :: Yes; Flag")

	wantKeys := []string{"Course Type", "Writing Intensive", "Flag"}
	keys := tags.Keys()
	if len(keys) != len(wantKeys) {
		t.Fatalf("got keys %v, want %v", keys, wantKeys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], wantKeys[i])
		}
	}
	if v, _ := tags.Get("Writing Intensive"); v != "Yes" {
		t.Errorf("Writing Intensive = %q", v)
	}
	if v, ok := tags.Get("Flag"); !ok || v != "" {
		t.Errorf("Flag = %q, %v", v, ok)
	}
	if !tags.IsPlaceholder() {
		t.Error("expected placeholder tags")
	}

	if empty := ParseTags(""); empty.Len() != 0 {
		t.Errorf("empty field: got %d tags", empty.Len())
	}

	orphan := ParseTags(" :: orphan value; Honors :: Yes")
	if orphan.Len() != 2 {
		t.Fatalf("empty key part should be kept, got keys %v", orphan.Keys())
	}
	if v, ok := orphan.Get(""); !ok || v != "orphan value" {
		t.Errorf("empty key = %q, %v", v, ok)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.August, 22, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2024-08-22", "2024-08-22T00:00:00Z", " 2024-08-22 "} {
		got, err := ParseDate(FieldStartDate, raw)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", raw, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", raw, got, want)
		}
	}

	for _, raw := range []string{"", "08/22/2024", "2024-13-01", "tomorrow"} {
		if _, err := ParseDate(FieldEndDate, raw); !IsRecoverable(err) {
			t.Errorf("ParseDate(%q): expected validation error, got %v", raw, err)
		}
	}
}

func TestParseTerm(t *testing.T) {
	tests := []struct {
		raw     string
		want    TermPeriod
		wantErr bool
	}{
		{"A Term", TermA, false},
		{"E1 Term", TermE1, false},
		{"Fall", TermFall, false},
		{"Spring", TermSpring, false},
		{"Z Term", "", true},
		{"Fall Semester", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTerm(tt.raw)
		if tt.wantErr {
			if !IsRecoverable(err) {
				t.Errorf("ParseTerm(%q): expected validation error, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseTerm(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
		}
	}
}
