package schedule

import (
	"errors"
	"testing"
)

func TestResolveNewSubjectAndCourse(t *testing.T) {
	catalog := NewCatalog()

	res, err := Resolve(sampleEntry(), catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NewSubject == nil || res.NewSubject.Code != "CS" {
		t.Errorf("new subject = %+v", res.NewSubject)
	}
	if res.Course.Key() != "CS 2005" || res.Course.Sections != nil {
		t.Errorf("course = %+v", res.Course)
	}
	if catalog.SubjectCount() != 0 || catalog.CourseCount() != 0 {
		t.Error("Resolve must not register anything in the catalog")
	}
}

func TestResolveReusesKnownEntities(t *testing.T) {
	catalog := NewCatalog()
	catalog.addSubject(Subject{Code: "CS", Name: "Computer Science"})
	catalog.attach(Course{
		Subject:       Subject{Code: "CS", Name: "Computer Science"},
		Code:          "2005",
		Title:         "Original Title",
		AcademicLevel: LevelGraduate,
		Credits:       1,
	}, Section{Instructors: "existing"})

	e := sampleEntry()
	e.Subject = "Renamed"
	res, err := Resolve(e, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NewSubject != nil {
		t.Errorf("known subject reported as new: %+v", res.NewSubject)
	}
	if res.Course.Title != "Original Title" || res.Course.Credits != 1 || res.Course.AcademicLevel != LevelGraduate {
		t.Errorf("course fields not reused: %+v", res.Course)
	}
	if res.Course.Sections != nil {
		t.Errorf("resolved course must not carry sections")
	}
	if res.Section.Instructors != "Jane Doe" {
		t.Errorf("section = %+v", res.Section)
	}
}

func TestResolveTagsErrorsWithTitle(t *testing.T) {
	e := sampleEntry()
	e.SectionDetails = "Room 1 | M | 9:00 AM"

	_, err := Resolve(e, NewCatalog())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Title != e.CourseTitle {
		t.Errorf("title = %q, want %q", ve.Title, e.CourseTitle)
	}
}

func TestResolveFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Entry)
		field string
	}{
		{"level", func(e *Entry) { e.AcademicLevel = "Doctoral" }, FieldAcademicLevel},
		{"credits", func(e *Entry) { e.Credits = "x" }, FieldCredits},
		{"delivery", func(e *Entry) { e.DeliveryMode = "Carrier Pigeon" }, FieldDeliveryMode},
		{"format", func(e *Entry) { e.InstructionalFormat = "Recital" }, FieldInstructionalFormat},
		{"waitlist", func(e *Entry) { e.WaitlistCapacity = "1/2/3" }, FieldWaitlist},
		{"start date", func(e *Entry) { e.StartDate = "soon" }, FieldStartDate},
		{"end date", func(e *Entry) { e.EndDate = "" }, FieldEndDate},
		{"term", func(e *Entry) { e.StartingAcademicPeriodType = "Q Term" }, FieldPeriodType},
		{"title", func(e *Entry) { e.CourseTitle = "CS 2005 Software" }, FieldTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := sampleEntry()
			tt.edit(&e)
			_, err := Resolve(e, NewCatalog())
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}
