package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Feed field names, as they appear in each row object.
const (
	FieldTitle               = "Course_Title"
	FieldSubject             = "Subject"
	FieldAcademicLevel       = "Academic_Level"
	FieldCredits             = "Credits"
	FieldTags                = "Course_Tags"
	FieldDeliveryMode        = "Delivery_Mode"
	FieldEnrollment          = "Enrolled_Capacity"
	FieldWaitlist            = "Waitlist_Waitlist_Capacity"
	FieldSectionDetails      = "Section_Details"
	FieldInstructionalFormat = "Instructional_Format"
	FieldStartDate           = "Course_Section_Start_Date"
	FieldEndDate             = "Course_Section_End_Date"
	FieldPeriodType          = "Starting_Academic_Period_Type"
	FieldInstructors         = "Instructors"
	FieldNotes               = "Public_Notes"
	FieldDescription         = "Course_Description"
)

// Entry is one raw feed row. Every value, including dates, numbers and
// packed sub-records, arrives as a string.
type Entry struct {
	CourseTitle                string `json:"Course_Title"`
	Subject                    string `json:"Subject"`
	AcademicLevel              string `json:"Academic_Level"`
	Credits                    string `json:"Credits"`
	CourseTags                 string `json:"Course_Tags"`
	DeliveryMode               string `json:"Delivery_Mode"`
	EnrolledCapacity           string `json:"Enrolled_Capacity"`
	WaitlistCapacity           string `json:"Waitlist_Waitlist_Capacity"`
	SectionDetails             string `json:"Section_Details"`
	InstructionalFormat        string `json:"Instructional_Format"`
	StartDate                  string `json:"Course_Section_Start_Date"`
	EndDate                    string `json:"Course_Section_End_Date"`
	StartingAcademicPeriodType string `json:"Starting_Academic_Period_Type"`
	Instructors                string `json:"Instructors"`
	PublicNotes                string `json:"Public_Notes"`
	CourseDescription          string `json:"Course_Description"`
}

// Field returns the raw value of the named feed field.
func (e Entry) Field(name string) (string, bool) {
	switch name {
	case FieldTitle:
		return e.CourseTitle, true
	case FieldSubject:
		return e.Subject, true
	case FieldAcademicLevel:
		return e.AcademicLevel, true
	case FieldCredits:
		return e.Credits, true
	case FieldTags:
		return e.CourseTags, true
	case FieldDeliveryMode:
		return e.DeliveryMode, true
	case FieldEnrollment:
		return e.EnrolledCapacity, true
	case FieldWaitlist:
		return e.WaitlistCapacity, true
	case FieldSectionDetails:
		return e.SectionDetails, true
	case FieldInstructionalFormat:
		return e.InstructionalFormat, true
	case FieldStartDate:
		return e.StartDate, true
	case FieldEndDate:
		return e.EndDate, true
	case FieldPeriodType:
		return e.StartingAcademicPeriodType, true
	case FieldInstructors:
		return e.Instructors, true
	case FieldNotes:
		return e.PublicNotes, true
	case FieldDescription:
		return e.CourseDescription, true
	}
	return "", false
}

// Document is the top-level feed object.
type Document struct {
	ReportEntry []Entry `json:"Report_Entry"`
}

// Payload is the raw response handed over by a fetcher.
type Payload struct {
	Body   []byte
	Header http.Header
	Status int
}

var errMissingEntries = errors.New("document has no Report_Entry list")

// Decode parses a raw payload into a Document. Any failure is a *PayloadError.
func Decode(p Payload) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(p.Body, &doc); err != nil {
		return nil, p.reject(err)
	}
	if doc.ReportEntry == nil {
		return nil, p.reject(errMissingEntries)
	}
	return &doc, nil
}

func (p Payload) reject(err error) *PayloadError {
	return &PayloadError{Body: p.Body, Header: p.Header, Status: p.Status, Err: err}
}

// Reject wraps err as a *PayloadError carrying this payload.
func (p Payload) Reject(err error) error {
	return p.reject(err)
}
