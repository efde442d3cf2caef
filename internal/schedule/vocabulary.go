package schedule

// AcademicLevel classifies a course as undergraduate or graduate.
type AcademicLevel string

const (
	LevelUndergraduate AcademicLevel = "Undergraduate"
	LevelGraduate      AcademicLevel = "Graduate"
)

// DeliveryMode is how a section is taught.
type DeliveryMode string

const (
	DeliveryInPerson DeliveryMode = "In-Person"
	DeliveryOnline   DeliveryMode = "Online"
	DeliveryHybrid   DeliveryMode = "Hybrid"
)

// SectionFormat is the instructional format of a section.
type SectionFormat string

const (
	FormatLecture          SectionFormat = "Lecture"
	FormatLaboratory       SectionFormat = "Laboratory"
	FormatConference       SectionFormat = "Conference"
	FormatDiscussion       SectionFormat = "Discussion"
	FormatSeminar          SectionFormat = "Seminar"
	FormatStudio           SectionFormat = "Studio"
	FormatIndependentStudy SectionFormat = "Independent Study"
	FormatProject          SectionFormat = "Project"
	FormatWorkshop         SectionFormat = "Workshop"
	FormatExperiential     SectionFormat = "Experiential"
	FormatInternship       SectionFormat = "Internship"
)

// TermPeriod is the academic period a section runs in.
type TermPeriod string

const (
	TermA      TermPeriod = "A"
	TermB      TermPeriod = "B"
	TermC      TermPeriod = "C"
	TermD      TermPeriod = "D"
	TermE1     TermPeriod = "E1"
	TermE2     TermPeriod = "E2"
	TermFall   TermPeriod = "Fall"
	TermSpring TermPeriod = "Spring"
	TermSummer TermPeriod = "Summer"
)

// IsSemester reports whether the period spans a whole semester rather than a seven-week term.
func IsSemester(term TermPeriod) bool {
	switch term {
	case TermFall, TermSpring, TermSummer:
		return true
	}
	return false
}

// DayCode is a single-letter weekday code as used by the feed (R is Thursday, U is Sunday).
type DayCode string

const (
	Monday    DayCode = "M"
	Tuesday   DayCode = "T"
	Wednesday DayCode = "W"
	Thursday  DayCode = "R"
	Friday    DayCode = "F"
	Saturday  DayCode = "S"
	Sunday    DayCode = "U"
)

// Vocabulary is a fixed, ordered list of allowed literals for one feed field.
type Vocabulary[T ~string] struct {
	Field  string
	Values []T
}

// Lookup returns the matching literal, if any.
func (v Vocabulary[T]) Lookup(value string) (T, bool) {
	for _, allowed := range v.Values {
		if string(allowed) == value {
			return allowed, true
		}
	}
	var zero T
	return zero, false
}

var (
	AcademicLevels = Vocabulary[AcademicLevel]{
		Field:  FieldAcademicLevel,
		Values: []AcademicLevel{LevelUndergraduate, LevelGraduate},
	}
	DeliveryModes = Vocabulary[DeliveryMode]{
		Field:  FieldDeliveryMode,
		Values: []DeliveryMode{DeliveryInPerson, DeliveryOnline, DeliveryHybrid},
	}
	SectionFormats = Vocabulary[SectionFormat]{
		Field: FieldInstructionalFormat,
		Values: []SectionFormat{
			FormatLecture, FormatLaboratory, FormatConference, FormatDiscussion,
			FormatSeminar, FormatStudio, FormatIndependentStudy, FormatProject,
			FormatWorkshop, FormatExperiential, FormatInternship,
		},
	}
	TermPeriods = Vocabulary[TermPeriod]{
		Field: FieldPeriodType,
		Values: []TermPeriod{
			TermA, TermB, TermC, TermD, TermE1, TermE2,
			TermFall, TermSpring, TermSummer,
		},
	}
	DayCodes = Vocabulary[DayCode]{
		Field:  FieldSectionDetails,
		Values: []DayCode{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday},
	}
)

// Non-physical modalities. A section-details segment equal to one of these keys
// ends pattern parsing for the row and contributes the mapped pseudo location.
var locationSentinels = map[string]string{
	"Online-asynchronous |": "Online-asynchronous",
	"Online-synchronous |":  "Online-synchronous",
	"Online (inactive) |":   "Online",
	"Other |":               "Other",
	"Off Campus |":          "Off Campus",
}

// NoLocation is recorded when a row lists no locations at all.
const NoLocation = "None"

// Rows tagged with this pair are waitlist/interest placeholders, not real sections.
const (
	PlaceholderTagKey   = "Course Type"
	PlaceholderTagValue = "Waitlist Section"
)
