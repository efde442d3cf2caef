package schedule

// Resolution is what one row contributes: a subject seen for the first time
// (nil otherwise), the course the row belongs to, and the row's section.
// Course never carries sections.
type Resolution struct {
	NewSubject *Subject
	Course     Course
	Section    Section
}

// Resolve parses e and matches it against the subjects and courses already in
// catalog. It only reads the catalog; registering the result is up to the caller.
func Resolve(e Entry, catalog *Catalog) (Resolution, error) {
	title := e.CourseTitle

	computed, err := ParseSubject(e)
	if err != nil {
		return Resolution{}, withTitle(err, title)
	}
	subject, known := catalog.Subject(computed.Code)
	if !known {
		subject = computed
	}

	code, courseTitle, err := ParseCourseCode(title, subject.Code)
	if err != nil {
		return Resolution{}, withTitle(err, title)
	}
	course, found := catalog.Course(CourseKey(subject.Code, code))
	if !found {
		course, err = parseCourse(e, subject, code, courseTitle)
		if err != nil {
			return Resolution{}, err
		}
	}

	section, err := parseSection(e)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Course: course, Section: section}
	if !known {
		res.NewSubject = &subject
	}
	return res, nil
}

func parseCourse(e Entry, subject Subject, code, title string) (Course, error) {
	level, err := ValidateField(e, FieldAcademicLevel, AcademicLevels)
	if err != nil {
		return Course{}, err
	}

	credits, err := ParseCredits(e.Credits)
	if err != nil {
		return Course{}, withTitle(err, e.CourseTitle)
	}

	return Course{
		Subject:       subject,
		Code:          code,
		Title:         title,
		AcademicLevel: level,
		Credits:       credits,
		Notes:         e.PublicNotes,
		Description:   e.CourseDescription,
	}, nil
}

func parseSection(e Entry) (Section, error) {
	title := e.CourseTitle

	tags := ParseTags(e.CourseTags)

	mode, err := ValidateField(e, FieldDeliveryMode, DeliveryModes)
	if err != nil {
		return Section{}, err
	}

	enrollment, err := ParseCapacity(FieldEnrollment, e.EnrolledCapacity)
	if err != nil {
		return Section{}, err
	}

	locations, patterns, err := ParseLocations(e.SectionDetails)
	if err != nil {
		return Section{}, withTitle(err, title)
	}

	format, err := ValidateField(e, FieldInstructionalFormat, SectionFormats)
	if err != nil {
		return Section{}, err
	}

	start, err := ParseDate(FieldStartDate, e.StartDate)
	if err != nil {
		return Section{}, withTitle(err, title)
	}
	end, err := ParseDate(FieldEndDate, e.EndDate)
	if err != nil {
		return Section{}, withTitle(err, title)
	}

	term, err := ParseTerm(e.StartingAcademicPeriodType)
	if err != nil {
		return Section{}, err
	}

	waitlist, err := ParseCapacity(FieldWaitlist, e.WaitlistCapacity)
	if err != nil {
		return Section{}, err
	}

	return Section{
		Term:         term,
		DeliveryMode: mode,
		Format:       format,
		StartDate:    start,
		EndDate:      end,
		Enrollment:   enrollment,
		Waitlist:     waitlist,
		Tags:         tags,
		Locations:    locations,
		Patterns:     patterns,
		Instructors:  e.Instructors,
	}, nil
}
