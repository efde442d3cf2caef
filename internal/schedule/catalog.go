package schedule

// Catalog holds the two lookup tables built during an ingestion: subjects by
// code and courses by identity key, each remembering insertion order.
// A Catalog belongs to a single ingestion and is not safe for concurrent use.
type Catalog struct {
	subjects     map[string]Subject
	subjectOrder []string
	courses      map[string]*Course
	courseOrder  []string
}

func NewCatalog() *Catalog {
	return &Catalog{
		subjects: make(map[string]Subject),
		courses:  make(map[string]*Course),
	}
}

func (c *Catalog) Subject(code string) (Subject, bool) {
	s, ok := c.subjects[code]
	return s, ok
}

// Course returns the course registered under key without its sections.
func (c *Catalog) Course(key string) (Course, bool) {
	course, ok := c.courses[key]
	if !ok {
		return Course{}, false
	}
	out := *course
	out.Sections = nil
	return out, true
}

// addSubject registers s unless its code is already known; the first name wins.
func (c *Catalog) addSubject(s Subject) {
	if _, ok := c.subjects[s.Code]; ok {
		return
	}
	c.subjects[s.Code] = s
	c.subjectOrder = append(c.subjectOrder, s.Code)
}

// attach appends section to the course with course's key, registering the
// course first if it is new. It reports whether the course was created.
func (c *Catalog) attach(course Course, section Section) bool {
	key := course.Key()
	if existing, ok := c.courses[key]; ok {
		existing.Sections = append(existing.Sections, section)
		return false
	}

	course.Sections = []Section{section}
	c.courses[key] = &course
	c.courseOrder = append(c.courseOrder, key)
	return true
}

func (c *Catalog) SubjectCount() int { return len(c.subjectOrder) }

func (c *Catalog) CourseCount() int { return len(c.courseOrder) }

// Snapshot materializes the tables into a Schedule in insertion order.
// The result shares nothing mutable with the catalog.
func (c *Catalog) Snapshot() *Schedule {
	out := &Schedule{
		Subjects: make([]Subject, 0, len(c.subjectOrder)),
		Courses:  make([]Course, 0, len(c.courseOrder)),
	}
	for _, code := range c.subjectOrder {
		out.Subjects = append(out.Subjects, c.subjects[code])
	}
	for _, key := range c.courseOrder {
		course := *c.courses[key]
		course.Sections = append([]Section(nil), course.Sections...)
		out.Courses = append(out.Courses, course)
	}
	return out
}
