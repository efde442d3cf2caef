package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stemsi/course-feed/internal/schedule"
)

func TestSectionRows(t *testing.T) {
	var tags schedule.Tags
	tags.Set("Course Type", "Standard")
	tags.Set("Attribute", "Lab")

	start := time.Date(2024, 8, 22, 0, 0, 0, 0, time.UTC)
	cs := schedule.Subject{Code: "CS", Name: "Computer Science"}
	s := &schedule.Schedule{
		Subjects: []schedule.Subject{cs},
		Courses: []schedule.Course{
			{Subject: cs, Code: "1101", Sections: []schedule.Section{
				{Term: "A", StartDate: start, EndDate: start, Tags: tags, Enrollment: schedule.Capacity{Remaining: 3, Maximum: 25}},
				{Term: "B", StartDate: start, EndDate: start},
			}},
			{Subject: cs, Code: "2005", Sections: []schedule.Section{{Term: "C", StartDate: start, EndDate: start}}},
		},
	}

	rows, err := sectionRows(s)
	if err != nil {
		t.Fatalf("sectionRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	want := []struct {
		key      string
		position int
		term     string
	}{
		{"CS 1101", 0, "A"},
		{"CS 1101", 1, "B"},
		{"CS 2005", 0, "C"},
	}
	for i, w := range want {
		if rows[i][0] != w.key || rows[i][1] != w.position || rows[i][2] != w.term {
			t.Errorf("row %d = %v, want key=%s position=%d term=%s", i, rows[i][:3], w.key, w.position, w.term)
		}
	}

	// Tags are stored as a JSON object in insertion order.
	if got := string(rows[0][9].([]byte)); got != `{"Course Type":"Standard","Attribute":"Lab"}` {
		t.Errorf("tags column = %s", got)
	}

	var enrollment schedule.Capacity
	if err := json.Unmarshal(rows[0][7].([]byte), &enrollment); err != nil {
		t.Fatal(err)
	}
	if enrollment.Remaining != 3 || enrollment.Maximum != 25 {
		t.Errorf("enrollment = %+v", enrollment)
	}
}
