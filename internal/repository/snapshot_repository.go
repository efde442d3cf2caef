package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/schedule"
)

// SnapshotRepository stores the latest schedule snapshot. Only one snapshot
// is kept; each Replace swaps the whole catalog in a single transaction.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Replace overwrites the stored snapshot with s and marks runID as persisted.
func (r *SnapshotRepository) Replace(ctx context.Context, runID uuid.UUID, s *schedule.Schedule) error {
	secRows, err := sectionRows(s)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE sections, courses, subjects`); err != nil {
		return fmt.Errorf("truncate snapshot: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"subjects"},
		[]string{"code", "name", "position"},
		pgx.CopyFromSlice(len(s.Subjects), func(i int) ([]interface{}, error) {
			subj := s.Subjects[i]
			return []interface{}{subj.Code, subj.Name, i}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy subjects: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"courses"},
		[]string{"course_key", "subject_code", "code", "title", "academic_level", "credits", "notes", "description", "position"},
		pgx.CopyFromSlice(len(s.Courses), func(i int) ([]interface{}, error) {
			c := s.Courses[i]
			return []interface{}{c.Key(), c.Subject.Code, c.Code, c.Title, string(c.AcademicLevel), c.Credits, c.Notes, c.Description, i}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy courses: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"sections"},
		[]string{"course_key", "position", "term", "delivery_mode", "format", "start_date", "end_date",
			"enrollment", "waitlist", "tags", "locations", "patterns", "instructors"},
		pgx.CopyFromRows(secRows),
	); err != nil {
		return fmt.Errorf("copy sections: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE ingest_runs SET status = $1 WHERE id = $2`,
		model.RunStatusPersisted, runID,
	); err != nil {
		return fmt.Errorf("mark run persisted: %w", err)
	}

	return tx.Commit(ctx)
}

func sectionRows(s *schedule.Schedule) ([][]interface{}, error) {
	rows := make([][]interface{}, 0, s.SectionCount())
	for _, c := range s.Courses {
		key := c.Key()
		for i, sec := range c.Sections {
			enrollment, err := json.Marshal(sec.Enrollment)
			if err != nil {
				return nil, err
			}
			waitlist, err := json.Marshal(sec.Waitlist)
			if err != nil {
				return nil, err
			}
			tags, err := json.Marshal(sec.Tags)
			if err != nil {
				return nil, err
			}
			locations, err := json.Marshal(sec.Locations)
			if err != nil {
				return nil, err
			}
			patterns, err := json.Marshal(sec.Patterns)
			if err != nil {
				return nil, err
			}
			rows = append(rows, []interface{}{
				key, i, string(sec.Term), string(sec.DeliveryMode), string(sec.Format),
				sec.StartDate, sec.EndDate,
				enrollment, waitlist, tags, locations, patterns, sec.Instructors,
			})
		}
	}
	return rows, nil
}

// Load reassembles the stored snapshot in feed order.
// Returns pgx.ErrNoRows when nothing has been persisted yet.
func (r *SnapshotRepository) Load(ctx context.Context) (*schedule.Schedule, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	subjects, err := r.loadSubjects(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, pgx.ErrNoRows
	}

	byCode := make(map[string]schedule.Subject, len(subjects))
	for _, subj := range subjects {
		byCode[subj.Code] = subj
	}

	courses, index, err := r.loadCourses(ctx, tx, byCode)
	if err != nil {
		return nil, err
	}

	if err := r.loadSections(ctx, tx, courses, index); err != nil {
		return nil, err
	}

	return &schedule.Schedule{Subjects: subjects, Courses: courses}, nil
}

func (r *SnapshotRepository) loadSubjects(ctx context.Context, tx pgx.Tx) ([]schedule.Subject, error) {
	rows, err := tx.Query(ctx, `SELECT code, name FROM subjects ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []schedule.Subject
	for rows.Next() {
		var s schedule.Subject
		if err := rows.Scan(&s.Code, &s.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SnapshotRepository) loadCourses(ctx context.Context, tx pgx.Tx, subjects map[string]schedule.Subject) ([]schedule.Course, map[string]int, error) {
	rows, err := tx.Query(ctx,
		`SELECT course_key, subject_code, code, title, academic_level, credits, notes, description
		 FROM courses ORDER BY position`,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var courses []schedule.Course
	index := make(map[string]int)
	for rows.Next() {
		var (
			key, subjectCode, level string
			c                       schedule.Course
		)
		if err := rows.Scan(&key, &subjectCode, &c.Code, &c.Title, &level, &c.Credits, &c.Notes, &c.Description); err != nil {
			return nil, nil, err
		}
		c.Subject = subjects[subjectCode]
		c.AcademicLevel = schedule.AcademicLevel(level)
		index[key] = len(courses)
		courses = append(courses, c)
	}
	return courses, index, rows.Err()
}

func (r *SnapshotRepository) loadSections(ctx context.Context, tx pgx.Tx, courses []schedule.Course, index map[string]int) error {
	rows, err := tx.Query(ctx,
		`SELECT course_key, term, delivery_mode, format, start_date, end_date,
		        enrollment, waitlist, tags, locations, patterns, instructors
		 FROM sections ORDER BY course_key, position`,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key, term, mode, format                         string
			enrollment, waitlist, tags, locations, patterns []byte
			sec                                             schedule.Section
		)
		if err := rows.Scan(&key, &term, &mode, &format, &sec.StartDate, &sec.EndDate,
			&enrollment, &waitlist, &tags, &locations, &patterns, &sec.Instructors); err != nil {
			return err
		}
		sec.Term = schedule.TermPeriod(term)
		sec.DeliveryMode = schedule.DeliveryMode(mode)
		sec.Format = schedule.SectionFormat(format)

		for _, col := range []struct {
			raw []byte
			dst interface{}
		}{
			{enrollment, &sec.Enrollment},
			{waitlist, &sec.Waitlist},
			{tags, &sec.Tags},
			{locations, &sec.Locations},
			{patterns, &sec.Patterns},
		} {
			if err := json.Unmarshal(col.raw, col.dst); err != nil {
				return fmt.Errorf("decode section of %s: %w", key, err)
			}
		}

		i, ok := index[key]
		if !ok {
			return fmt.Errorf("section references unknown course %q", key)
		}
		courses[i].Sections = append(courses[i].Sections, sec)
	}
	return rows.Err()
}
