package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/course-feed/internal/model"
)

// RunRepository handles ingest run history.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Create inserts a run in RUNNING state.
func (r *RunRepository) Create(ctx context.Context, run *model.IngestRun) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO ingest_runs (id, trigger, source, status, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING started_at`,
		run.ID, run.Trigger, run.Source, run.Status, run.StartedAt,
	).Scan(&run.StartedAt)
}

// Finish records the final status and counts of a run.
func (r *RunRepository) Finish(ctx context.Context, run *model.IngestRun) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE ingest_runs
		 SET status = $2, rows = $3, applied = $4, placeholders = $5, skipped = $6,
		     subjects = $7, courses = $8, sections = $9, error = $10, finished_at = $11
		 WHERE id = $1`,
		run.ID, run.Status, run.Rows, run.Applied, run.Placeholders, run.Skipped,
		run.Subjects, run.Courses, run.Sections, run.Error, run.FinishedAt,
	)
	return err
}

// GetByID retrieves a single run.
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.IngestRun, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, trigger, source, status, rows, applied, placeholders, skipped,
		        subjects, courses, sections, error, started_at, finished_at
		 FROM ingest_runs WHERE id = $1`, id,
	)
	var run model.IngestRun
	if err := scanRun(row, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the most recent runs first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]model.IngestRun, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, trigger, source, status, rows, applied, placeholders, skipped,
		        subjects, courses, sections, error, started_at, finished_at
		 FROM ingest_runs
		 ORDER BY started_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.IngestRun
	for rows.Next() {
		var run model.IngestRun
		if err := scanRun(rows, &run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, run *model.IngestRun) error {
	return row.Scan(
		&run.ID, &run.Trigger, &run.Source, &run.Status,
		&run.Rows, &run.Applied, &run.Placeholders, &run.Skipped,
		&run.Subjects, &run.Courses, &run.Sections,
		&run.Error, &run.StartedAt, &run.FinishedAt,
	)
}
