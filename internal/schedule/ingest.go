package schedule

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

const defaultProgressEvery = 250

// Progress is reported while an ingestion runs.
type Progress struct {
	Row          int  `json:"row"`
	Total        int  `json:"total"`
	Applied      int  `json:"applied"`
	Placeholders int  `json:"placeholders"`
	Skipped      int  `json:"skipped"`
	Subjects     int  `json:"subjects"`
	Courses      int  `json:"courses"`
	Done         bool `json:"done"`
}

// Stats counts what happened to each row of a feed.
type Stats struct {
	Rows         int `json:"rows"`
	Applied      int `json:"applied"`
	Placeholders int `json:"placeholders"`
	Skipped      int `json:"skipped"`
}

// RowError records a row that was dropped because it failed validation.
type RowError struct {
	Row   int    `json:"row"`
	Title string `json:"title"`
	Err   error  `json:"-"`
}

func (r RowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Row   int    `json:"row"`
		Title string `json:"title"`
		Error string `json:"error"`
	}{r.Row, r.Title, r.Err.Error()})
}

// Result is the outcome of a completed ingestion.
type Result struct {
	Schedule *Schedule  `json:"schedule"`
	Stats    Stats      `json:"stats"`
	Skipped  []RowError `json:"skipped"`
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithProgress registers fn to be called as rows are processed.
func WithProgress(fn func(Progress)) Option {
	return func(in *Ingester) { in.progress = fn }
}

// WithProgressEvery sets how many rows pass between progress reports.
func WithProgressEvery(n int) Option {
	return func(in *Ingester) {
		if n > 0 {
			in.progressEvery = n
		}
	}
}

// Ingester folds feed rows into subjects and courses.
// It keeps no state between calls, so one Ingester may serve concurrent ingestions.
type Ingester struct {
	log           zerolog.Logger
	progress      func(Progress)
	progressEvery int
}

func NewIngester(log zerolog.Logger, opts ...Option) *Ingester {
	in := &Ingester{
		log:           log.With().Str("component", "ingester").Logger(),
		progressEvery: defaultProgressEvery,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

type disposition int

const (
	dispositionApply disposition = iota
	dispositionPlaceholder
	dispositionSkip
	dispositionAbort
)

// rowResult is either a resolved row or the error that stopped it.
type rowResult struct {
	resolution Resolution
	err        error
}

func (r rowResult) disposition() disposition {
	switch {
	case r.err == nil && r.resolution.Section.Tags.IsPlaceholder():
		return dispositionPlaceholder
	case r.err == nil:
		return dispositionApply
	case IsRecoverable(r.err):
		return dispositionSkip
	default:
		return dispositionAbort
	}
}

// Ingest processes entries in order. Rows that fail validation are logged and
// dropped; any other error stops the run and no schedule is returned.
func (in *Ingester) Ingest(entries []Entry) (*Result, error) {
	catalog := NewCatalog()
	result := &Result{}
	result.Stats.Rows = len(entries)

	for i, entry := range entries {
		res, err := Resolve(entry, catalog)
		row := rowResult{resolution: res, err: err}

		switch row.disposition() {
		case dispositionPlaceholder:
			result.Stats.Placeholders++
		case dispositionSkip:
			in.log.Warn().
				Err(row.err).
				Int("row", i).
				Str("title", entry.CourseTitle).
				Msg("Skipping feed row")
			result.Stats.Skipped++
			result.Skipped = append(result.Skipped, RowError{Row: i, Title: entry.CourseTitle, Err: row.err})
		case dispositionAbort:
			return nil, fmt.Errorf("ingest row %d (%s): %w", i, entry.CourseTitle, row.err)
		case dispositionApply:
			if res.NewSubject != nil {
				catalog.addSubject(*res.NewSubject)
			}
			catalog.attach(res.Course, res.Section)
			result.Stats.Applied++
		}

		if (i+1)%in.progressEvery == 0 {
			in.report(i+1, result.Stats, catalog, false)
		}
	}

	result.Schedule = catalog.Snapshot()
	in.report(len(entries), result.Stats, catalog, true)

	in.log.Info().
		Int("rows", result.Stats.Rows).
		Int("applied", result.Stats.Applied).
		Int("placeholders", result.Stats.Placeholders).
		Int("skipped", result.Stats.Skipped).
		Int("subjects", len(result.Schedule.Subjects)).
		Int("courses", len(result.Schedule.Courses)).
		Msg("Feed ingested")

	return result, nil
}

// IngestDocument ingests every row of doc.
func (in *Ingester) IngestDocument(doc *Document) (*Result, error) {
	return in.Ingest(doc.ReportEntry)
}

func (in *Ingester) report(row int, stats Stats, catalog *Catalog, done bool) {
	if in.progress == nil {
		return
	}
	in.progress(Progress{
		Row:          row,
		Total:        stats.Rows,
		Applied:      stats.Applied,
		Placeholders: stats.Placeholders,
		Skipped:      stats.Skipped,
		Subjects:     catalog.SubjectCount(),
		Courses:      catalog.CourseCount(),
		Done:         done,
	})
}

// Ingest is a convenience wrapper around NewIngester(log).Ingest(entries).
func Ingest(entries []Entry, log zerolog.Logger) (*Result, error) {
	return NewIngester(log).Ingest(entries)
}
