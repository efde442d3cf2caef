package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/feed"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/schedule"
	ws "github.com/stemsi/course-feed/internal/websocket"
)

// Schedule service errors.
var (
	ErrScheduleNotLoaded = errors.New("schedule has not been loaded")
	ErrCourseNotFound    = errors.New("course not found")
	ErrRefreshInProgress = errors.New("a refresh is already running")
)

// DefaultPerPage is the course page size when none is requested.
const DefaultPerPage = 100

// SnapshotLoader reads the last persisted snapshot.
type SnapshotLoader interface {
	Load(ctx context.Context) (*schedule.Schedule, error)
}

// RunRecorder keeps the ingest run history.
type RunRecorder interface {
	Create(ctx context.Context, run *model.IngestRun) error
	Finish(ctx context.Context, run *model.IngestRun) error
	List(ctx context.Context, limit int) ([]model.IngestRun, error)
}

// loaded is an immutable view of one snapshot plus its course index.
type loaded struct {
	sched    *schedule.Schedule
	index    map[string]int
	runID    string
	loadedAt time.Time
}

func newLoaded(s *schedule.Schedule, runID string) *loaded {
	index := make(map[string]int, len(s.Courses))
	for i, c := range s.Courses {
		index[c.Key()] = i
	}
	return &loaded{sched: s, index: index, runID: runID, loadedAt: time.Now()}
}

// ScheduleService owns the in-memory schedule. Refresh builds a new snapshot
// from the feed; readers always see a complete snapshot.
//
// rdb, snapshots and runs are optional. Without them the service keeps the
// schedule in memory only, which is how the ingest CLI runs.
type ScheduleService struct {
	source    feed.Source
	snapshots SnapshotLoader
	runs      RunRecorder
	rdb       *redis.Client
	cfg       *config.Config
	log       zerolog.Logger

	refreshMu sync.Mutex

	mu      sync.RWMutex
	current *loaded
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	source feed.Source,
	snapshots SnapshotLoader,
	runs RunRecorder,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		source:    source,
		snapshots: snapshots,
		runs:      runs,
		rdb:       rdb,
		cfg:       cfg,
		log:       log.With().Str("component", "schedule_service").Logger(),
	}
}

// ─── Refresh ──────────────────────────────────────────────────────────

// Refresh fetches the feed, reduces it into a new snapshot and swaps it in.
// Each call builds its own catalog; concurrent calls run one at a time and a
// refresh held by another instance yields ErrRefreshInProgress.
func (s *ScheduleService) Refresh(ctx context.Context, trigger model.RunTrigger) (*model.IngestRun, *schedule.Result, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	release, err := s.acquireLock(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	run := &model.IngestRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		Source:    s.source.String(),
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	runLog := s.log.With().Str("run_id", run.ID.String()).Str("trigger", string(trigger)).Logger()

	if s.runs != nil {
		if err := s.runs.Create(ctx, run); err != nil {
			runLog.Warn().Err(err).Msg("Failed to record ingest run")
		}
	}
	s.publish(ctx, ws.ProgressEvent{Event: ws.EventStarted, RunID: run.ID.String()})

	doc, err := feed.Load(ctx, s.source)
	if err != nil {
		return run, nil, s.fail(ctx, runLog, run, err)
	}

	ingester := schedule.NewIngester(runLog,
		schedule.WithProgressEvery(s.cfg.ProgressEvery),
		schedule.WithProgress(func(p schedule.Progress) {
			if p.Done {
				return
			}
			s.publish(ctx, ws.ProgressEvent{Event: ws.EventProgress, RunID: run.ID.String(), Progress: &p})
		}),
	)

	result, err := ingester.IngestDocument(doc)
	if err != nil {
		return run, nil, s.fail(ctx, runLog, run, err)
	}

	s.swap(newLoaded(result.Schedule, run.ID.String()))

	run.Rows = result.Stats.Rows
	run.Applied = result.Stats.Applied
	run.Placeholders = result.Stats.Placeholders
	run.Skipped = result.Stats.Skipped
	run.Subjects = len(result.Schedule.Subjects)
	run.Courses = len(result.Schedule.Courses)
	run.Sections = result.Schedule.SectionCount()
	run.Status = model.RunStatusSucceeded
	finished := time.Now().UTC()
	run.FinishedAt = &finished

	if err := s.cacheSnapshot(ctx, run.ID.String(), result.Schedule); err != nil {
		runLog.Warn().Err(err).Msg("Failed to cache snapshot")
	}
	s.finishRun(ctx, runLog, run)

	s.publish(ctx, ws.ProgressEvent{
		Event: ws.EventCompleted,
		RunID: run.ID.String(),
		Progress: &schedule.Progress{
			Row:          result.Stats.Rows,
			Total:        result.Stats.Rows,
			Applied:      result.Stats.Applied,
			Placeholders: result.Stats.Placeholders,
			Skipped:      result.Stats.Skipped,
			Subjects:     run.Subjects,
			Courses:      run.Courses,
			Done:         true,
		},
	})

	runLog.Info().
		Int("subjects", run.Subjects).
		Int("courses", run.Courses).
		Int("sections", run.Sections).
		Int("skipped", run.Skipped).
		Dur("elapsed", finished.Sub(run.StartedAt)).
		Msg("Schedule refreshed")

	return run, result, nil
}

func (s *ScheduleService) fail(ctx context.Context, runLog zerolog.Logger, run *model.IngestRun, cause error) error {
	msg := cause.Error()
	finished := time.Now().UTC()
	run.Status = model.RunStatusFailed
	run.Error = &msg
	run.FinishedAt = &finished

	s.finishRun(ctx, runLog, run)
	s.publish(ctx, ws.ProgressEvent{Event: ws.EventFailed, RunID: run.ID.String(), Error: msg})

	var pe *schedule.PayloadError
	if errors.As(cause, &pe) {
		runLog.Error().Err(cause).Int("status", pe.Status).Int("bytes", len(pe.Body)).Msg("Feed payload rejected")
	} else {
		runLog.Error().Err(cause).Msg("Refresh failed")
	}
	return fmt.Errorf("refresh %s: %w", run.ID, cause)
}

func (s *ScheduleService) finishRun(ctx context.Context, runLog zerolog.Logger, run *model.IngestRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Finish(ctx, run); err != nil {
		runLog.Warn().Err(err).Msg("Failed to update ingest run")
	}
}

// acquireLock takes the cross-instance refresh lock. Without Redis there is
// nothing to coordinate with.
func (s *ScheduleService) acquireLock(ctx context.Context) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}

	key := config.CacheKey.RefreshLockKey()
	token := uuid.NewString()
	ttl := 2*s.cfg.FeedTimeout + time.Minute

	ok, err := s.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire refresh lock: %w", err)
	}
	if !ok {
		return nil, ErrRefreshInProgress
	}

	return func() {
		// Only drop the lock if it is still ours.
		if held, err := s.rdb.Get(context.Background(), key).Result(); err == nil && held == token {
			s.rdb.Del(context.Background(), key)
		}
	}, nil
}

// cacheSnapshot stores the snapshot under the latest and per-run keys and
// queues the run for the persist worker.
func (s *ScheduleService) cacheSnapshot(ctx context.Context, runID string, sched *schedule.Schedule) error {
	if s.rdb == nil {
		return nil
	}

	data, err := json.Marshal(model.CachedSnapshot{RunID: runID, Schedule: sched})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	job, err := json.Marshal(model.PersistJob{RunID: runID})
	if err != nil {
		return fmt.Errorf("encode persist job: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.ScheduleSnapshotKey(), data, s.cfg.SnapshotTTL)
	pipe.Set(ctx, config.CacheKey.RunSnapshotKey(runID), data, s.cfg.SnapshotTTL)
	if s.snapshots != nil {
		pipe.RPush(ctx, config.WorkerKey.PersistSnapshotQueue, job)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *ScheduleService) publish(ctx context.Context, ev ws.ProgressEvent) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.IngestProgressChannel(), data).Err(); err != nil {
		s.log.Debug().Err(err).Msg("Failed to publish progress")
	}
}

// RequestRefresh queues a refresh for the refresh worker.
func (s *ScheduleService) RequestRefresh(ctx context.Context, requestedBy string) error {
	if s.rdb == nil {
		return errors.New("refresh queue unavailable")
	}
	payload, err := json.Marshal(model.RefreshJob{
		Trigger:     model.RunTriggerManual,
		RequestedBy: requestedBy,
	})
	if err != nil {
		return err
	}
	return s.rdb.RPush(ctx, config.WorkerKey.RefreshQueue, payload).Err()
}

// ─── Snapshot access ──────────────────────────────────────────────────

func (s *ScheduleService) swap(l *loaded) {
	s.mu.Lock()
	s.current = l
	s.mu.Unlock()
}

func (s *ScheduleService) snapshot() *loaded {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Warm loads a snapshot from Redis, then PostgreSQL, if none is in memory.
func (s *ScheduleService) Warm(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

func (s *ScheduleService) load(ctx context.Context) (*loaded, error) {
	if l := s.snapshot(); l != nil {
		return l, nil
	}

	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, config.CacheKey.ScheduleSnapshotKey()).Bytes()
		switch {
		case err == nil:
			var cached model.CachedSnapshot
			if err := json.Unmarshal(data, &cached); err == nil && cached.Schedule != nil {
				l := newLoaded(cached.Schedule, cached.RunID)
				s.swap(l)
				s.log.Info().Str("run_id", cached.RunID).Msg("Schedule restored from cache")
				return l, nil
			}
			s.log.Warn().Msg("Cached snapshot is unreadable, ignoring")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Msg("Snapshot cache lookup failed")
		}
	}

	if s.snapshots != nil {
		sched, err := s.snapshots.Load(ctx)
		switch {
		case err == nil:
			l := newLoaded(sched, "")
			s.swap(l)
			s.log.Info().Int("courses", len(sched.Courses)).Msg("Schedule restored from database")
			return l, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
	}

	return nil, ErrScheduleNotLoaded
}

// Current returns the latest snapshot.
func (s *ScheduleService) Current(ctx context.Context) (*schedule.Schedule, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return l.sched, nil
}

// Status describes the snapshot currently being served.
type Status struct {
	Loaded   bool       `json:"loaded"`
	RunID    string     `json:"run_id,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Subjects int        `json:"subjects"`
	Courses  int        `json:"courses"`
	Sections int        `json:"sections"`
}

// Status reports on the in-memory snapshot without loading one.
func (s *ScheduleService) Status() Status {
	l := s.snapshot()
	if l == nil {
		return Status{}
	}
	at := l.loadedAt
	return Status{
		Loaded:   true,
		RunID:    l.runID,
		LoadedAt: &at,
		Subjects: len(l.sched.Subjects),
		Courses:  len(l.sched.Courses),
		Sections: l.sched.SectionCount(),
	}
}

// ─── Queries ──────────────────────────────────────────────────────────

// Subjects returns every subject in feed order.
func (s *ScheduleService) Subjects(ctx context.Context) ([]schedule.Subject, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return l.sched.Subjects, nil
}

// Courses returns the page of course summaries matching f, and the total
// number of matches.
func (s *ScheduleService) Courses(ctx context.Context, f model.CourseFilter) ([]CourseSummary, int, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, 0, err
	}

	term := schedule.TermPeriod(f.Term)
	var matched []schedule.Course
	for _, c := range l.sched.Courses {
		if f.Subject != "" && !strings.EqualFold(c.Subject.Code, f.Subject) {
			continue
		}
		if f.Level != "" && string(c.AcademicLevel) != f.Level {
			continue
		}
		if term != "" && !offeredIn(c, term) {
			continue
		}
		if f.Available != nil && IsAvailable(c, term) != *f.Available {
			continue
		}
		matched = append(matched, c)
	}

	page, perPage := f.Page, f.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]CourseSummary, 0, end-start)
	for _, c := range matched[start:end] {
		out = append(out, NewCourseSummary(c))
	}
	return out, len(matched), nil
}

func offeredIn(c schedule.Course, term schedule.TermPeriod) bool {
	for _, sec := range c.Sections {
		if sec.Term == term {
			return true
		}
	}
	return false
}

// Course returns the detail view of one course.
func (s *ScheduleService) Course(ctx context.Context, subjectCode, code string) (*CourseView, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i, ok := l.index[schedule.CourseKey(strings.ToUpper(subjectCode), code)]
	if !ok {
		return nil, ErrCourseNotFound
	}
	view := NewCourseView(l.sched.Courses[i])
	return &view, nil
}

// Runs returns the most recent ingest runs.
func (s *ScheduleService) Runs(ctx context.Context, limit int) ([]model.IngestRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	if limit < 1 {
		limit = 20
	}
	return s.runs.List(ctx, limit)
}
