package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/schedule"
)

var (
	// errSnapshotGone means the run's cached snapshot expired before it was persisted.
	errSnapshotGone = errors.New("cached snapshot no longer available")
	// errSuperseded means a newer run replaced the latest snapshot.
	errSuperseded = errors.New("snapshot superseded by a newer run")
)

// SnapshotWriter stores a snapshot as the persisted catalog.
type SnapshotWriter interface {
	Replace(ctx context.Context, runID uuid.UUID, s *schedule.Schedule) error
}

// PersistWorker consumes persist_snapshot_queue and writes cached snapshots
// to PostgreSQL, so a cold start can serve the schedule without the feed.
type PersistWorker struct {
	writer SnapshotWriter
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewPersistWorker creates a new PersistWorker.
func NewPersistWorker(writer SnapshotWriter, rdb *redis.Client, log zerolog.Logger) *PersistWorker {
	return &PersistWorker{
		writer: writer,
		rdb:    rdb,
		log:    log.With().Str("component", "persist_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *PersistWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *PersistWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistSnapshotQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if err := w.handle(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying in 5s")
		w.rdb.RPush(ctx, config.WorkerKey.PersistSnapshotQueue, result[1])
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}
}

// handle persists one queued job. Jobs that can never succeed are logged and
// dropped; only errors worth retrying are returned.
func (w *PersistWorker) handle(ctx context.Context, raw string) error {
	var job model.PersistJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return nil
	}
	log := w.log.With().Str("run_id", job.RunID).Logger()

	vals, err := w.rdb.MGet(ctx,
		config.CacheKey.RunSnapshotKey(job.RunID),
		config.CacheKey.ScheduleSnapshotKey(),
	).Result()
	if err != nil {
		return fmt.Errorf("read cached snapshot: %w", err)
	}

	runID, sched, err := persistable(job, cachedBytes(vals[0]), cachedBytes(vals[1]))
	switch {
	case errors.Is(err, errSuperseded), errors.Is(err, errSnapshotGone):
		log.Warn().Err(err).Msg("Persist job dropped")
		return nil
	case err != nil:
		log.Error().Err(err).Msg("Persist job dropped")
		return nil
	}

	start := time.Now()
	if err := w.writer.Replace(ctx, runID, sched); err != nil {
		return fmt.Errorf("replace snapshot of run %s: %w", job.RunID, err)
	}
	log.Info().
		Int("courses", len(sched.Courses)).
		Int("sections", sched.SectionCount()).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot persisted")
	return nil
}

func cachedBytes(v any) []byte {
	if s, ok := v.(string); ok {
		return []byte(s)
	}
	return nil
}

// persistable decides whether the job's snapshot should be written. run is
// the job's own cached snapshot and latest the one currently served; either
// may be nil if the key has expired.
func persistable(job model.PersistJob, run, latest []byte) (uuid.UUID, *schedule.Schedule, error) {
	runID, err := uuid.Parse(job.RunID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid run id %q: %w", job.RunID, err)
	}

	if latest != nil {
		var head struct {
			RunID string `json:"run_id"`
		}
		if err := json.Unmarshal(latest, &head); err == nil && head.RunID != "" && head.RunID != job.RunID {
			return uuid.Nil, nil, errSuperseded
		}
	}

	if run == nil {
		return uuid.Nil, nil, errSnapshotGone
	}
	var cached model.CachedSnapshot
	if err := json.Unmarshal(run, &cached); err != nil {
		return uuid.Nil, nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	if cached.Schedule == nil {
		return uuid.Nil, nil, errSnapshotGone
	}
	return runID, cached.Schedule, nil
}

// drain processes all remaining jobs in the queue before shutdown.
func (w *PersistWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistSnapshotQueue).Result()
		if err != nil {
			break
		}
		if err := w.handle(ctx, raw); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistSnapshotQueue, raw)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining jobs")
	}
}
