package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/schedule"
	"github.com/stemsi/course-feed/internal/service"
)

// Refresher runs one ingest of the feed.
type Refresher interface {
	Refresh(ctx context.Context, trigger model.RunTrigger) (*model.IngestRun, *schedule.Result, error)
}

// RefreshWorker refreshes the schedule on a fixed interval and whenever an
// operator queues a request on refresh_schedule_queue.
type RefreshWorker struct {
	refresher Refresher
	rdb       *redis.Client
	interval  time.Duration
	log       zerolog.Logger
}

// NewRefreshWorker creates a new RefreshWorker. A nil rdb disables the
// request queue; a zero interval disables periodic refreshes.
func NewRefreshWorker(refresher Refresher, rdb *redis.Client, interval time.Duration, log zerolog.Logger) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		rdb:       rdb,
		interval:  interval,
		log:       log.With().Str("component", "refresh_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	if w.interval > 0 {
		go w.tick(ctx)
	}

	if w.rdb == nil {
		<-ctx.Done()
		w.log.Info().Msg("Worker stopped")
		return
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *RefreshWorker) tick(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.run(ctx, model.RefreshJob{Trigger: model.RunTriggerSchedule})
		}
	}
}

func (w *RefreshWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.RefreshQueue).Result()
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

	var job model.RefreshJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}
	if job.Trigger == "" {
		job.Trigger = model.RunTriggerManual
	}
	w.run(ctx, job)
}

func (w *RefreshWorker) run(ctx context.Context, job model.RefreshJob) {
	log := w.log.With().Str("trigger", string(job.Trigger)).Logger()
	if job.RequestedBy != "" {
		log = log.With().Str("requested_by", job.RequestedBy).Logger()
	}

	_, _, err := w.refresher.Refresh(ctx, job.Trigger)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrRefreshInProgress):
		log.Info().Msg("Refresh already running elsewhere, skipped")
	case ctx.Err() != nil:
		log.Info().Msg("Refresh interrupted by shutdown")
	default:
		// ScheduleService has already logged the failure with run details.
		log.Debug().Err(err).Msg("Refresh failed")
	}
}
