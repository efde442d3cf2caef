package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/schedule"
	"github.com/stemsi/course-feed/internal/service"
)

type fakeRefresher struct {
	calls chan model.RunTrigger
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, trigger model.RunTrigger) (*model.IngestRun, *schedule.Result, error) {
	f.calls <- trigger
	return &model.IngestRun{}, &schedule.Result{}, f.err
}

func TestRefreshWorkerTicks(t *testing.T) {
	ref := &fakeRefresher{calls: make(chan model.RunTrigger, 8)}
	w := NewRefreshWorker(ref, nil, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case trigger := <-ref.calls:
			if trigger != model.RunTriggerSchedule {
				t.Errorf("trigger = %s, want %s", trigger, model.RunTriggerSchedule)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a scheduled refresh")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRefreshWorkerRunToleratesErrors(t *testing.T) {
	for _, err := range []error{nil, service.ErrRefreshInProgress, errors.New("feed down")} {
		ref := &fakeRefresher{calls: make(chan model.RunTrigger, 1), err: err}
		w := NewRefreshWorker(ref, nil, 0, zerolog.Nop())
		w.run(context.Background(), model.RefreshJob{Trigger: model.RunTriggerManual, RequestedBy: "registrar"})
		if got := <-ref.calls; got != model.RunTriggerManual {
			t.Errorf("trigger = %s", got)
		}
	}
}

func cached(t *testing.T, runID string, s *schedule.Schedule) []byte {
	t.Helper()
	data, err := json.Marshal(model.CachedSnapshot{RunID: runID, Schedule: s})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestPersistable(t *testing.T) {
	runID := uuid.New()
	other := uuid.New()
	sched := &schedule.Schedule{
		Subjects: []schedule.Subject{{Code: "CS", Name: "Computer Science"}},
		Courses:  []schedule.Course{{Subject: schedule.Subject{Code: "CS", Name: "Computer Science"}, Code: "1101", Title: "Intro"}},
	}
	job := model.PersistJob{RunID: runID.String()}

	tests := []struct {
		name    string
		job     model.PersistJob
		run     []byte
		latest  []byte
		wantErr error
	}{
		{"latest run", job, cached(t, runID.String(), sched), cached(t, runID.String(), sched), nil},
		{"latest expired", job, cached(t, runID.String(), sched), nil, nil},
		{"superseded", job, cached(t, runID.String(), sched), cached(t, other.String(), sched), errSuperseded},
		{"run snapshot expired", job, nil, nil, errSnapshotGone},
		{"null schedule", job, []byte(`{"run_id": "x", "schedule": null}`), nil, errSnapshotGone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, got, err := persistable(tt.job, tt.run, tt.latest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if id != runID {
				t.Errorf("run id = %s, want %s", id, runID)
			}
			if len(got.Courses) != 1 || got.Courses[0].Key() != "CS 1101" {
				t.Errorf("schedule = %+v", got)
			}
		})
	}

	if _, _, err := persistable(model.PersistJob{RunID: "not-a-uuid"}, nil, nil); err == nil {
		t.Error("invalid run id should fail")
	}
	if _, _, err := persistable(job, []byte("{"), nil); err == nil || errors.Is(err, errSnapshotGone) {
		t.Errorf("corrupt snapshot err = %v", err)
	}
}
