package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/course-feed/internal/schedule"
)

// RunStatus enumerates the states of an ingest run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusPersisted RunStatus = "PERSISTED"
)

// RunTrigger records what started an ingest run.
type RunTrigger string

const (
	RunTriggerSchedule RunTrigger = "schedule"
	RunTriggerManual   RunTrigger = "manual"
	RunTriggerStartup  RunTrigger = "startup"
	RunTriggerCLI      RunTrigger = "cli"
)

// IngestRun is one attempt to fetch and reduce the course feed.
type IngestRun struct {
	ID           uuid.UUID  `json:"id"`
	Trigger      RunTrigger `json:"trigger"`
	Source       string     `json:"source"`
	Status       RunStatus  `json:"status"`
	Rows         int        `json:"rows"`
	Applied      int        `json:"applied"`
	Placeholders int        `json:"placeholders"`
	Skipped      int        `json:"skipped"`
	Subjects     int        `json:"subjects"`
	Courses      int        `json:"courses"`
	Sections     int        `json:"sections"`
	Error        *string    `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// ListRunsQuery is the query string for the ingest run history.
type ListRunsQuery struct {
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
}

// PersistJob is queued for the persist worker after a successful run.
type PersistJob struct {
	RunID string `json:"run_id"`
}

// RefreshJob is queued when an operator asks for a refresh.
type RefreshJob struct {
	Trigger     RunTrigger `json:"trigger"`
	RequestedBy string     `json:"requested_by,omitempty"`
}

// CachedSnapshot is the Redis representation of a schedule snapshot.
type CachedSnapshot struct {
	RunID    string             `json:"run_id"`
	Schedule *schedule.Schedule `json:"schedule"`
}
