package websocket

import (
	"github.com/stemsi/course-feed/internal/schedule"
)

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStarted   Event = "started"
	EventProgress  Event = "progress"
	EventCompleted Event = "completed"
	EventFailed    Event = "failed"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ProgressEvent is published on the ingest progress channel and relayed
// verbatim to every connected client.
type ProgressEvent struct {
	Event    Event              `json:"event"`
	RunID    string             `json:"run_id"`
	Progress *schedule.Progress `json:"progress,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}
