package websocket

import (
	"time"

	"github.com/stemsi/wma-backend/internal/grading"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionRefresh Action = "refresh"
)

// RequestEnvelope is the only message shape clients send.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventSnapshot   Event = "snapshot"
	EventGPAUpdated Event = "gpa_updated"
	EventPong       Event = "pong"
)

// StandingEvent carries a student's aggregate. It is sent as the snapshot
// on connect and on refresh, and published by the recalc worker as
// gpa_updated after every recalculation.
type StandingEvent struct {
	Event        Event                   `json:"event"`
	StudentID    int                     `json:"student_id"`
	Status       grading.OutcomeStatus   `json:"status"`
	Record       grading.AggregateRecord `json:"record"`
	Alerts       []grading.Alert         `json:"alerts,omitempty"`
	CalculatedAt time.Time               `json:"calculated_at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
