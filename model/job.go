package model

import (
	"time"
)

// Job represents one submitted SOW analysis request tracked through the
// remote agent runtime's lifecycle.
type Job struct {
	ThreadID    string        `json:"thread_id"`
	RunID       string        `json:"run_id"`
	Filename    string        `json:"filename"`
	Status      string        `json:"status"`
	ErrorMsg    string        `json:"error_msg,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Artifact is the generated proposal produced by a completed job.
type Artifact struct {
	ThreadID   string    `json:"thread_id"`
	Proposal   string    `json:"proposal"`
	Filename   string    `json:"filename"`
	ProducedAt time.Time `json:"produced_at"`
}

// Job status constants. Transitions are forward-only; the last three are
// terminal.
const (
	StatusQueued          = "queued"
	StatusRunning         = "running"
	StatusWaitingOnAction = "waiting_on_action"
	StatusCompleted       = "completed"
	StatusFailed          = "failed"
	StatusTimedOut        = "timed_out"
)

// IsTerminal reports whether no further status transition can occur.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusTimedOut:
		return true
	}
	return false
}
