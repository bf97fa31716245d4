package service

import (
	"context"
)

// RunHandle identifies one unit of work on the remote agent runtime.
type RunHandle struct {
	ThreadID string
	RunID    string
}

// RunState is a snapshot of a run's status, in the local taxonomy
// (model.Status* constants).
type RunState struct {
	Status    string
	ErrDetail string
}

// ThreadMessage is one entry of a thread's message log.
type ThreadMessage struct {
	Role string
	Text string
}

// AgentRuntime is the remote agent runtime contract: a managed service that
// executes a thread+message+run unit of work asynchronously. Implementations
// must be safe for concurrent use.
type AgentRuntime interface {
	// Name identifies the backend for health/stats reporting.
	Name() string
	// Model is the model/deployment name the runtime executes with.
	Model() string

	CreateThread(ctx context.Context) (threadID string, err error)
	CreateMessage(ctx context.Context, threadID, role, content string) error
	CreateRun(ctx context.Context, threadID, agentID, instructions string) (runID string, err error)
	GetRun(ctx context.Context, threadID, runID string) (RunState, error)
	// ListMessages returns the thread's message log, most recent first.
	ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error)
	// CancelRun is best-effort; runtimes that do not support cancellation may
	// return an error, which callers treat as advisory.
	CancelRun(ctx context.Context, threadID, runID string) error
}
