package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by a ProposalStore when no artifact exists for the
// requested thread id.
var ErrNotFound = errors.New("proposal not found")

// SubmissionError means the remote runtime rejected job creation. No job
// exists and the caller must not poll.
type SubmissionError struct {
	Phase string // thread, message, run
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed during %s creation: %v", e.Phase, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// TimeoutError means polling exceeded the wall-clock ceiling while the job
// was still non-terminal. The remote run is left running unless
// cancel_on_abandon is set.
type TimeoutError struct {
	MaxWait    time.Duration
	LastStatus string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("processing timeout (%s exceeded), last status %q; remote run left unresolved",
		e.MaxWait, e.LastStatus)
}

// RemoteFailureError means the job reached a terminal failure status on the
// runtime side.
type RemoteFailureError struct {
	Status string
	Detail string
}

func (e *RemoteFailureError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("processing failed with status %q: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("processing failed with status %q", e.Status)
}

// NoResponseError means the run completed but the thread contains no
// assistant-authored message. Preview carries a short digest of the messages
// that were present, for diagnosis.
type NoResponseError struct {
	Preview []string
}

func (e *NoResponseError) Error() string {
	if len(e.Preview) == 0 {
		return "no assistant response found in thread"
	}
	return "no assistant response found in thread; messages: " + strings.Join(e.Preview, " | ")
}
