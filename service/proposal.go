package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mattalagalams/nsp-agent/config"
	"github.com/mattalagalams/nsp-agent/model"
	"github.com/mattalagalams/nsp-agent/pkg/logger"
)

// ProposalService drives one SOW analysis through the remote agent runtime:
// submit, poll to a terminal state, extract the proposal text.
type ProposalService struct {
	runtime AgentRuntime
	agentID string

	pollInterval    time.Duration
	maxWait         time.Duration
	maxChars        int
	cancelOnAbandon bool

	mu     sync.Mutex
	active map[string]*model.Job // thread id -> in-flight job
}

// Result is the outcome of a successful analysis.
type Result struct {
	Proposal       string
	ThreadID       string
	ProcessingTime time.Duration
	AgentUsed      string
	ModelUsed      string
	DocumentLength int
}

func NewProposalService(runtime AgentRuntime, cfg *config.Config) *ProposalService {
	s := &ProposalService{
		runtime:         runtime,
		agentID:         cfg.Agent.AgentID,
		pollInterval:    time.Duration(cfg.Agent.PollIntervalSeconds) * time.Second,
		maxWait:         time.Duration(cfg.Agent.MaxWaitSeconds) * time.Second,
		maxChars:        cfg.Upload.MaxChars,
		cancelOnAbandon: cfg.Agent.CancelOnAbandon,
		active:          make(map[string]*model.Job),
	}
	return s
}

// SetPollTiming overrides the poll interval and wall-clock ceiling with
// sub-second precision, beyond what the config's whole-second fields allow.
func (s *ProposalService) SetPollTiming(interval, maxWait time.Duration) {
	s.pollInterval = interval
	s.maxWait = maxWait
}

// Runtime exposes the backing runtime for health/stats reporting.
func (s *ProposalService) Runtime() AgentRuntime { return s.runtime }

// ActiveJobs returns a snapshot of the jobs currently being processed.
func (s *ProposalService) ActiveJobs() []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]model.Job, 0, len(s.active))
	for _, job := range s.active {
		j := *job
		j.Elapsed = time.Since(j.SubmittedAt)
		jobs = append(jobs, j)
	}
	return jobs
}

func (s *ProposalService) trackJob(handle RunHandle, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[handle.ThreadID] = &model.Job{
		ThreadID:    handle.ThreadID,
		RunID:       handle.RunID,
		Filename:    filename,
		Status:      model.StatusQueued,
		SubmittedAt: time.Now(),
	}
}

func (s *ProposalService) updateJob(threadID, status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.active[threadID]; ok {
		job.Status = status
		job.ErrorMsg = errMsg
	}
}

func (s *ProposalService) releaseJob(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, threadID)
}

// ProcessDocument runs the full pipeline for one uploaded document. The
// returned error is one of the service error types (SubmissionError,
// TimeoutError, RemoteFailureError, NoResponseError) or a context error when
// the caller abandoned the request.
func (s *ProposalService) ProcessDocument(ctx context.Context, content []byte, filename string) (*Result, error) {
	documentText, truncated := ExtractText(content, filename, s.maxChars)

	handle, err := s.submit(ctx, documentText, filename, truncated)
	if err != nil {
		return nil, err
	}

	s.trackJob(handle, filename)
	defer s.releaseJob(handle.ThreadID)

	ctx = context.WithValue(ctx, logger.ThreadIDKey, handle.ThreadID)
	logger.Info(ctx, "analysis submitted", "run_id", handle.RunID, "filename", filename)

	state, elapsed, err := s.awaitCompletion(ctx, handle)
	if err != nil {
		return nil, err
	}

	if state.Status != model.StatusCompleted {
		logger.Warn(ctx, "analysis failed remotely", "status", state.Status, "detail", state.ErrDetail)
		return nil, &RemoteFailureError{Status: state.Status, Detail: state.ErrDetail}
	}

	proposal, err := s.extract(ctx, handle.ThreadID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "proposal generated", "length", len(proposal), "elapsed", elapsed)

	return &Result{
		Proposal:       proposal,
		ThreadID:       handle.ThreadID,
		ProcessingTime: elapsed,
		AgentUsed:      s.runtime.Name(),
		ModelUsed:      s.runtime.Model(),
		DocumentLength: len(documentText),
	}, nil
}

// submit creates the unit of work: thread, instruction message, run. Any
// rejection surfaces as a SubmissionError and leaves nothing to poll.
func (s *ProposalService) submit(ctx context.Context, documentText, filename string, truncated bool) (RunHandle, error) {
	threadID, err := s.runtime.CreateThread(ctx)
	if err != nil {
		return RunHandle{}, &SubmissionError{Phase: "thread", Err: err}
	}

	prompt := buildAnalysisPrompt(filename, documentText, truncated)
	if err := s.runtime.CreateMessage(ctx, threadID, "user", prompt); err != nil {
		return RunHandle{}, &SubmissionError{Phase: "message", Err: err}
	}

	runID, err := s.runtime.CreateRun(ctx, threadID, s.agentID, additionalInstructions)
	if err != nil {
		return RunHandle{}, &SubmissionError{Phase: "run", Err: err}
	}

	return RunHandle{ThreadID: threadID, RunID: runID}, nil
}

// awaitCompletion polls the run at a fixed interval until it reaches a
// terminal state or the wall-clock ceiling passes. The wait is a select on a
// timer and ctx.Done so an abandoned request stops polling promptly;
// overshoot past the ceiling is bounded by one interval.
func (s *ProposalService) awaitCompletion(ctx context.Context, handle RunHandle) (RunState, time.Duration, error) {
	start := time.Now()
	state := RunState{Status: model.StatusQueued}

	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()

	lastProgress := start

	for {
		if elapsed := time.Since(start); elapsed >= s.maxWait {
			return state, elapsed, &TimeoutError{MaxWait: s.maxWait, LastStatus: state.Status}
		}

		select {
		case <-ctx.Done():
			s.cancelAbandoned(ctx, handle)
			return state, time.Since(start), fmt.Errorf("polling aborted: %w", ctx.Err())
		case <-timer.C:
		}

		current, err := s.runtime.GetRun(ctx, handle.ThreadID, handle.RunID)
		if err != nil {
			// One attempt per tick; a failed poll is logged and the next
			// tick tries again until the ceiling.
			logger.Warn(ctx, "status poll failed", "error", err)
		} else {
			state = current
			s.updateJob(handle.ThreadID, state.Status, state.ErrDetail)
			if model.IsTerminal(state.Status) {
				return state, time.Since(start), nil
			}
			if time.Since(lastProgress) >= 30*time.Second {
				logger.Info(ctx, "analysis in progress",
					"status", state.Status,
					"elapsed_seconds", int(time.Since(start).Seconds()),
				)
				lastProgress = time.Now()
			}
		}

		timer.Reset(s.pollInterval)
	}
}

// cancelAbandoned issues a best-effort remote cancellation when the abandon
// policy is enabled. It runs on a short detached context because the
// request's own context is already done.
func (s *ProposalService) cancelAbandoned(ctx context.Context, handle RunHandle) {
	if !s.cancelOnAbandon {
		return
	}

	cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.runtime.CancelRun(cancelCtx, handle.ThreadID, handle.RunID); err != nil {
		logger.Warn(ctx, "failed to cancel abandoned run", "error", err)
		return
	}
	logger.Info(ctx, "abandoned run cancelled", "run_id", handle.RunID)
}

// extract retrieves the most recent assistant-authored message from the
// thread's log.
func (s *ProposalService) extract(ctx context.Context, threadID string) (string, error) {
	messages, err := s.runtime.ListMessages(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve messages: %w", err)
	}

	// Messages are ordered most recent first; the first assistant entry is
	// the final output.
	for _, msg := range messages {
		if msg.Role == "assistant" {
			return msg.Text, nil
		}
	}

	preview := make([]string, 0, len(messages))
	for _, msg := range messages {
		text := msg.Text
		// Cap on a rune boundary so the digest stays valid UTF-8
		if runes := []rune(text); len(runes) > 100 {
			text = string(runes[:100]) + "..."
		}
		preview = append(preview, fmt.Sprintf("%s: %s", msg.Role, text))
	}
	return "", &NoResponseError{Preview: preview}
}
