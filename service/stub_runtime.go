package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mattalagalams/nsp-agent/model"
)

// StubRuntime fabricates a canned proposal after a fixed delay. It is used
// when the live runtime pair (endpoint + agent id) is not configured, so the
// request surface can be exercised without the external dependency.
type StubRuntime struct {
	delay time.Duration

	mu       sync.Mutex
	started  map[string]time.Time // run key -> creation time
	prompts  map[string]string    // thread id -> last user message
	canceled map[string]bool
}

func NewStubRuntime(delay time.Duration) *StubRuntime {
	return &StubRuntime{
		delay:    delay,
		started:  make(map[string]time.Time),
		prompts:  make(map[string]string),
		canceled: make(map[string]bool),
	}
}

func (s *StubRuntime) Name() string { return "stub" }

func (s *StubRuntime) Model() string { return "mock-o3" }

func (s *StubRuntime) CreateThread(ctx context.Context) (string, error) {
	return "stub-thread-" + uuid.New().String(), nil
}

func (s *StubRuntime) CreateMessage(ctx context.Context, threadID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role == "user" {
		s.prompts[threadID] = content
	}
	return nil
}

func (s *StubRuntime) CreateRun(ctx context.Context, threadID, agentID, instructions string) (string, error) {
	runID := "stub-run-" + uuid.New().String()
	s.mu.Lock()
	s.started[runKey(threadID, runID)] = time.Now()
	s.mu.Unlock()
	return runID, nil
}

func (s *StubRuntime) GetRun(ctx context.Context, threadID, runID string) (RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := runKey(threadID, runID)
	start, ok := s.started[key]
	if !ok {
		return RunState{}, fmt.Errorf("unknown run %s", runID)
	}
	if s.canceled[key] {
		return RunState{Status: model.StatusFailed, ErrDetail: "run cancelled"}, nil
	}
	if time.Since(start) < s.delay {
		return RunState{Status: model.StatusRunning}, nil
	}
	return RunState{Status: model.StatusCompleted}, nil
}

func (s *StubRuntime) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	s.mu.Lock()
	prompt := s.prompts[threadID]
	s.mu.Unlock()

	messages := []ThreadMessage{
		{Role: "assistant", Text: stubProposal},
	}
	if prompt != "" {
		messages = append(messages, ThreadMessage{Role: "user", Text: prompt})
	}
	return messages, nil
}

func (s *StubRuntime) CancelRun(ctx context.Context, threadID, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canceled[runKey(threadID, runID)] = true
	return nil
}

func runKey(threadID, runID string) string {
	return threadID + "/" + runID
}

const stubProposal = `COMPREHENSIVE AZURE UPSELLING PROPOSAL (SIMULATED)

EXECUTIVE SUMMARY
Based on the submitted Statement of Work, we project annual savings of
$420,000 (38% cost reduction) and operational efficiency improvements of 65%.

TOP AZURE SERVICE RECOMMENDATIONS
1. Azure App Service + Container Apps - $300K annual infrastructure savings
2. Azure Document Intelligence - 2,000 documents/day processing capacity
3. Azure Synapse Analytics + Power BI - real-time insights, 75% faster reporting
4. Microsoft Sentinel - AI-powered threat detection and compliance automation
5. Azure DevOps - deployment cycles reduced from 2 weeks to 2 hours

FINANCIAL ANALYSIS
Current state costs: $650,000/year. Proposed Azure solution: $230,000/year.
24-month ROI: 340%. Break-even point: 8 months.

IMPLEMENTATION ROADMAP
Phase 1 (months 1-3): foundation migration and security baseline.
Phase 2 (months 4-6): document intelligence and analytics rollout.
Phase 3 (months 7-12): advanced features and DevOps transformation.

NEXT STEPS
Present this proposal to stakeholders, secure budget approval, and schedule
a technical proof of concept.

This proposal was generated by the local stub runtime for interface testing.`
