package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mattalagalams/nsp-agent/model"
)

// ProposalStore holds generated proposals keyed by thread id so the download
// path can serve them after the original request cycle has ended.
// Implementations must be safe for concurrent use.
type ProposalStore interface {
	Put(ctx context.Context, artifact *model.Artifact) error
	Get(ctx context.Context, threadID string) (*model.Artifact, error)
	Count(ctx context.Context) (int, error)
}

// MemoryStore is an in-memory ProposalStore. Entries above maxProposals are
// cleaned up oldest first, bounding memory growth across long uptimes.
type MemoryStore struct {
	mu           sync.RWMutex
	proposals    map[string]*model.Artifact
	maxProposals int // 0 = unlimited
}

func NewMemoryStore(maxProposals int) *MemoryStore {
	if maxProposals < 0 {
		maxProposals = 0
	}
	return &MemoryStore{
		proposals:    make(map[string]*model.Artifact),
		maxProposals: maxProposals,
	}
}

func (s *MemoryStore) Put(ctx context.Context, artifact *model.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if artifact.ProducedAt.IsZero() {
		artifact.ProducedAt = time.Now()
	}
	s.proposals[artifact.ThreadID] = artifact

	s.cleanupIfNeeded()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, threadID string) (*model.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.proposals[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	return artifact, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.proposals), nil
}

// cleanupIfNeeded removes the oldest proposals when the store exceeds its
// bound. Must be called with the lock held.
func (s *MemoryStore) cleanupIfNeeded() {
	if s.maxProposals <= 0 {
		return
	}
	if len(s.proposals) <= s.maxProposals {
		return
	}

	artifacts := make([]*model.Artifact, 0, len(s.proposals))
	for _, a := range s.proposals {
		artifacts = append(artifacts, a)
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].ProducedAt.Before(artifacts[j].ProducedAt)
	})

	removeCount := len(artifacts) - s.maxProposals
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old proposal",
			"thread_id", artifacts[i].ThreadID,
			"produced_at", artifacts[i].ProducedAt,
		)
		delete(s.proposals, artifacts[i].ThreadID)
	}
}
