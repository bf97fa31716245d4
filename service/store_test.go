package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mattalagalams/nsp-agent/model"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	artifact := &model.Artifact{
		ThreadID: "thread-1",
		Proposal: "proposal text",
		Filename: "sow.pdf",
	}
	if err := store.Put(ctx, artifact); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Proposal != "proposal text" {
		t.Errorf("Expected identical proposal text, got '%s'", got.Proposal)
	}
	if got.ProducedAt.IsZero() {
		t.Error("Expected ProducedAt to be filled on Put")
	}

	// Retrieval is idempotent
	again, err := store.Get(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if again.Proposal != got.Proposal {
		t.Error("Expected identical text on repeated Get")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore(10)

	_, err := store.Get(context.Background(), "unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreCount(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		store.Put(ctx, &model.Artifact{ThreadID: fmt.Sprintf("thread-%d", i), Proposal: "p"})
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		store.Put(ctx, &model.Artifact{
			ThreadID:   fmt.Sprintf("thread-%d", i),
			Proposal:   "p",
			ProducedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	count, _ := store.Count(ctx)
	if count != 3 {
		t.Errorf("Expected count bounded at 3, got %d", count)
	}

	// Oldest entries are gone, newest remain
	if _, err := store.Get(ctx, "thread-0"); !errors.Is(err, ErrNotFound) {
		t.Error("Expected oldest entry to be cleaned up")
	}
	if _, err := store.Get(ctx, "thread-4"); err != nil {
		t.Errorf("Expected newest entry to survive, got %v", err)
	}
}

func TestMemoryStoreUnlimited(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		store.Put(ctx, &model.Artifact{ThreadID: fmt.Sprintf("thread-%d", i), Proposal: "p"})
	}

	count, _ := store.Count(ctx)
	if count != 200 {
		t.Errorf("Expected unlimited store to keep all entries, got %d", count)
	}
}

func TestMemoryStoreConcurrentWrites(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Put(ctx, &model.Artifact{
				ThreadID: fmt.Sprintf("thread-%d", i),
				Proposal: fmt.Sprintf("proposal-%d", i),
			})
		}(i)
	}
	wg.Wait()

	// No cross-contamination across keys
	for i := 0; i < 20; i++ {
		got, err := store.Get(ctx, fmt.Sprintf("thread-%d", i))
		if err != nil {
			t.Fatalf("Missing entry %d: %v", i, err)
		}
		if got.Proposal != fmt.Sprintf("proposal-%d", i) {
			t.Errorf("Entry %d has wrong proposal: %s", i, got.Proposal)
		}
	}
}
