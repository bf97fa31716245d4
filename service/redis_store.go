package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mattalagalams/nsp-agent/model"
)

const proposalKeyPrefix = "proposal:"

// RedisStore is a Redis-backed ProposalStore. Entries carry a TTL so the
// cache stays bounded, and proposals survive process restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts), ttl: ttl}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Put(ctx context.Context, artifact *model.Artifact) error {
	if artifact.ProducedAt.IsZero() {
		artifact.ProducedAt = time.Now()
	}

	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return s.client.Set(ctx, proposalKeyPrefix+artifact.ThreadID, data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, threadID string) (*model.Artifact, error) {
	data, err := s.client.Get(ctx, proposalKeyPrefix+threadID).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var artifact model.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	return &artifact, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	keys, err := s.client.Keys(ctx, proposalKeyPrefix+"*").Result()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
