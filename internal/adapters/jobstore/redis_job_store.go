package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/platefinder/backend/internal/domain/entities"
	"github.com/platefinder/backend/internal/domain/providers"
	redisclient "github.com/platefinder/backend/internal/infrastructure/clients/redis"
	"github.com/redis/go-redis/v9"
)

const (
	jobKeyPrefix  = "job:"
	idemKeyPrefix = "job_idem:"
)

// RedisJobStore persists search jobs in Redis. The idempotency mapping is a
// separate SetNX key so create-if-absent is a single atomic operation; job
// records themselves live under their ID with the same TTL.
type RedisJobStore struct {
	client *redisclient.Client
}

// Ensure RedisJobStore implements JobStore
var _ providers.JobStore = (*RedisJobStore)(nil)

// NewRedisJobStore creates a new Redis job store
func NewRedisJobStore(client *redisclient.Client) *RedisJobStore {
	return &RedisJobStore{client: client}
}

// rebindScript swaps the idempotency binding only while it is still absent or
// still pointing at the superseded job, so two submissions replacing the same
// dead job cannot both win.
var rebindScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == false or current == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// FindCandidate returns the job registered for the idempotency key, if it is
// still eligible for reuse within the freshness window. The bound job ID is
// returned even when the job itself is no longer eligible.
func (s *RedisJobStore) FindCandidate(ctx context.Context, key string, freshWindow time.Duration) (*entities.SearchJob, string, error) {
	jobID, err := s.client.Client().Get(ctx, idemKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve idempotency key: %w", err)
	}

	job, err := s.GetByID(ctx, jobID)
	if err != nil {
		return nil, jobID, err
	}
	if job == nil || !eligible(job, freshWindow, time.Now()) {
		return nil, jobID, nil
	}
	return job, jobID, nil
}

// CreateIfAbsent atomically registers the job for its idempotency key.
// Returns false when another job already holds the key.
func (s *RedisJobStore) CreateIfAbsent(ctx context.Context, job *entities.SearchJob, ttl time.Duration) (bool, error) {
	won, err := s.client.Client().SetNX(ctx, idemKeyPrefix+job.IdempotencyKey, job.ID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to register idempotency key: %w", err)
	}
	if !won {
		return false, nil
	}
	return true, s.storeRecord(ctx, job, ttl)
}

// Replace rebinds the idempotency key from a superseded job to the new one.
// Returns false when a concurrent submission rebound the key first.
func (s *RedisJobStore) Replace(ctx context.Context, job *entities.SearchJob, supersededJobID string, ttl time.Duration) (bool, error) {
	won, err := rebindScript.Run(ctx, s.client.Client(),
		[]string{idemKeyPrefix + job.IdempotencyKey},
		supersededJobID, job.ID, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to rebind idempotency key: %w", err)
	}
	if won == 0 {
		return false, nil
	}
	return true, s.storeRecord(ctx, job, ttl)
}

func (s *RedisJobStore) storeRecord(ctx context.Context, job *entities.SearchJob, ttl time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.client.Client().Set(ctx, jobKeyPrefix+job.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job: %w", err)
	}
	return nil
}

// GetByID returns a job by its ID, or nil when it does not exist
func (s *RedisJobStore) GetByID(ctx context.Context, id string) (*entities.SearchJob, error) {
	data, err := s.client.Client().Get(ctx, jobKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	var job entities.SearchJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// Update persists status/result changes, keeping the record's TTL
func (s *RedisJobStore) Update(ctx context.Context, job *entities.SearchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.client.Client().Set(ctx, jobKeyPrefix+job.ID, data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// eligible decides whether a stored job may still serve as a dedup candidate.
// Terminal jobs age out of reuse after the freshness window; non-terminal jobs
// are always handed to the dedup engine, which applies its own staleness
// rules.
func eligible(job *entities.SearchJob, freshWindow time.Duration, now time.Time) bool {
	if !job.Status.IsTerminal() {
		return true
	}
	return now.Sub(job.UpdatedAt) <= freshWindow
}
