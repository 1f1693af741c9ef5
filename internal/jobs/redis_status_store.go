package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStatusStore keeps each job status in a Redis hash that expires ttl
// after its last update.
type RedisStatusStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStatusStore creates a RedisStatusStore.
func NewRedisStatusStore(client redis.Cmdable, ttl time.Duration) *RedisStatusStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStatusStore{client: client, ttl: ttl}
}

// StatusKey returns the hash key for a job.
func StatusKey(jobID string) string {
	return fmt.Sprintf("job:%s:status", jobID)
}

// Put writes the status fields and refreshes the key TTL.
func (s *RedisStatusStore) Put(ctx context.Context, job Job) error {
	key := StatusKey(job.ID)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, EncodeFields(job))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write job status %s: %w", job.ID, err)
	}
	return nil
}

// Get reads the status hash for id.
func (s *RedisStatusStore) Get(ctx context.Context, id string) (*Job, error) {
	values, err := s.client.HGetAll(ctx, StatusKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("read job status %s: %w", id, err)
	}
	if len(values) == 0 {
		return nil, ErrJobNotFound
	}
	return DecodeFields(values)
}

// EncodeFields flattens a job into hash fields.
func EncodeFields(job Job) map[string]any {
	fields := map[string]any{
		"job_id":       job.ID,
		"name":         job.Name,
		"state":        string(job.Status),
		"submitted_at": job.SubmittedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":   job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(job.Result) > 0 {
		fields["result"] = string(job.Result)
	}
	if job.Error != "" {
		fields["error_message"] = job.Error
	}
	return fields
}

// DecodeFields rebuilds a job from hash fields written by EncodeFields.
func DecodeFields(values map[string]string) (*Job, error) {
	job := &Job{
		ID:     values["job_id"],
		Name:   values["name"],
		Status: Status(strings.ToLower(strings.TrimSpace(values["state"]))),
		Error:  values["error_message"],
	}
	if r := values["result"]; r != "" {
		job.Result = []byte(r)
	}

	var err error
	if job.SubmittedAt, err = time.Parse(time.RFC3339Nano, values["submitted_at"]); err != nil {
		return nil, fmt.Errorf("decode job %s submitted_at: %w", job.ID, err)
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339Nano, values["updated_at"]); err != nil {
		return nil, fmt.Errorf("decode job %s updated_at: %w", job.ID, err)
	}
	return job, nil
}

var _ StatusStore = (*RedisStatusStore)(nil)
