package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultQueueKey = "jobs:default"

// Job is the wire form of one queued unit of work.
type Job struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Payload  map[string]any `json:"payload"`
	Attempts int            `json:"attempts"`
	Enqueued time.Time      `json:"enqueued"`
}

// Queue is a redis-list job queue. Delivery is at least once: a job that
// fails mid-flight gets re-pushed, so every consumer must be idempotent.
type Queue struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client) *Queue {
	return &Queue{
		client: client,
		key:    defaultQueueKey,
	}
}

func (q *Queue) Enqueue(ctx context.Context, jobName string, payload map[string]any) error {
	job := Job{
		ID:       newJobID(),
		Name:     jobName,
		Payload:  payload,
		Enqueued: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %q: %w", jobName, err)
	}

	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %q: %w", jobName, err)
	}

	JobsEnqueuedTotal.WithLabelValues(jobName).Inc()
	return nil
}

// pop blocks until a job is available or the timeout elapses. Returns
// redis.Nil on timeout.
func (q *Queue) pop(ctx context.Context, timeout time.Duration) (Job, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		return Job{}, err
	}

	// BRPOP returns [key, value].
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return Job{}, fmt.Errorf("failed to unmarshal queued job: %w", err)
	}

	return job, nil
}

func (q *Queue) requeue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return q.client.LPush(ctx, q.key, data).Err()
}

func newJobID() string {
	return uuid.NewString()
}
