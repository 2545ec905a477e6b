package queue

import (
	"context"
	"errors"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	popTimeout  = 5 * time.Second
	maxAttempts = 3
)

// HandlerFunc processes one job. A non-nil error re-queues the job until
// maxAttempts, so handlers must tolerate redelivery.
type HandlerFunc func(ctx context.Context, payload map[string]any) error

// Worker drains the queue on a blocking loop. One worker goroutine is enough
// for this workload; handlers run sequentially so a handler's own atomicity
// guards are the only concurrency control they need.
type Worker struct {
	queue    *Queue
	handlers map[string]HandlerFunc
}

func NewWorker(queue *Queue) *Worker {
	return &Worker{
		queue:    queue,
		handlers: make(map[string]HandlerFunc),
	}
}

func (w *Worker) Register(jobName string, handler HandlerFunc) {
	w.handlers[jobName] = handler
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logger.Info("queue worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("queue worker stopped")
			return
		default:
		}

		job, err := w.queue.pop(ctx, popTimeout)
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			logger.Error("queue pop failed", err)
			time.Sleep(time.Second)
			continue
		}

		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	handler, ok := w.handlers[job.Name]
	if !ok {
		logger.Error("no handler registered for job", "job", job.Name, "job_id", job.ID)
		JobsProcessedTotal.WithLabelValues(job.Name, "dropped").Inc()
		return
	}

	if err := handler(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= maxAttempts {
			logger.Error("job exhausted retries", "error", err, "job", job.Name, "job_id", job.ID, "attempts", job.Attempts)
			JobsProcessedTotal.WithLabelValues(job.Name, "failed").Inc()
			return
		}

		logger.Warn("job failed, requeueing", "job", job.Name, "job_id", job.ID, "attempt", job.Attempts, "error", err)
		if err := w.queue.requeue(ctx, job); err != nil {
			logger.Error("failed to requeue job", "error", err, "job", job.Name, "job_id", job.ID)
		}
		JobsProcessedTotal.WithLabelValues(job.Name, "retried").Inc()
		return
	}

	JobsProcessedTotal.WithLabelValues(job.Name, "ok").Inc()
}
