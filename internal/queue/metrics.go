package queue

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	JobsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_queue_jobs_enqueued_total",
			Help: "Count of jobs pushed to the queue, by job name.",
		},
		[]string{"job"},
	)

	JobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_queue_jobs_processed_total",
			Help: "Count of job executions by job name and outcome.",
		},
		[]string{"job", "status"},
	)
)

func init() {
	prometheus.MustRegister(JobsEnqueuedTotal, JobsProcessedTotal)
}
