// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// OnboardingTransitions counts wizard commands by outcome: applied, ignored, rejected, completed.
	OnboardingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_transitions_total",
			Help: "Onboarding wizard commands by transition and outcome",
		},
		[]string{"transition", "outcome"},
	)

	// NotificationsTotal counts dispatcher calls by request type and outcome.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Lead notification dispatches by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	LeadRecordFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_record_failures_total",
			Help: "Lead audit inserts that failed after a successful dispatch",
		},
	)
)
