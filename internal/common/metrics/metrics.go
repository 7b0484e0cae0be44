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

	TurnStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_turn_stage_total",
			Help: "Conversation turn stages by final status",
		},
		[]string{"stage", "status"},
	)

	TurnStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_turn_stage_duration_seconds",
			Help:    "Duration of each conversation turn stage in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_turns_total",
			Help: "Processed conversation turns by next slot",
		},
		[]string{"next_slot"},
	)

	EligibilityDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_eligibility_decisions_total",
			Help: "Eligibility evaluations by loan type and verdict",
		},
		[]string{"loan_type", "eligible"},
	)
)

// ObserveStage records one stage outcome.
func ObserveStage(stage, status string, seconds float64) {
	TurnStageTotal.WithLabelValues(stage, status).Inc()
	TurnStageDuration.WithLabelValues(stage).Observe(seconds)
}

// ObserveEligibility counts an evaluated profile.
func ObserveEligibility(loanType string, eligible bool) {
	verdict := "false"
	if eligible {
		verdict = "true"
	}
	EligibilityDecisions.WithLabelValues(loanType, verdict).Inc()
}
