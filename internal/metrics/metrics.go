package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SelectionDuration tracks the latency of recommendation decisions
	SelectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "reco_selection_duration_seconds",
			Help: "Duration of recommendation decisions in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"outcome"}, // selected or empty
	)

	// SelectionsTotal counts decisions by context, source path and outcome
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_selections_total",
			Help: "Total recommendation decisions",
		},
		[]string{"context", "source", "outcome"},
	)

	// DependencyFailures counts degraded dependencies by component
	DependencyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_dependency_failures_total",
			Help: "Total dependency failures absorbed by the engine",
		},
		[]string{"component"},
	)

	// CandidateExclusions counts eligibility exclusions by reason
	CandidateExclusions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_candidate_exclusions_total",
			Help: "Total candidates excluded during eligibility filtering",
		},
		[]string{"reason"},
	)
)

// RecordSelection records one decision outcome
func RecordSelection(context, source, outcome string) {
	SelectionsTotal.WithLabelValues(context, source, outcome).Inc()
}

// RecordSelectionDuration records the duration of one decision
func RecordSelectionDuration(outcome string, seconds float64) {
	SelectionDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordDependencyFailure records a degraded dependency call
func RecordDependencyFailure(component string) {
	DependencyFailures.WithLabelValues(component).Inc()
}

// RecordExclusion records one excluded candidate
func RecordExclusion(reason string) {
	CandidateExclusions.WithLabelValues(reason).Inc()
}
