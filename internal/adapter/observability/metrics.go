package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	SimilarityRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_backend_requests_total",
			Help: "Similarity backend calls by backend and outcome (ok, error, unavailable)",
		},
		[]string{"backend", "outcome"},
	)
	SimilarityDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "similarity_backend_duration_seconds",
			Help:    "Similarity backend call duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"backend"},
	)

	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of evaluations by depth and verdict tier",
		},
		[]string{"depth", "tier"},
	)

	// Evaluation outcome distributions
	CombinedScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_combined_score",
			Help:    "Distribution of the combined verdict score ([0,100])",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
	HardScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_hard_score",
			Help:    "Distribution of the keyword overlap score ([0,100])",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
	SemanticScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_semantic_score",
			Help:    "Distribution of the semantic similarity score ([0,100])",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Repeated
// calls are no-ops.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AIRequestsTotal)
		prometheus.MustRegister(AIRequestDuration)
		prometheus.MustRegister(SimilarityRequestsTotal)
		prometheus.MustRegister(SimilarityDuration)
		prometheus.MustRegister(EvaluationsTotal)
		prometheus.MustRegister(CombinedScoreHistogram)
		prometheus.MustRegister(HardScoreHistogram)
		prometheus.MustRegister(SemanticScoreHistogram)
	})
}

// ObserveBackendCall records one similarity backend call.
func ObserveBackendCall(backend, outcome string, seconds float64) {
	SimilarityRequestsTotal.WithLabelValues(backend, outcome).Inc()
	if outcome != "unavailable" {
		SimilarityDuration.WithLabelValues(backend).Observe(seconds)
	}
}

// ObserveEvaluation records the resulting scores from completed evaluations.
func ObserveEvaluation(depth, tier string, hard, semantic, combined float64) {
	EvaluationsTotal.WithLabelValues(depth, tier).Inc()
	if hard >= 0 && hard <= 100 {
		HardScoreHistogram.Observe(hard)
	}
	if semantic >= 0 && semantic <= 100 {
		SemanticScoreHistogram.Observe(semantic)
	}
	if combined >= 0 && combined <= 100 {
		CombinedScoreHistogram.Observe(combined)
	}
}
