// Package metrics exposes Prometheus instrumentation for the evidence pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CacheLookups counts response-cache lookups by kind and outcome (hit, miss).
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evidence_cache_lookups_total",
		Help: "Response cache lookups by operation kind and outcome.",
	}, []string{"kind", "outcome"})

	// ProviderRequests counts data-provider calls by operation and outcome.
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evidence_provider_requests_total",
		Help: "External keyword/SERP provider calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// ReasoningPasses counts reasoning passes by pass type and final state.
	ReasoningPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evidence_reasoning_passes_total",
		Help: "Reasoning passes by pass type and final state.",
	}, []string{"pass", "outcome"})

	// FreeDataFetches counts best-effort free-data fetches by source and outcome.
	FreeDataFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evidence_free_data_fetches_total",
		Help: "Best-effort free data fetches by source and outcome.",
	}, []string{"source", "outcome"})

	// ConfidenceScore observes the final confidence score of each bundle.
	ConfidenceScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evidence_confidence_score",
		Help:    "Overall confidence score of produced evidence bundles.",
		Buckets: []float64{50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 98},
	})
)

// Register adds all collectors to reg. Registering twice returns the
// registerer's AlreadyRegistered error.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		CacheLookups,
		ProviderRequests,
		ReasoningPasses,
		FreeDataFetches,
		ConfidenceScore,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
