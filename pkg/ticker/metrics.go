package ticker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pipelineRunsTotal counts finished runs.
	// Labels: outcome (pass, low_confidence, timeout, error)
	pipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticker",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Finished resolution pipeline runs by outcome",
	}, []string{"outcome"})

	// pipelineCycles observes how many grading rounds a run needed.
	pipelineCycles = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ticker",
		Subsystem: "pipeline",
		Name:      "cycles",
		Help:      "Extract/resolve/grade cycles per run",
		Buckets:   []float64{1, 2, 3, 4, 5, 8},
	})

	// catalogLookupsTotal counts store calls.
	// Labels: kind (exact, fuzzy, fulltext), result (hit, miss, error)
	catalogLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ticker",
		Subsystem: "catalog",
		Name:      "lookups_total",
		Help:      "Catalog lookups by kind and result",
	}, []string{"kind", "result"})

	// reasoningCallSeconds measures reasoning latency.
	// Labels: call (extract, grade, rewrite)
	reasoningCallSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ticker",
		Subsystem: "reasoning",
		Name:      "call_seconds",
		Help:      "Latency of reasoning calls",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45},
	}, []string{"call"})
)

func recordLookup(kind string, n int, err error) {
	switch {
	case err != nil:
		catalogLookupsTotal.WithLabelValues(kind, "error").Inc()
	case n == 0:
		catalogLookupsTotal.WithLabelValues(kind, "miss").Inc()
	default:
		catalogLookupsTotal.WithLabelValues(kind, "hit").Inc()
	}
}
