package rates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// AggregationDuration tracks end-to-end top-rates latency, cache hits included.
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "venuehub_rates_aggregation_duration_seconds",
		Help:    "Duration of top-rates aggregation",
		Buckets: prometheus.DefBuckets,
	})

	// AggregationsTotal counts aggregations by result: cached, computed, unsupported, error.
	AggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_rates_aggregations_total",
		Help: "Total number of top-rates aggregations by result",
	}, []string{"result"})

	// FallbacksTotal counts aggregations that used the fallback-quote scan.
	FallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuehub_rates_fallbacks_total",
		Help: "Total number of aggregations that fell back to the stable quote scan",
	})
)
