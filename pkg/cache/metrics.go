package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for the "cache" label.
const (
	tierRemote = "redis"
	tierLocal  = "memory"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"cache"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"cache"})

	CacheSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_cache_sets_total",
		Help: "Total number of cache sets",
	}, []string{"cache"})

	CacheDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_cache_deletes_total",
		Help: "Total number of cache deletes",
	}, []string{"cache"})

	CacheExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "venuehub_cache_expired_total",
		Help: "Total number of expired in-process entries removed on lookup",
	})

	CacheFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_cache_fallbacks_total",
		Help: "Total number of operations served by the in-process tier because the shared tier failed",
	}, []string{"op"})

	CacheTier1Healthy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "venuehub_cache_tier1_healthy",
		Help: "1 if the last shared-tier call succeeded, 0 otherwise",
	})

	CacheOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "venuehub_cache_operation_duration_seconds",
		Help:    "Duration of shared-tier cache operations",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"op"})
)
