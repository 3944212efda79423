package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// PoolHandles is the number of handles in the process-lifetime table.
	PoolHandles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "venuehub_pool_handles",
		Help: "Number of gateway handles kept for the process lifetime",
	})

	// PoolAcquiresTotal counts acquire outcomes: hit, built, shared, error, canceled.
	PoolAcquiresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_pool_acquires_total",
		Help: "Total number of gateway handle acquisitions by outcome",
	}, []string{"outcome"})

	// PoolBuildsTotal counts handle constructions.
	PoolBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_pool_builds_total",
		Help: "Total number of gateway handle constructions",
	}, []string{"venue", "result"})

	// PoolBuildDuration tracks how long constructions take, catalog load included.
	PoolBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "venuehub_pool_build_duration_seconds",
		Help:    "Duration of gateway handle construction",
		Buckets: prometheus.DefBuckets,
	}, []string{"venue"})
)
