package binance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks REST call latency per endpoint.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "venuehub_gateway_request_duration_seconds",
		Help:    "Duration of venue REST calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"venue", "endpoint"})

	// RequestErrorsTotal counts failed REST calls by category.
	RequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_gateway_request_errors_total",
		Help: "Total number of failed venue REST calls",
	}, []string{"venue", "category"})

	// CatalogLoadsTotal counts exchangeInfo loads, i.e. handle constructions.
	CatalogLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venuehub_gateway_catalog_loads_total",
		Help: "Total number of instrument catalog loads",
	}, []string{"venue", "result"})
)
