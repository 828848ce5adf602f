package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Те же события экспортируются как Prometheus-коллекторы для
// опционального admin-листенера (/metrics).
var (
	promHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jkvs_cache_hits_total",
		Help: "Total number of cache hits",
	})

	promMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jkvs_cache_misses_total",
		Help: "Total number of cache misses",
	})

	promRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jkvs_requests_total",
		Help: "Total number of store requests",
	})

	promLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jkvs_request_latency_seconds",
		Help:    "Store operation latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4.0, 12),
	})

	promBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jkvs_batch_size",
		Help:    "Number of writes per batch flush",
		Buckets: prometheus.LinearBuckets(1, 5, 11),
	})
)

func init() {
	prometheus.MustRegister(promHits)
	prometheus.MustRegister(promMisses)
	prometheus.MustRegister(promRequests)
	prometheus.MustRegister(promLatency)
	prometheus.MustRegister(promBatchSize)
}
