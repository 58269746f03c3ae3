package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, cacheEvictionsTotal) }

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Tracks cache hits and misses for the catalog result cache.",
	},
	[]string{"cache", "result"}, // e.g., cache="books", result="hit"
)

var cacheEvictionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_evictions_total",
		Help: "Entries evicted from the result cache.",
	},
	[]string{"cache", "reason"}, // reason: 'expired', 'capacity'
)

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func IncCacheEviction(cacheName, reason string) {
	cacheEvictionsTotal.WithLabelValues(norm(cacheName), norm(reason)).Inc()
}
