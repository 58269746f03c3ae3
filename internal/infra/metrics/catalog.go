package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(catalogRequestsTotal, catalogRetriesTotal, catalogLatencyMs) }

var catalogRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Upstream calls by operation and outcome.",
	},
	[]string{"operation", "outcome"}, // outcome: 'ok', 'retryable', 'terminal'
)

var catalogRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_retries_total",
		Help: "Retry attempts performed per operation.",
	},
	[]string{"operation"},
)

var catalogLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "catalog_call_latency_ms",
		Help:    "Upstream call latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
	},
	[]string{"operation", "success"},
)

func IncCatalogRequest(operation, outcome string) {
	catalogRequestsTotal.WithLabelValues(norm(operation), norm(outcome)).Inc()
}

func IncCatalogRetry(operation string) {
	catalogRetriesTotal.WithLabelValues(norm(operation)).Inc()
}

func ObserveCatalogCall(operation string, latencyMs int64, success bool) {
	catalogLatencyMs.WithLabelValues(norm(operation), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
