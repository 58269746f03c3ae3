package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(broadcastSendsTotal, broadcastCyclesTotal) }

var broadcastSendsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broadcast_sends_total",
		Help: "Per-recipient broadcast send results.",
	},
	[]string{"result"}, // 'sent', 'failed'
)

var broadcastCyclesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "broadcast_cycles_total",
		Help: "Completed broadcast cycles, including skipped-empty ones.",
	},
)

func AddBroadcastSends(sent, failed int) {
	broadcastSendsTotal.WithLabelValues("sent").Add(float64(sent))
	broadcastSendsTotal.WithLabelValues("failed").Add(float64(failed))
}

func IncBroadcastCycle() { broadcastCyclesTotal.Inc() }
