package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(activeSubscribers, subscriberSavesTotal) }

var activeSubscribers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "active_subscribers",
		Help: "Chats with notifications enabled.",
	},
)

var subscriberSavesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "subscriber_saves_total",
		Help: "Snapshot writes of the subscriber file by outcome.",
	},
	[]string{"outcome"}, // 'ok', 'error'
)

func SetActiveSubscribers(n int) { activeSubscribers.Set(float64(n)) }

func IncSubscriberSave(outcome string) {
	subscriberSavesTotal.WithLabelValues(norm(outcome)).Inc()
}
