package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	LiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pricesim",
			Subsystem: "live",
			Name:      "connections",
			Help:      "Open live simulation websocket connections",
		},
	)

	LiveMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricesim",
			Subsystem: "live",
			Name:      "messages_total",
			Help:      "Live simulation messages by outcome",
		},
		[]string{"outcome"},
	)
)

// Register registers the live simulation metrics with the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(LiveConnections, LiveMessages)
	})
}
