package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "halcon",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of radar endpoints",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "halcon",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by radar endpoint and kind",
		},
		[]string{"endpoint", "kind"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors)
	})
}

// Observe records one endpoint call. kind is empty on success.
func Observe(endpoint string, start time.Time, kind string) {
	APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if kind != "" {
		APIErrors.WithLabelValues(endpoint, kind).Inc()
	}
}
