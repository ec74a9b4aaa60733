package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream call outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "unavailable"
	OutcomeFallback    = "fallback"
	OutcomeNoData      = "no_data"
)

type UpstreamMetricsCollector struct {
	Requests  *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
	ServiceUp prometheus.Gauge
}

var (
	upstreamCollector     *UpstreamMetricsCollector
	upstreamCollectorOnce sync.Once
)

// GetUpstreamMetrics returns the process-wide upstream metrics collector
func GetUpstreamMetrics() *UpstreamMetricsCollector {
	upstreamCollectorOnce.Do(func() {
		upstreamCollector = &UpstreamMetricsCollector{
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "movierec_upstream_requests_total",
					Help: "Ranking service requests by operation and outcome",
				},
				[]string{"operation", "outcome"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "movierec_upstream_duration_seconds",
					Help:    "Ranking service request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"operation"},
			),
			ServiceUp: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "movierec_ml_service_up",
					Help: "Whether the last ranking service health probe succeeded (1) or not (0)",
				},
			),
		}
	})
	return upstreamCollector
}

// RecordRequest counts one upstream call with its outcome
func (c *UpstreamMetricsCollector) RecordRequest(operation, outcome string) {
	c.Requests.WithLabelValues(operation, outcome).Inc()
}

// RecordLatency observes one upstream call duration
func (c *UpstreamMetricsCollector) RecordLatency(operation string, seconds float64) {
	c.Latency.WithLabelValues(operation).Observe(seconds)
}

// SetServiceUp records the latest health probe result
func (c *UpstreamMetricsCollector) SetServiceUp(up bool) {
	if up {
		c.ServiceUp.Set(1)
	} else {
		c.ServiceUp.Set(0)
	}
}
