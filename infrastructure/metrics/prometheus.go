// Package metrics provides the Prometheus implementation of the
// metrics collector port.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arbiterhq/arbiter/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It covers the two metric families the service emits:
// LLM request metrics (per provider and model) and comparison
// workflow metrics (per operation and verdict).
type PrometheusMetrics struct {
	llmLatency  *prometheus.HistogramVec
	llmRequests *prometheus.CounterVec
	llmTokens   *prometheus.CounterVec

	comparisonLatency *prometheus.HistogramVec
	comparisonCounter *prometheus.CounterVec

	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and
// registers all metrics with the given registerer. A nil registerer
// uses the default global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		llmLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Latency of LLM provider requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "model", "status"},
		),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of LLM provider requests.",
			},
			[]string{"provider", "model", "status"},
		),
		llmTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Total tokens exchanged with LLM providers.",
			},
			[]string{"provider", "model", "token_type"},
		),

		comparisonLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "comparison_duration_seconds",
				Help:    "Wall-clock duration of comparison operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "verdict"},
		),
		comparisonCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comparisons_total",
				Help: "Total number of comparison operations.",
			},
			[]string{"operation", "verdict"},
		),

		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbiter_operations_total",
				Help: "Total number of miscellaneous service operations.",
			},
			[]string{"operation", "status"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "arbiter_system_state",
				Help: "Current system state values.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in the matching Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	switch operation {
	case "llm_request":
		pm.llmLatency.WithLabelValues(
			labels["provider"], labels["model"], labels["status"],
		).Observe(duration.Seconds())
	case "comparison":
		pm.comparisonLatency.WithLabelValues(
			labels["operation"], labels["verdict"],
		).Observe(duration.Seconds())
	default:
		pm.comparisonLatency.WithLabelValues(operation, "").Observe(duration.Seconds())
	}
}

// RecordCounter implements the MetricsCollector interface by
// incrementing the matching Prometheus counter.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "llm_requests_total":
		pm.llmRequests.WithLabelValues(
			labels["provider"], labels["model"], labels["status"],
		).Add(value)
	case "llm_tokens_total":
		pm.llmTokens.WithLabelValues(
			labels["provider"], labels["model"], labels["token_type"],
		).Add(value)
	case "comparisons_total":
		pm.comparisonCounter.WithLabelValues(
			labels["operation"], labels["verdict"],
		).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, labels["status"]).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting the
// matching Prometheus gauge.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
