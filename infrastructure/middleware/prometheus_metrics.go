package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/filfund/pairrank/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of judge throughput,
// budget consumption, and request latency for a tournament run.
type PrometheusMetrics struct {
	judgeTokensUsed  *prometheus.CounterVec
	judgeCallsUsed   *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	budgetGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all metrics in the global Prometheus registry. Call it once per
// process; promauto panics on duplicate registration.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		judgeTokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judge_tokens_total",
				Help: "Total number of tokens consumed across all judge calls.",
			},
			[]string{"model", "token_type", "status"},
		),
		judgeCallsUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judge_calls_total",
				Help: "Total number of judge API calls made.",
			},
			[]string{"model", "status"},
		),
		requestLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "judge_request_duration_seconds",
				Help:    "Latency of judge requests including middleware overhead.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "model"},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judge_operations_total",
				Help: "Total number of judging operations by outcome.",
			},
			[]string{"operation", "status", "model"},
		),
		budgetGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "judge_budget_state",
				Help: "Current budget consumption and headroom for the run.",
			},
			[]string{"metric", "model"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// request latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.requestLatency.WithLabelValues(operation, modelLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	model := modelLabel(labels)

	switch metric {
	case "llm_tokens_total", "judge_tokens_total":
		pm.judgeTokensUsed.WithLabelValues(
			model,
			labels["token_type"],
			statusLabel(labels),
		).Add(value)
	case "llm_requests_total", "judge_calls_total":
		pm.judgeCallsUsed.WithLabelValues(model, statusLabel(labels)).Add(value)
	case "budget_exceeded_total":
		status := "exceeded_" + labels["limit_type"]
		pm.operationCounter.WithLabelValues("budget_check", status, model).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, statusLabel(labels), model).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.budgetGauges.WithLabelValues(metric, modelLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. All histogram metrics route to the
// request latency histogram keyed by metric name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.requestLatency.WithLabelValues(metric, modelLabel(labels)).Observe(value)
}

func modelLabel(labels map[string]string) string {
	if model, ok := labels["model"]; ok {
		return model
	}
	return "unknown"
}

func statusLabel(labels map[string]string) string {
	if status, ok := labels["status"]; ok {
		return status
	}
	return "success"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
