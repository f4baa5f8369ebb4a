// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Wallet metrics
	WalletConnects *prometheus.CounterVec

	// Validation metrics
	ValidationFailures *prometheus.CounterVec

	// Pipeline metrics
	PipelineStagesTotal  *prometheus.CounterVec
	PipelineStageLatency *prometheus.HistogramVec
	TokensCreated        prometheus.Counter

	// Transaction metrics
	ConfirmationLatency prometheus.Histogram

	// Health metrics
	LastTokenCreated prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "spl_token_forge"
	}

	return &Metrics{
		WalletConnects: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "connects_total",
			Help:      "Total number of wallet connection attempts by outcome",
		}, []string{"outcome"}),

		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "validation_failures_total",
			Help:      "Total number of field validation failures by field",
		}, []string{"field"}),

		PipelineStagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stages_total",
			Help:      "Total number of pipeline stage executions by stage and status",
		}, []string{"stage", "status"}),
		PipelineStageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_latency_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		TokensCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "tokens_created_total",
			Help:      "Total number of tokens created end to end",
		}),

		ConfirmationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "confirmation_latency_seconds",
			Help:      "Transaction confirmation latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),

		LastTokenCreated: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_token_created_timestamp",
			Help:      "Unix timestamp of the last successful token creation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordWalletConnect records a wallet connection attempt.
func RecordWalletConnect(outcome string) {
	DefaultMetrics.WalletConnects.WithLabelValues(outcome).Inc()
}

// RecordValidationFailure records a field validation failure.
func RecordValidationFailure(field string) {
	DefaultMetrics.ValidationFailures.WithLabelValues(field).Inc()
}

// RecordPipelineStage records one pipeline stage execution.
func RecordPipelineStage(stage, status string, seconds float64) {
	DefaultMetrics.PipelineStagesTotal.WithLabelValues(stage, status).Inc()
	DefaultMetrics.PipelineStageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordTokenCreated records a fully successful token creation.
func RecordTokenCreated() {
	DefaultMetrics.TokensCreated.Inc()
	DefaultMetrics.LastTokenCreated.SetToCurrentTime()
}

// RecordConfirmationLatency records transaction confirmation latency.
func RecordConfirmationLatency(seconds float64) {
	DefaultMetrics.ConfirmationLatency.Observe(seconds)
}
