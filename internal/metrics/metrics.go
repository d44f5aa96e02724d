package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service metrics for production monitoring
var (
	// Chat metrics
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netai_chat_requests_total",
			Help: "Total number of chat turns composed",
		},
		[]string{"template", "status"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netai_chat_request_duration_seconds",
			Help:    "End-to-end chat turn duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1min
		},
		[]string{"template"},
	)

	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netai_active_conversations",
			Help: "Number of live conversation sessions",
		},
	)

	// LLM metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netai_llm_requests_total",
			Help: "Total number of LLM API requests",
		},
		[]string{"model", "status"},
	)

	LLMTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netai_llm_tokens_total",
			Help: "Total number of LLM tokens consumed",
		},
		[]string{"model", "type"}, // type: prompt/completion
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netai_llm_request_duration_seconds",
			Help:    "LLM request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"model"},
	)

	// Diagnostics metrics
	AnomaliesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netai_anomalies_detected_total",
			Help: "Total anomalies detected by type and severity",
		},
		[]string{"type", "severity"},
	)

	TelemetryFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netai_telemetry_fetch_failures_total",
			Help: "Measurement or trace fetches that failed and were degraded to no data",
		},
		[]string{"kind"},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netai_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "code"},
	)
)
