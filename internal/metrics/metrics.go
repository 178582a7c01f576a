// Package metrics exposes prometheus instrumentation for the agent loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubesleuth_chats_total",
			Help: "Total number of chat requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	LoopIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kubesleuth_loop_iterations",
			Help:    "Reasoning loop iterations consumed per request",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubesleuth_llm_requests_total",
			Help: "Total number of model completion calls",
		},
		[]string{"status"},
	)

	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kubesleuth_llm_request_duration_seconds",
			Help:    "Model completion call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubesleuth_tool_calls_total",
			Help: "Total number of diagnostic tool invocations",
		},
		[]string{"tool", "status"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kubesleuth_tool_call_duration_seconds",
			Help:    "Diagnostic tool execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"tool"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kubesleuth_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)
)
