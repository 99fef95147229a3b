// Package metrics exposes Prometheus counters for conversation turns, model requests and tool calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "stock-assistant/internal/errors"
)

// Model request phases.
const (
	PhaseQuery1 = "query1"
	PhaseQuery2 = "query2"
)

// Metrics holds all Prometheus metrics for the assistant. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	TurnsTotal         *prometheus.CounterVec   // labels: outcome
	ModelRequestsTotal *prometheus.CounterVec   // labels: phase, outcome
	ToolCallsTotal     *prometheus.CounterVec   // labels: tool, outcome
	ToolDuration       *prometheus.HistogramVec // labels: tool
}

// NewMetrics creates metrics on a dedicated registry, so several instances can coexist.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_turns_total",
			Help: "Conversation turns by outcome",
		}, []string{"outcome"}),
		ModelRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_model_requests_total",
			Help: "Chat completion requests by phase and outcome",
		}, []string{"phase", "outcome"}),
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_tool_calls_total",
			Help: "Tool executions by tool and outcome",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockbot_tool_duration_seconds",
			Help:    "Tool execution latency, including the market data fetch",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"tool"}),
	}

	m.registry.MustRegister(
		m.TurnsTotal,
		m.ModelRequestsTotal,
		m.ToolCallsTotal,
		m.ToolDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTurn counts a finished turn. outcome is "answer", "image" or an error kind.
func (m *Metrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(outcome).Inc()
}

// ObserveModelRequest counts one chat completion request.
func (m *Metrics) ObserveModelRequest(phase string, err error) {
	if m == nil {
		return
	}
	m.ModelRequestsTotal.WithLabelValues(phase, apperrors.Kind(err)).Inc()
}

// ObserveToolCall counts one tool execution and records its latency.
func (m *Metrics) ObserveToolCall(tool string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, apperrors.Kind(err)).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}
