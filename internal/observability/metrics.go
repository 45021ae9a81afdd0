// Package observability bundles the Prometheus collectors for the console.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates collectors for the RPC core and the HTTP adapter.
// All record methods are nil-safe so callers can run without metrics.
type Metrics struct {
	registry      *prometheus.Registry
	SessionStarts *prometheus.CounterVec
	SessionResets *prometheus.CounterVec
	ToolCalls     *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
}

// NewMetrics constructs a registry with the console collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	starts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gradedesk_session_starts_total",
		Help: "Tool-server subprocess spawns by service",
	}, []string{"service"})

	resets := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gradedesk_session_resets_total",
		Help: "Session teardowns (failure recovery or explicit reset) by service",
	}, []string{"service"})

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gradedesk_tool_calls_total",
		Help: "Tool calls by service and outcome",
	}, []string{"service", "outcome"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gradedesk_tool_call_duration_seconds",
		Help:    "Tool call duration in seconds, including any reconnect",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	reg.MustRegister(starts, resets, calls, durs)

	return &Metrics{
		registry:      reg,
		SessionStarts: starts,
		SessionResets: resets,
		ToolCalls:     calls,
		CallDuration:  durs,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordSessionStart counts one subprocess spawn.
func (m *Metrics) RecordSessionStart(service string) {
	if m == nil {
		return
	}
	m.SessionStarts.WithLabelValues(service).Inc()
}

// RecordSessionReset counts one session teardown.
func (m *Metrics) RecordSessionReset(service string) {
	if m == nil {
		return
	}
	m.SessionResets.WithLabelValues(service).Inc()
}

// RecordToolCall counts one completed call and its duration.
func (m *Metrics) RecordToolCall(service, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.ToolCalls.WithLabelValues(service, outcome).Inc()
	m.CallDuration.WithLabelValues(service).Observe(duration.Seconds())
}
