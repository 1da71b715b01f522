// Package observability exposes Prometheus metrics for upstream calls and
// normalized gateway failures.
package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"aigateway/internal/core"
	"aigateway/internal/llmclient"
)

// Metrics holds the gateway's collectors.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamInFlight *prometheus.GaugeVec
	gatewayErrors    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aigateway_upstream_requests_total",
				Help: "Total number of requests sent to LLM providers",
			},
			[]string{"provider", "model", "status"},
		),

		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aigateway_upstream_request_duration_seconds",
				Help:    "Duration of LLM provider requests in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),

		upstreamInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aigateway_upstream_requests_in_flight",
				Help: "Number of LLM provider requests currently awaiting a response",
			},
			[]string{"provider"},
		),

		gatewayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aigateway_gateway_errors_total",
				Help: "Total number of normalized gateway errors by type",
			},
			[]string{"provider", "type"},
		),
	}
}

// Hooks returns llmclient hooks that record every upstream request.
func (m *Metrics) Hooks() llmclient.Hooks {
	return llmclient.Hooks{
		OnRequestStart: m.startUpstream,
		OnRequestEnd:   m.recordUpstream,
	}
}

func (m *Metrics) startUpstream(ctx context.Context, info llmclient.RequestInfo) context.Context {
	m.upstreamInFlight.WithLabelValues(info.Provider).Inc()
	return ctx
}

func (m *Metrics) recordUpstream(_ context.Context, info llmclient.ResponseInfo) {
	m.upstreamInFlight.WithLabelValues(info.Provider).Dec()
	m.upstreamRequests.WithLabelValues(info.Provider, info.Model, statusLabel(info)).Inc()
	m.upstreamDuration.WithLabelValues(info.Provider, info.Model).Observe(info.Duration.Seconds())
}

// RecordGatewayError counts a normalized failure. An empty provider is
// reported as "unknown".
func (m *Metrics) RecordGatewayError(provider string, errType core.ErrorType) {
	if provider == "" {
		provider = "unknown"
	}
	m.gatewayErrors.WithLabelValues(provider, string(errType)).Inc()
}

// statusLabel is the HTTP status, or "error" when no response was received.
func statusLabel(info llmclient.ResponseInfo) string {
	if info.StatusCode == 0 {
		return "error"
	}
	return strconv.Itoa(info.StatusCode)
}
