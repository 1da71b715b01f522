package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aigateway/internal/core"
	"aigateway/internal/llmclient"
)

func TestMetrics_UpstreamHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()
	require.NotNil(t, hooks.OnRequestStart)
	require.NotNil(t, hooks.OnRequestEnd)

	for _, p := range []string{"openai", "openai", "claude"} {
		hooks.OnRequestStart(context.Background(), llmclient.RequestInfo{Provider: p})
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamInFlight.WithLabelValues("openai")))

	hooks.OnRequestEnd(context.Background(), llmclient.ResponseInfo{
		Provider: "openai", Model: "gpt-4o-mini", StatusCode: 200, Duration: 300 * time.Millisecond,
	})
	hooks.OnRequestEnd(context.Background(), llmclient.ResponseInfo{
		Provider: "openai", Model: "gpt-4o-mini", StatusCode: 429, Duration: 50 * time.Millisecond,
	})
	hooks.OnRequestEnd(context.Background(), llmclient.ResponseInfo{
		Provider: "claude", Model: "claude-3-5-sonnet-latest", Err: errors.New("connection refused"),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("openai", "gpt-4o-mini", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("openai", "gpt-4o-mini", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("claude", "claude-3-5-sonnet-latest", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.upstreamDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.upstreamInFlight.WithLabelValues("openai")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.upstreamInFlight.WithLabelValues("claude")))
}

func TestMetrics_GatewayErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordGatewayError("claude", core.ErrorTypeConfiguration)
	m.RecordGatewayError("", core.ErrorTypeUnsupportedProvider)
	m.RecordGatewayError("claude", core.ErrorTypeConfiguration)

	expected := `
# HELP aigateway_gateway_errors_total Total number of normalized gateway errors by type
# TYPE aigateway_gateway_errors_total counter
aigateway_gateway_errors_total{provider="claude",type="configuration_error"} 2
aigateway_gateway_errors_total{provider="unknown",type="unsupported_provider_error"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "aigateway_gateway_errors_total")
	assert.NoError(t, err)
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}
