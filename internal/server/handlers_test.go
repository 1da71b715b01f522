package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aigateway/internal/core"
)

// mockCompleter returns a fixed reply and records what it was asked.
type mockCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []core.CompletionRequest
	ctxIDs   []string
}

func (m *mockCompleter) Ask(ctx context.Context, req core.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	m.ctxIDs = append(m.ctxIDs, core.GetRequestID(ctx))
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockCompleter) last(t *testing.T) core.CompletionRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.requests)
	return m.requests[len(m.requests)-1]
}

func doJSON(srv http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestAsk_Defaults(t *testing.T) {
	mock := &mockCompleter{reply: "hi there"}
	srv := New(mock, nil)

	rec := doJSON(srv, http.MethodPost, "/v1/ask", `{"system_prompt":"s","user_prompt":"u"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"hi there"}`, rec.Body.String())

	got := mock.last(t)
	assert.Equal(t, core.NewCompletionRequest("s", "u"), got)
}

func TestAsk_ExplicitOptions(t *testing.T) {
	mock := &mockCompleter{reply: "{}"}
	srv := New(mock, nil)

	rec := doJSON(srv, http.MethodPost, "/v1/ask", `{
		"system_prompt": "s", "user_prompt": "u",
		"provider": "claude", "model": "claude-3-5-haiku-latest",
		"max_tokens": 64, "json_mode": true, "temperature": 0
	}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := mock.last(t)
	assert.Equal(t, "claude", got.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	assert.True(t, got.JSONMode)
	assert.Equal(t, 0.0, got.Temperature)
}

func TestAsk_GatewayErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "configuration",
			err:      core.NewConfigurationError("claude", "ANTHROPIC_API_KEY"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":{"type":"configuration_error","message":"ANTHROPIC_API_KEY is missing. Set it in the environment or .env"}}`,
		},
		{
			name:     "rate limit",
			err:      core.NewUpstreamError("openai", http.StatusTooManyRequests, "OpenAI request failed: Error code: 429", nil),
			wantCode: http.StatusTooManyRequests,
			wantBody: `{"error":{"type":"rate_limit_error","message":"OpenAI request failed: Error code: 429"}}`,
		},
		{
			name:     "unexpected",
			err:      assert.AnError,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":{"type":"internal_error","message":"an unexpected error occurred"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&mockCompleter{err: tt.err}, nil)
			rec := doJSON(srv, http.MethodPost, "/v1/ask", `{"user_prompt":"u"}`, nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestAsk_InvalidBody(t *testing.T) {
	srv := New(&mockCompleter{}, nil)
	rec := doJSON(srv, http.MethodPost, "/v1/ask", `{"user_prompt":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request_error")
}

func TestRequestID(t *testing.T) {
	mock := &mockCompleter{reply: "ok"}
	srv := New(mock, nil)

	rec := doJSON(srv, http.MethodPost, "/v1/ask", `{}`, map[string]string{core.RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(core.RequestIDHeader))

	rec = doJSON(srv, http.MethodPost, "/v1/ask", `{}`, nil)
	generated := rec.Header().Get(core.RequestIDHeader)
	assert.Len(t, generated, 36)

	mock.mu.Lock()
	defer mock.mu.Unlock()
	assert.Equal(t, []string{"req-123", generated}, mock.ctxIDs)
}

func TestRoutes_Text(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		body      string
		reply     string
		wantBody  string
		maxTokens int
	}{
		{
			name:      "generate summary",
			path:      "/resume/generate-summary",
			body:      `{"job_title":"SRE","years_experience":4,"skills":["Go"],"industry":"Cloud"}`,
			reply:     "  Reliable SRE.  \n",
			wantBody:  `{"summary":"Reliable SRE."}`,
			maxTokens: 200,
		},
		{
			name:      "generate job post",
			path:      "/jobpost/generate",
			body:      `{"role_title":"SRE","company_name":"Acme","required_skills":["Go"]}`,
			reply:     "\nJoin Acme as an SRE.\n",
			wantBody:  `{"job_post":"Join Acme as an SRE.","word_count":5}`,
			maxTokens: 900,
		},
		{
			name:      "improve job post",
			path:      "/jobpost/improve",
			body:      `{"existing_post":"old","improvement_type":"tone"}`,
			reply:     "new ",
			wantBody:  `{"improved_post":"new"}`,
			maxTokens: 900,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCompleter{reply: tt.reply}
			rec := doJSON(New(mock, nil), http.MethodPost, tt.path, tt.body, nil)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			got := mock.last(t)
			assert.Equal(t, tt.maxTokens, got.MaxTokens)
			assert.False(t, got.JSONMode)
		})
	}
}

func TestRoutes_JSON(t *testing.T) {
	paths := []string{
		"/resume/validate-field",
		"/resume/score",
		"/resume/profile-insights",
		"/jobpost/extract-skills",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			mock := &mockCompleter{reply: `{"valid": true, "score": 8,}`}
			rec := doJSON(New(mock, nil), http.MethodPost, path, `{"provider":"claude"}`, nil)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, `{"valid":true,"score":8}`, rec.Body.String())
			got := mock.last(t)
			assert.True(t, got.JSONMode)
			assert.Equal(t, "claude", got.Provider)
		})
	}
}

func TestRoutes_MalformedJSON(t *testing.T) {
	mock := &mockCompleter{reply: "I cannot help with that"}
	rec := doJSON(New(mock, nil), http.MethodPost, "/resume/score", `{"resume_text":"cv"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"type":"malformed_response_error","message":"AI returned invalid JSON"}}`, rec.Body.String())
}

func TestAdminInsights(t *testing.T) {
	const body = `{"snapshot":{"active_users":120}}`

	t.Run("secret required", func(t *testing.T) {
		mock := &mockCompleter{reply: `{"ok":true}`}
		srv := New(mock, &Config{AdminSecret: func() string { return "s3cret" }})

		rec := doJSON(srv, http.MethodPost, "/admin/insights", body, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, mock.requests)

		rec = doJSON(srv, http.MethodPost, "/admin/insights", body, map[string]string{AdminSecretHeader: "s3cret"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

		got := mock.last(t)
		assert.Equal(t, 1200, got.MaxTokens)
		assert.Equal(t, 0.2, got.Temperature)
		assert.True(t, got.JSONMode)
		assert.Contains(t, got.UserPrompt, `"active_users": 120`)
	})

	t.Run("unparseable reply", func(t *testing.T) {
		mock := &mockCompleter{reply: "I can only answer in prose"}
		rec := doJSON(New(mock, nil), http.MethodPost, "/admin/insights", body, nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":{"type":"malformed_response_error","message":"AI returned invalid response"}}`, rec.Body.String())
	})

	t.Run("missing snapshot", func(t *testing.T) {
		mock := &mockCompleter{reply: `{}`}
		rec := doJSON(New(mock, nil), http.MethodPost, "/admin/insights", `{}`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, mock.requests)
	})
}

func TestHealth(t *testing.T) {
	rec := doJSON(New(&mockCompleter{}, nil), http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "aigateway_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	enabled := New(&mockCompleter{}, &Config{MetricsEnabled: true, MetricsEndpoint: "/internal/../metrics", MetricsGatherer: reg})
	rec := doJSON(enabled, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aigateway_test_total 1")

	disabled := New(&mockCompleter{}, &Config{MetricsGatherer: reg})
	rec = doJSON(disabled, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	srv := New(&mockCompleter{reply: "ok"}, &Config{BodySizeLimit: 16})
	rec := doJSON(srv, http.MethodPost, "/v1/ask", `{"user_prompt":"this body is too large"}`, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
