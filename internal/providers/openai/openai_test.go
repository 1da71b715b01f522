package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aigateway/internal/core"
	"aigateway/internal/llmclient"
	"aigateway/internal/providers"
)

// captureServer returns a server that records the decoded request body and
// replies with status/body.
func captureServer(t *testing.T, status int, body string, captured *map[string]interface{}, headers *http.Header) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Path = %q, want /chat/completions", r.URL.Path)
		}
		if headers != nil {
			*headers = r.Header.Clone()
		}
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(raw, captured)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestAdapter(server *httptest.Server) *Adapter {
	return New(providers.Credentials{
		Provider: providers.OpenAI,
		APIKey:   "sk-test",
		BaseURL:  server.URL,
	}, providers.ProviderOptions{HTTPClient: server.Client()})
}

const okBody = `{
	"id": "chatcmpl-123",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Hello there  "}, "finish_reason": "stop"}]
}`

func TestComplete_RequestShape(t *testing.T) {
	tests := []struct {
		name       string
		jsonMode   bool
		wantFormat string
	}{
		{"plain text", false, "text"},
		{"json mode", true, "json_object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]interface{}
			var headers http.Header
			server := captureServer(t, http.StatusOK, okBody, &body, &headers)

			_, err := newTestAdapter(server).Complete(context.Background(), &providers.Completion{
				SystemPrompt: "You are terse.",
				UserPrompt:   "Say hi",
				Model:        "gpt-4o-mini",
				MaxTokens:    321,
				Temperature:  0.25,
				JSONMode:     tt.jsonMode,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := headers.Get("Authorization"); got != "Bearer sk-test" {
				t.Errorf("Authorization = %q, want Bearer sk-test", got)
			}
			if body["model"] != "gpt-4o-mini" {
				t.Errorf("model = %v", body["model"])
			}
			if body["max_tokens"] != float64(321) {
				t.Errorf("max_tokens = %v, want 321", body["max_tokens"])
			}
			if body["temperature"] != 0.25 {
				t.Errorf("temperature = %v, want 0.25", body["temperature"])
			}
			format, _ := body["response_format"].(map[string]interface{})
			if format["type"] != tt.wantFormat {
				t.Errorf("response_format.type = %v, want %s", format["type"], tt.wantFormat)
			}

			messages, _ := body["messages"].([]interface{})
			if len(messages) != 2 {
				t.Fatalf("len(messages) = %d, want 2", len(messages))
			}
			system := messages[0].(map[string]interface{})
			user := messages[1].(map[string]interface{})
			if system["role"] != "system" || system["content"] != "You are terse." {
				t.Errorf("system message = %v", system)
			}
			if user["role"] != "user" || user["content"] != "Say hi" {
				t.Errorf("user message = %v (prompt must not be altered)", user)
			}
		})
	}
}

func TestComplete_ZeroTemperatureIsSent(t *testing.T) {
	var body map[string]interface{}
	server := captureServer(t, http.StatusOK, okBody, &body, nil)

	_, err := newTestAdapter(server).Complete(context.Background(), &providers.Completion{
		Model:       "gpt-4o",
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, ok := body["temperature"]; !ok || v != float64(0) {
		t.Errorf("temperature = %v (present=%v), want explicit 0", v, ok)
	}
}

func TestComplete_ReasoningModelKeepsSamplingFields(t *testing.T) {
	var body map[string]interface{}
	server := captureServer(t, http.StatusOK, okBody, &body, nil)

	_, err := newTestAdapter(server).Complete(context.Background(), &providers.Completion{
		Model:       "o3-mini",
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if body["model"] != "o3-mini" {
		t.Errorf("model = %v, want o3-mini", body["model"])
	}
	if body["max_tokens"] != float64(500) {
		t.Errorf("max_tokens = %v, want 500", body["max_tokens"])
	}
	if body["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", body["temperature"])
	}
	if _, ok := body["max_completion_tokens"]; ok {
		t.Error("max_completion_tokens should not be sent")
	}
}

func TestComplete_Extraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"content is trimmed", okBody, "Hello there"},
		{"null content", `{"choices":[{"message":{"role":"assistant","content":null}}]}`, ""},
		{"no choices", `{"choices":[]}`, ""},
		{"json content kept verbatim", "{\"choices\":[{\"message\":{\"content\":\"```json\\n{}\\n```\"}}]}", "```json\n{}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := captureServer(t, http.StatusOK, tt.body, nil, nil)

			got, err := newTestAdapter(server).Complete(context.Background(), &providers.Completion{Model: "gpt-4o-mini"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Complete() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComplete_UpstreamError(t *testing.T) {
	server := captureServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"You exceeded your current quota","code":"insufficient_quota"}}`, nil, nil)

	_, err := newTestAdapter(server).Complete(context.Background(), &providers.Completion{Model: "gpt-4o-mini"})

	var statusErr *llmclient.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *llmclient.StatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", statusErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "insufficient_quota") {
		t.Errorf("error text should keep the upstream body, got %q", err.Error())
	}
}

func TestComplete_ForwardsRequestID(t *testing.T) {
	var headers http.Header
	server := captureServer(t, http.StatusOK, okBody, nil, &headers)

	ctx := core.WithRequestID(context.Background(), "req-abc")
	if _, err := newTestAdapter(server).Complete(ctx, &providers.Completion{Model: "gpt-4o-mini"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := headers.Get("X-Client-Request-Id"); got != "req-abc" {
		t.Errorf("X-Client-Request-Id = %q, want req-abc", got)
	}
}

func TestIsValidClientRequestID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"abc-123", true},
		{strings.Repeat("a", 512), true},
		{strings.Repeat("a", 513), false},
		{"req-ünïcode", false},
	}
	for _, tt := range tests {
		if got := isValidClientRequestID(tt.id); got != tt.want {
			t.Errorf("isValidClientRequestID(%.20q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
