// Package anthropic provides the Anthropic messages adapter used for the
// "claude" provider.
package anthropic

import (
	"context"
	"net/http"
	"strings"

	"aigateway/internal/llmclient"
	"aigateway/internal/providers"
)

// Registration provides factory registration for the Claude adapter.
var Registration = providers.Registration{
	Name: providers.Claude,
	New: func(creds providers.Credentials, opts providers.ProviderOptions) providers.Adapter {
		return New(creds, opts)
	},
}

const (
	defaultBaseURL      = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
)

// jsonInstruction is appended to the user prompt in JSON mode; the messages
// API has no native JSON response format.
const jsonInstruction = "\n\nReturn ONLY valid JSON. No markdown, no explanation outside JSON."

// Adapter implements providers.Adapter for the Anthropic messages API.
type Adapter struct {
	client *llmclient.Client
	apiKey string
}

// New creates an adapter bound to one set of credentials.
func New(creds providers.Credentials, opts providers.ProviderOptions) *Adapter {
	a := &Adapter{apiKey: creds.APIKey}
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	a.client = llmclient.New(opts.HTTPClient, llmclient.Config{
		ProviderName: string(providers.Claude),
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Hooks:        opts.Hooks,
	}, a.setHeaders)
	return a
}

// setHeaders sets the required headers for Anthropic API requests
func (a *Adapter) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicRequest is the JSON body sent to /messages.
type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// buildRequest shapes a completion for the messages endpoint.
func buildRequest(req *providers.Completion) *anthropicRequest {
	user := req.UserPrompt
	if req.JSONMode {
		user += jsonInstruction
	}
	temperature := req.Temperature
	return &anthropicRequest{
		Model:       req.Model,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: user}},
		MaxTokens:   req.MaxTokens,
		Temperature: &temperature,
	}
}

// extractText concatenates the text blocks in order, skipping tool_use,
// thinking and any other block type.
func extractText(resp *anthropicResponse) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// stripCodeFences removes a leading ```json or ``` fence and a trailing ```
// fence, then trims whitespace. Applying it twice yields the same result.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = rest
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Complete sends a messages request and returns the cleaned reply text.
func (a *Adapter) Complete(ctx context.Context, req *providers.Completion) (string, error) {
	var resp anthropicResponse
	err := a.client.Do(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/messages",
		Body:     buildRequest(req),
		Model:    req.Model,
	}, &resp)
	if err != nil {
		return "", err
	}
	return stripCodeFences(extractText(&resp)), nil
}
