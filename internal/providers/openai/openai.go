// Package openai provides the OpenAI-compatible chat-completions adapter.
package openai

import (
	"context"
	"net/http"
	"strings"

	"aigateway/internal/core"
	"aigateway/internal/llmclient"
	"aigateway/internal/providers"
)

// Registration provides factory registration for the OpenAI adapter.
var Registration = providers.Registration{
	Name: providers.OpenAI,
	New: func(creds providers.Credentials, opts providers.ProviderOptions) providers.Adapter {
		return New(creds, opts)
	},
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
)

// Adapter implements providers.Adapter for OpenAI-compatible backends.
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
		ProviderName: string(providers.OpenAI),
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Hooks:        opts.Hooks,
	}, a.setHeaders)
	return a
}

// setHeaders sets the required headers for OpenAI API requests
func (a *Adapter) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	// Forward request ID if present in context using OpenAI's X-Client-Request-Id header.
	// OpenAI requires ASCII-only characters and max 512 bytes, otherwise returns 400.
	if requestID := core.GetRequestID(req.Context()); requestID != "" && isValidClientRequestID(requestID) {
		req.Header.Set("X-Client-Request-Id", requestID)
	}
}

// isValidClientRequestID checks if the request ID is valid for OpenAI's X-Client-Request-Id header.
func isValidClientRequestID(id string) bool {
	if len(id) > 512 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] > 127 {
			return false
		}
	}
	return true
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the JSON body sent to /chat/completions.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

// chatResponse keeps only what text extraction needs.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// buildChatRequest shapes a completion for the chat-completions endpoint.
// Model, max_tokens and temperature are sent as given for every model.
// JSON mode is requested natively through response_format.
func buildChatRequest(req *providers.Completion) *chatRequest {
	format := "text"
	if req.JSONMode {
		format = "json_object"
	}

	return &chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:      req.MaxTokens,
		Temperature:    req.Temperature,
		ResponseFormat: responseFormat{Type: format},
	}
}

// extractText returns the first choice's content, or "" when there is none.
func extractText(resp *chatResponse) string {
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return ""
	}
	return strings.TrimSpace(*resp.Choices[0].Message.Content)
}

// Complete sends a chat completion request and returns the reply text.
func (a *Adapter) Complete(ctx context.Context, req *providers.Completion) (string, error) {
	var resp chatResponse
	err := a.client.Do(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     buildChatRequest(req),
		Model:    req.Model,
	}, &resp)
	if err != nil {
		return "", err
	}
	return extractText(&resp), nil
}
