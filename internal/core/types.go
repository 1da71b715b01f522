package core

// Defaults applied by NewCompletionRequest.
const (
	DefaultMaxTokens   = 800
	DefaultTemperature = 0.7
)

// CompletionRequest is a single provider-agnostic completion call.
// Provider and Model are optional; empty means "resolve from configuration".
type CompletionRequest struct {
	SystemPrompt string  `json:"system_prompt"`
	UserPrompt   string  `json:"user_prompt"`
	Provider     string  `json:"provider,omitempty"`
	Model        string  `json:"model,omitempty"`
	MaxTokens    int     `json:"max_tokens"`
	JSONMode     bool    `json:"json_mode"`
	Temperature  float64 `json:"temperature"`
}

// RequestOption customizes a CompletionRequest.
type RequestOption func(*CompletionRequest)

// NewCompletionRequest builds a request with the default generation options
// and applies opts in order.
func NewCompletionRequest(systemPrompt, userPrompt string, opts ...RequestOption) CompletionRequest {
	req := CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// WithProvider overrides the provider for this request.
func WithProvider(provider string) RequestOption {
	return func(r *CompletionRequest) { r.Provider = provider }
}

// WithModel overrides the model for this request.
func WithModel(model string) RequestOption {
	return func(r *CompletionRequest) { r.Model = model }
}

// WithMaxTokens sets the maximum output size.
func WithMaxTokens(n int) RequestOption {
	return func(r *CompletionRequest) { r.MaxTokens = n }
}

// WithJSONMode requests JSON-only output.
func WithJSONMode(enabled bool) RequestOption {
	return func(r *CompletionRequest) { r.JSONMode = enabled }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) RequestOption {
	return func(r *CompletionRequest) { r.Temperature = t }
}
