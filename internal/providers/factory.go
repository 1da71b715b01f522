// Package providers holds the provider-agnostic side of completion dispatch:
// provider names, the Adapter contract, per-call credential resolution and
// classification of backend failures.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"aigateway/internal/llmclient"
)

// Name identifies a supported backend. The set is closed.
type Name string

const (
	// OpenAI is the OpenAI-compatible chat-completions backend.
	OpenAI Name = "openai"
	// Claude is the Anthropic-compatible messages backend.
	Claude Name = "claude"
)

// DefaultName is used when neither the request nor the environment picks a provider.
const DefaultName = OpenAI

// ParseName lower-cases s and returns the matching Name.
func ParseName(s string) (Name, bool) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case OpenAI:
		return OpenAI, true
	case Claude:
		return Claude, true
	default:
		return "", false
	}
}

// DisplayName is the label used in normalized error messages.
func (n Name) DisplayName() string {
	switch n {
	case OpenAI:
		return "OpenAI"
	case Claude:
		return "Claude"
	default:
		return string(n)
	}
}

// Completion is a fully resolved request handed to an Adapter.
type Completion struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	MaxTokens    int
	Temperature  float64
	JSONMode     bool
}

// Adapter shapes a Completion for one backend and reduces the response to text.
// Errors are returned as the backend produced them; normalization happens in
// the gateway.
type Adapter interface {
	Complete(ctx context.Context, req *Completion) (string, error)
}

// ProviderOptions carries the shared, concurrency-safe dependencies adapters are built with.
type ProviderOptions struct {
	HTTPClient *http.Client
	Hooks      llmclient.Hooks
}

// Registration binds a provider name to its adapter constructor.
type Registration struct {
	Name Name
	New  func(creds Credentials, opts ProviderOptions) Adapter
}

// Factory builds a fresh adapter per call from resolved credentials.
// Adapters are cheap values; the HTTP client underneath is shared.
type Factory struct {
	mu       sync.RWMutex
	builders map[Name]func(Credentials, ProviderOptions) Adapter
	opts     ProviderOptions
}

// NewFactory creates a factory with the given shared options and registrations.
func NewFactory(opts ProviderOptions, regs ...Registration) *Factory {
	f := &Factory{
		builders: make(map[Name]func(Credentials, ProviderOptions) Adapter, len(regs)),
		opts:     opts,
	}
	for _, r := range regs {
		f.Register(r)
	}
	return f
}

// Register adds or replaces the constructor for a provider.
func (f *Factory) Register(r Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[r.Name] = r.New
}

// Create builds an adapter for creds.Provider.
func (f *Factory) Create(creds Credentials) (Adapter, error) {
	f.mu.RLock()
	build, ok := f.builders[creds.Provider]
	opts := f.opts
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %q", creds.Provider)
	}
	return build(creds, opts), nil
}
