package providers

import (
	"os"

	"aigateway/internal/core"
)

// Env vars consulted when no explicit provider is requested.
const DefaultProviderEnv = "DEFAULT_AI_PROVIDER"

// Credentials is everything an adapter needs for one call.
// It is resolved per call and never cached.
type Credentials struct {
	Provider Name
	APIKey   string
	Model    string
	// BaseURL is empty when the adapter's default endpoint should be used
	BaseURL string
}

// knownProviderEnvs maps each provider to its environment variables and
// hardcoded model fallback. This list is the authoritative source for
// per-provider configuration.
var knownProviderEnvs = map[Name]struct {
	apiKeyEnv    string
	modelEnv     string
	baseURLEnv   string
	defaultModel string
}{
	OpenAI: {"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "gpt-4o-mini"},
	Claude: {"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "ANTHROPIC_BASE_URL", "claude-3-5-sonnet-latest"},
}

// LookupFunc reads a configuration value. It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolver picks the provider, model and credential for a call by reading
// process-wide configuration at call time, so rotated keys apply to the next
// call without a restart.
type Resolver struct {
	lookup LookupFunc
}

// NewResolver creates a resolver. A nil lookup reads the process environment.
func NewResolver(lookup LookupFunc) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{lookup: lookup}
}

// get treats empty values as unset.
func (r *Resolver) get(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	return v
}

// ResolveName applies override -> DEFAULT_AI_PROVIDER -> "openai".
// No credential is read here.
func (r *Resolver) ResolveName(override string) (Name, error) {
	raw := override
	if raw == "" {
		raw = r.get(DefaultProviderEnv)
	}
	if raw == "" {
		return DefaultName, nil
	}
	name, ok := ParseName(raw)
	if !ok {
		return "", core.NewUnsupportedProviderError(raw)
	}
	return name, nil
}

// Resolve reads the credential, model and base URL for name.
// A missing credential fails before any network activity.
func (r *Resolver) Resolve(name Name, modelOverride string) (Credentials, error) {
	env, ok := knownProviderEnvs[name]
	if !ok {
		return Credentials{}, core.NewUnsupportedProviderError(string(name))
	}

	apiKey := r.get(env.apiKeyEnv)
	if apiKey == "" {
		return Credentials{}, core.NewConfigurationError(string(name), env.apiKeyEnv)
	}

	model := modelOverride
	if model == "" {
		model = r.get(env.modelEnv)
	}
	if model == "" {
		model = env.defaultModel
	}

	return Credentials{
		Provider: name,
		APIKey:   apiKey,
		Model:    model,
		BaseURL:  r.get(env.baseURLEnv),
	}, nil
}
