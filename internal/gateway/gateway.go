// Package gateway implements the provider-agnostic completion entry point.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aigateway/internal/core"
	"aigateway/internal/providers"
)

// ErrorRecorder is notified of every normalized failure.
type ErrorRecorder interface {
	RecordGatewayError(provider string, errType core.ErrorType)
}

// Options configures a Gateway. Only Factory is required.
type Options struct {
	Resolver   *providers.Resolver
	Factory    *providers.Factory
	Classifier *providers.Classifier
	Logger     *slog.Logger
	Errors     ErrorRecorder
}

// Gateway dispatches completion requests to the configured provider.
// It holds no per-request state and is safe for concurrent use.
type Gateway struct {
	resolver   *providers.Resolver
	factory    *providers.Factory
	classifier *providers.Classifier
	logger     *slog.Logger
	recorder   ErrorRecorder
}

// New creates a gateway. Missing optional dependencies get defaults: a
// resolver over the process environment, the default classifier rules and
// slog.Default().
func New(opts Options) *Gateway {
	g := &Gateway{
		resolver:   opts.Resolver,
		factory:    opts.Factory,
		classifier: opts.Classifier,
		logger:     opts.Logger,
		recorder:   opts.Errors,
	}
	if g.resolver == nil {
		g.resolver = providers.NewResolver(nil)
	}
	if g.classifier == nil {
		g.classifier = providers.NewClassifier()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Ask resolves the provider for req, performs one completion and returns
// the provider's text. Every failure is a *core.GatewayError.
func (g *Gateway) Ask(ctx context.Context, req core.CompletionRequest) (string, error) {
	start := time.Now()
	if req.MaxTokens <= 0 {
		req.MaxTokens = core.DefaultMaxTokens
	}

	name, err := g.resolver.ResolveName(req.Provider)
	if err != nil {
		return "", g.fail(ctx, req, "", start, err)
	}

	creds, err := g.resolver.Resolve(name, req.Model)
	if err != nil {
		return "", g.fail(ctx, req, creds.Model, start, err)
	}

	adapter, err := g.factory.Create(creds)
	if err != nil {
		return "", g.fail(ctx, req, creds.Model, start, g.classifier.Classify(name, err))
	}

	text, err := adapter.Complete(ctx, &providers.Completion{
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		Model:        creds.Model,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		JSONMode:     req.JSONMode,
	})
	if err != nil {
		return "", g.fail(ctx, req, creds.Model, start, g.classifier.Classify(name, err))
	}

	g.logger.InfoContext(ctx, "completion served",
		"provider", string(name),
		"model", creds.Model,
		"json_mode", req.JSONMode,
		"duration", time.Since(start),
		"request_id", core.GetRequestID(ctx),
	)
	return text, nil
}

func (g *Gateway) fail(ctx context.Context, req core.CompletionRequest, model string, start time.Time, err error) error {
	var gwErr *core.GatewayError
	if !errors.As(err, &gwErr) {
		gwErr = core.NewUpstreamError(req.Provider, 0, err.Error(), err)
	}

	g.logger.WarnContext(ctx, "completion failed",
		"provider", gwErr.Provider,
		"model", model,
		"json_mode", req.JSONMode,
		"duration", time.Since(start),
		"request_id", core.GetRequestID(ctx),
		"status", gwErr.HTTPStatusCode(),
		"type", string(gwErr.Type),
		"error", err,
	)
	if g.recorder != nil {
		g.recorder.RecordGatewayError(gwErr.Provider, gwErr.Type)
	}
	return gwErr
}
