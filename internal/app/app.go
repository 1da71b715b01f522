// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the gateway server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"aigateway/config"
	"aigateway/internal/gateway"
	"aigateway/internal/httpclient"
	"aigateway/internal/observability"
	"aigateway/internal/providers"
	"aigateway/internal/providers/anthropic"
	"aigateway/internal/providers/openai"
	"aigateway/internal/server"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config  *config.Config
	logger  *slog.Logger
	gateway *gateway.Gateway
	server  *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the configuration options for creating an App.
type Config struct {
	// AppConfig is the loaded application configuration.
	AppConfig *config.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Lookup reads provider credentials and the admin secret per call.
	// Nil reads the process environment.
	Lookup providers.LookupFunc

	// Registry receives the gateway's collectors when metrics are enabled.
	// Nil uses a fresh registry.
	Registry *prometheus.Registry
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}
	appCfg := cfg.AppConfig

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		config: appCfg,
		logger: logger,
	}

	lookup := cfg.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	httpClient := httpclient.New(httpclient.Timeouts{
		Request:        time.Duration(appCfg.HTTP.Timeout) * time.Second,
		ResponseHeader: time.Duration(appCfg.HTTP.ResponseHeaderTimeout) * time.Second,
	})

	opts := providers.ProviderOptions{HTTPClient: httpClient}
	gwOpts := gateway.Options{
		Resolver:   providers.NewResolver(lookup),
		Classifier: providers.NewClassifier(),
		Logger:     logger,
	}

	serverCfg := &server.Config{
		AdminSecret:     adminSecret(lookup, appCfg.Server.AdminSecret),
		MetricsEnabled:  appCfg.Metrics.Enabled,
		MetricsEndpoint: appCfg.Metrics.Endpoint,
		BodySizeLimit:   appCfg.Server.BodySizeLimitBytes(),
		Logger:          logger,
	}

	if appCfg.Metrics.Enabled {
		reg := cfg.Registry
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		metrics := observability.NewMetrics(reg)
		opts.Hooks = metrics.Hooks()
		gwOpts.Errors = metrics
		serverCfg.MetricsGatherer = reg
	}

	gwOpts.Factory = providers.NewFactory(opts, openai.Registration, anthropic.Registration)
	app.gateway = gateway.New(gwOpts)

	app.logStartupInfo()

	app.server = server.New(app.gateway, serverCfg)

	return app, nil
}

// Gateway returns the completion gateway for in-process callers.
func (a *App) Gateway() *gateway.Gateway {
	return a.gateway
}

// Handler returns the HTTP handler, for use with httptest.
func (a *App) Handler() http.Handler {
	return a.server
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	a.logger.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			a.logger.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server, honoring the passed context
// timeout/cancellation. In-flight completions finish or are cancelled with
// their request context.
//
// Shutdown is idempotent and safe for repeated calls; after the first call, subsequent calls are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	a.logger.Info("shutting down application...")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// adminSecret reads ADMIN_AI_SHARED_SECRET on every request so a rotated
// secret applies without a restart. The loaded config value is used while
// the variable is unset.
func adminSecret(lookup providers.LookupFunc, fallback string) server.SecretFunc {
	return func() string {
		if v, ok := lookup(config.AdminSecretEnv); ok {
			return v
		}
		return fallback
	}
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Server.AdminSecret == "" {
		a.logger.Warn("admin secret not set at startup - admin routes are unauthenticated until it is", "env", config.AdminSecretEnv)
	} else {
		a.logger.Info("admin routes protected", "header", server.AdminSecretHeader)
	}

	if cfg.Metrics.Enabled {
		a.logger.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		a.logger.Info("prometheus metrics disabled")
	}

	a.logger.Info("upstream http client configured",
		"timeout_seconds", cfg.HTTP.Timeout,
		"response_header_timeout_seconds", cfg.HTTP.ResponseHeaderTimeout,
	)
}
