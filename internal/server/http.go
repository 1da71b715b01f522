package server

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aigateway/config"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	AdminSecret     SecretFunc          // Optional: shared secret required on /admin routes, read per request
	MetricsEnabled  bool                // Whether to expose Prometheus metrics endpoint
	MetricsEndpoint string              // HTTP path for metrics endpoint (default: /metrics)
	MetricsGatherer prometheus.Gatherer // Source for the metrics endpoint (default: prometheus.DefaultGatherer)
	BodySizeLimit   int64               // Max request body size in bytes (default: 10MB)
	Logger          *slog.Logger        // Request logger (default: slog.Default())
}

// New creates a new HTTP server
func New(completer Completer, cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	handler := NewHandler(completer)

	// Global middleware stack (order matters)
	e.Use(RequestIDMiddleware())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	// Body size limit (default: 10MB)
	bodySizeLimit := config.DefaultBodySizeLimit
	if cfg.BodySizeLimit > 0 {
		bodySizeLimit = cfg.BodySizeLimit
	}
	e.Use(middleware.BodyLimit(strconv.FormatInt(bodySizeLimit, 10)))

	// Public routes
	e.GET("/health", handler.Health)
	if cfg.MetricsEnabled {
		metricsPath := "/metrics"
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal attacks
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		gatherer := cfg.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET(metricsPath, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API routes
	e.POST("/v1/ask", handler.Ask)

	resume := e.Group("/resume")
	resume.POST("/generate-summary", handler.GenerateSummary)
	resume.POST("/validate-field", handler.ValidateField)
	resume.POST("/score", handler.ScoreResume)
	resume.POST("/profile-insights", handler.ProfileInsights)

	jobpost := e.Group("/jobpost")
	jobpost.POST("/generate", handler.GenerateJobPost)
	jobpost.POST("/improve", handler.ImproveJobPost)
	jobpost.POST("/extract-skills", handler.ExtractSkills)

	admin := e.Group("/admin", SharedSecretMiddleware(cfg.AdminSecret))
	admin.POST("/insights", handler.AdminInsights)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
