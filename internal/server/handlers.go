// Package server provides HTTP handlers and server setup for the AI gateway.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"aigateway/internal/core"
	"aigateway/internal/prompts"
	"aigateway/internal/structured"
)

// Completer answers a completion request with text.
type Completer interface {
	Ask(ctx context.Context, req core.CompletionRequest) (string, error)
}

// Handler holds the HTTP handlers
type Handler struct {
	completer Completer
}

// NewHandler creates a new handler with the given completer
func NewHandler(completer Completer) *Handler {
	return &Handler{
		completer: completer,
	}
}

// AskRequest is the body of POST /v1/ask. Omitted options keep their defaults.
type AskRequest struct {
	SystemPrompt string   `json:"system_prompt"`
	UserPrompt   string   `json:"user_prompt"`
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	JSONMode     bool     `json:"json_mode,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

func (r *AskRequest) completionRequest() core.CompletionRequest {
	opts := []core.RequestOption{
		core.WithProvider(r.Provider),
		core.WithModel(r.Model),
		core.WithJSONMode(r.JSONMode),
	}
	if r.MaxTokens != nil {
		opts = append(opts, core.WithMaxTokens(*r.MaxTokens))
	}
	if r.Temperature != nil {
		opts = append(opts, core.WithTemperature(*r.Temperature))
	}
	return core.NewCompletionRequest(r.SystemPrompt, r.UserPrompt, opts...)
}

// Ask handles POST /v1/ask
func (h *Handler) Ask(c echo.Context) error {
	var req AskRequest
	if err := bind(c, &req); err != nil {
		return handleError(c, err)
	}

	text, err := h.completer.Ask(c.Request().Context(), req.completionRequest())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"text": text})
}

// GenerateSummary handles POST /resume/generate-summary
func (h *Handler) GenerateSummary(c echo.Context) error {
	var in prompts.ResumeSummaryInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}
	return h.respondText(c, prompts.ResumeSummary(in), "summary")
}

// ValidateField handles POST /resume/validate-field
func (h *Handler) ValidateField(c echo.Context) error {
	var in prompts.ValidateFieldInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}
	return h.respondJSON(c, prompts.ValidateField(in))
}

// ScoreResume handles POST /resume/score
func (h *Handler) ScoreResume(c echo.Context) error {
	var in prompts.ScoreInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}
	return h.respondJSON(c, prompts.Score(in))
}

// ProfileInsights handles POST /resume/profile-insights
func (h *Handler) ProfileInsights(c echo.Context) error {
	var in prompts.ProfileInsightsInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}
	return h.respondJSON(c, prompts.ProfileInsights(in))
}

// GenerateJobPost handles POST /jobpost/generate
func (h *Handler) GenerateJobPost(c echo.Context) error {
	var in prompts.JobPostInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}

	text, err := h.completer.Ask(c.Request().Context(), prompts.JobPost(in))
	if err != nil {
		return handleError(c, err)
	}
	post := strings.TrimSpace(text)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"job_post":   post,
		"word_count": prompts.WordCount(post),
	})
}

// ImproveJobPost handles POST /jobpost/improve
func (h *Handler) ImproveJobPost(c echo.Context) error {
	var in prompts.ImproveJobPostInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}
	return h.respondText(c, prompts.ImproveJobPost(in), "improved_post")
}

// ExtractSkills handles POST /jobpost/extract-skills
func (h *Handler) ExtractSkills(c echo.Context) error {
	var in prompts.ExtractSkillsInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}
	return h.respondJSON(c, prompts.ExtractSkills(in))
}

// AdminInsights handles POST /admin/insights
func (h *Handler) AdminInsights(c echo.Context) error {
	var in prompts.AdminInsightsInput
	if err := bind(c, &in); err != nil {
		return handleError(c, err)
	}
	req, err := prompts.AdminInsights(in)
	if err != nil {
		return handleError(c, core.NewInvalidRequestError(err.Error(), err))
	}
	return h.respondJSONWith(c, req, structured.InvalidResponseMessage)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// respondText returns the trimmed completion under key.
func (h *Handler) respondText(c echo.Context, req core.CompletionRequest, key string) error {
	text, err := h.completer.Ask(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{key: strings.TrimSpace(text)})
}

// respondJSON decodes the completion and returns it as the response body.
func (h *Handler) respondJSON(c echo.Context, req core.CompletionRequest) error {
	return h.respondJSONWith(c, req, structured.InvalidJSONMessage)
}

// respondJSONWith is respondJSON with the message used when decoding fails.
func (h *Handler) respondJSONWith(c echo.Context, req core.CompletionRequest, invalidMessage string) error {
	text, err := h.completer.Ask(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	v, err := structured.DecodeWithMessage(text, invalidMessage)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return core.NewInvalidRequestError("invalid request body: "+err.Error(), err)
	}
	return nil
}

// handleError converts gateway errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
