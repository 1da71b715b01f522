// Package core provides core types and interfaces for the AI gateway.
package core

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeConfiguration indicates a missing provider credential (400)
	ErrorTypeConfiguration ErrorType = "configuration_error"
	// ErrorTypeUnsupportedProvider indicates a provider name outside the supported set (400)
	ErrorTypeUnsupportedProvider ErrorType = "unsupported_provider_error"
	// ErrorTypeRateLimit indicates a quota or rate limit signal from upstream (429)
	ErrorTypeRateLimit ErrorType = "rate_limit_error"
	// ErrorTypeUpstreamUnavailable indicates the backend could not be reached (503)
	ErrorTypeUpstreamUnavailable ErrorType = "upstream_unavailable_error"
	// ErrorTypeUpstreamRequest indicates any other backend failure (400 unless upstream said otherwise)
	ErrorTypeUpstreamRequest ErrorType = "upstream_request_error"
	// ErrorTypeMalformedResponse indicates JSON-mode output that could not be parsed (500)
	ErrorTypeMalformedResponse ErrorType = "malformed_response_error"
	// ErrorTypeInvalidRequest indicates a client error before reaching the gateway (400)
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
)

// GatewayError is the single normalized error shape surfaced to every caller.
// Message is reported verbatim; Err keeps the original cause for logs only.
type GatewayError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Provider   string    `json:"provider,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return e.Message
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeConfiguration, ErrorTypeUnsupportedProvider, ErrorTypeUpstreamRequest, ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *GatewayError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewConfigurationError reports a missing credential for a provider (400).
func NewConfigurationError(provider, envName string) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeConfiguration,
		Message:    fmt.Sprintf("%s is missing. Set it in the environment or .env", envName),
		StatusCode: http.StatusBadRequest,
		Provider:   provider,
	}
}

// NewUnsupportedProviderError reports a provider name outside the supported set (400).
func NewUnsupportedProviderError(name string) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeUnsupportedProvider,
		Message:    "Unsupported provider. Use 'openai' or 'claude'.",
		StatusCode: http.StatusBadRequest,
		Err:        fmt.Errorf("unsupported provider %q", name),
	}
}

// NewUpstreamError wraps a failed backend call. The type follows the status:
// 429 is a rate limit, 503 is an unreachable upstream, everything else is a
// request error carrying the status verbatim.
func NewUpstreamError(provider string, statusCode int, message string, err error) *GatewayError {
	errType := ErrorTypeUpstreamRequest
	switch statusCode {
	case http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
	case http.StatusServiceUnavailable:
		errType = ErrorTypeUpstreamUnavailable
	}
	return &GatewayError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Provider:   provider,
		Err:        err,
	}
}

// NewMalformedResponseError reports JSON-mode output that failed to parse (500).
func NewMalformedResponseError(message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeMalformedResponse,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}
