package core

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDHeader is the header used to carry request IDs in and out of the gateway.
const RequestIDHeader = "X-Request-ID"

const requestIDKey contextKey = "request-id"

// WithRequestID returns a new context with the request ID attached.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
