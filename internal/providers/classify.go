package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"aigateway/internal/core"
)

// StatusClientClosedRequest follows the nginx convention for a caller that went away.
const StatusClientClosedRequest = 499

// statusCoder is implemented by errors that carry an explicit upstream status.
type statusCoder interface {
	HTTPStatusCode() int
}

// upstreamCoder is implemented by errors that carry the provider's own error code.
type upstreamCoder interface {
	UpstreamErrorCode() string
}

// DefaultErrorCodes map provider error codes to a status. They are checked
// before the upstream HTTP status, which does not always say what happened
// (Anthropic reports overload as 529).
var DefaultErrorCodes = map[string]int{
	"insufficient_quota":  http.StatusTooManyRequests,
	"rate_limit_exceeded": http.StatusTooManyRequests,
	"rate_limit_error":    http.StatusTooManyRequests,
	"overloaded_error":    http.StatusServiceUnavailable,
}

// Rule maps a backend failure to a status code. Match receives the error and
// its lower-cased text.
type Rule struct {
	Name   string
	Match  func(err error, lowered string) bool
	Status int
}

// containsAny builds a Match that looks for any of the given lower-case fragments.
func containsAny(fragments ...string) func(error, string) bool {
	return func(_ error, lowered string) bool {
		for _, f := range fragments {
			if strings.Contains(lowered, f) {
				return true
			}
		}
		return false
	}
}

// DefaultRules are checked in order after any explicit status on the error.
// They trade precision for independence from SDK-specific error types.
var DefaultRules = []Rule{
	{
		Name:   "deadline_exceeded",
		Match:  func(err error, _ string) bool { return errors.Is(err, context.DeadlineExceeded) },
		Status: http.StatusGatewayTimeout,
	},
	{
		Name:   "client_closed",
		Match:  func(err error, _ string) bool { return errors.Is(err, context.Canceled) },
		Status: StatusClientClosedRequest,
	},
	{
		Name:   "rate_limited",
		Match:  containsAny("insufficient_quota", "error code: 429"),
		Status: http.StatusTooManyRequests,
	},
	{
		Name:   "connection",
		Match:  containsAny("connection error", "connecterror"),
		Status: http.StatusServiceUnavailable,
	},
}

// Classifier turns adapter failures into normalized gateway errors.
type Classifier struct {
	codes    map[string]int
	rules    []Rule
	fallback int
}

// NewClassifier creates a classifier. With no rules, DefaultRules are used.
// Unmatched errors classify as 400.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{codes: DefaultErrorCodes, rules: rules, fallback: http.StatusBadRequest}
}

// Status returns the status code for err. A known provider error code wins,
// then an explicit status on the error chain, then the first matching rule,
// then the fallback.
func (c *Classifier) Status(err error) int {
	var uc upstreamCoder
	if errors.As(err, &uc) {
		if code, ok := c.codes[uc.UpstreamErrorCode()]; ok {
			return code
		}
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		if code := sc.HTTPStatusCode(); code != 0 {
			return code
		}
	}

	lowered := strings.ToLower(err.Error())
	for _, rule := range c.rules {
		if rule.Match(err, lowered) {
			return rule.Status
		}
	}
	return c.fallback
}

// Classify wraps err as "<Provider> request failed: <err>" with the status from Status.
func (c *Classifier) Classify(provider Name, err error) *core.GatewayError {
	message := provider.DisplayName() + " request failed: " + err.Error()
	return core.NewUpstreamError(string(provider), c.Status(err), message, err)
}
