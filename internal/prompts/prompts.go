// Package prompts builds completion requests for the resume, job post and
// admin endpoints.
package prompts

import (
	"fmt"
	"strings"

	"aigateway/internal/core"
)

// Target selects the provider and model for a request. Both are optional.
type Target struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

func (t Target) options(opts ...core.RequestOption) []core.RequestOption {
	return append([]core.RequestOption{core.WithProvider(t.Provider), core.WithModel(t.Model)}, opts...)
}

// lines joins non-empty lines with newlines.
func lines(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// optional formats value into format, or returns "" when value is empty.
func optional(format, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(format, value)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func yesNo(v string) string {
	if v != "" {
		return "yes"
	}
	return "no"
}
