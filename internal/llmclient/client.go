// Package llmclient provides a base HTTP client for LLM providers with:
// - Request marshaling/unmarshaling
// - Typed upstream failures (status errors, connection errors)
// - Observability hooks around every upstream call
//
// The client makes exactly one attempt per call. Retrying is left to callers.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"aigateway/internal/httpclient"
)

// Config holds configuration for the LLM client
type Config struct {
	// ProviderName identifies the provider for hooks and error messages
	ProviderName string

	// BaseURL is the API base URL
	BaseURL string

	// Hooks are invoked around every upstream request
	Hooks Hooks
}

// RequestInfo describes an upstream request about to be sent.
type RequestInfo struct {
	Provider string
	Model    string
	Method   string
	Endpoint string
}

// ResponseInfo describes the outcome of an upstream request.
// StatusCode is zero when no HTTP response was received.
type ResponseInfo struct {
	Provider   string
	Model      string
	Endpoint   string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Hooks allow observers (metrics, tracing) to wrap upstream requests.
// Both fields are optional.
type Hooks struct {
	OnRequestStart func(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd   func(ctx context.Context, info ResponseInfo)
}

// HeaderSetter is a function that sets headers on an HTTP request
type HeaderSetter func(req *http.Request)

// Client is a base HTTP client for LLM providers
type Client struct {
	httpClient   *http.Client
	config       Config
	headerSetter HeaderSetter
}

// New creates a new LLM client. If httpClient is nil a default client is used.
func New(httpClient *http.Client, config Config, headerSetter HeaderSetter) *Client {
	if httpClient == nil {
		httpClient = httpclient.NewDefault()
	}
	return &Client{
		httpClient:   httpClient,
		config:       config,
		headerSetter: headerSetter,
	}
}

// Request represents an HTTP request to be made
type Request struct {
	Method   string
	Endpoint string
	Body     interface{} // Will be JSON marshaled if not nil
	// Model is reported to hooks only
	Model string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// StatusError is returned when the upstream answered with a non-2xx status.
// Its text mirrors what the official SDKs print ("Error code: 429 - {...}").
type StatusError struct {
	Provider   string
	StatusCode int
	Body       []byte
	// Code is the provider's error code or type from an {"error":{...}}
	// envelope, empty when the body has none.
	Code string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error code: %d - %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// HTTPStatusCode returns the upstream status code.
func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// UpstreamErrorCode returns the provider's machine-readable error code.
func (e *StatusError) UpstreamErrorCode() string {
	return e.Code
}

// ConnectionError is returned when no HTTP response could be obtained.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "Connection error: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Do executes a request and unmarshals the response body into result
func (c *Client) Do(ctx context.Context, req Request, result interface{}) error {
	resp, err := c.DoRaw(ctx, req)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", c.config.ProviderName, err)
		}
	}

	return nil
}

// DoRaw executes a single request and returns the raw response
func (c *Client) DoRaw(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if c.config.Hooks.OnRequestStart != nil {
		ctx = c.config.Hooks.OnRequestStart(ctx, RequestInfo{
			Provider: c.config.ProviderName,
			Model:    req.Model,
			Method:   req.Method,
			Endpoint: req.Endpoint,
		})
	}

	resp, err := c.doRequest(ctx, req)

	if c.config.Hooks.OnRequestEnd != nil {
		info := ResponseInfo{
			Provider: c.config.ProviderName,
			Model:    req.Model,
			Endpoint: req.Endpoint,
			Duration: time.Since(start),
			Err:      err,
		}
		if resp != nil {
			info.StatusCode = resp.StatusCode
		}
		c.config.Hooks.OnRequestEnd(ctx, info)
	}

	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp)
	}
	return resp, nil
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := c.config.BaseURL + req.Endpoint

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// Apply provider-specific headers
	if c.headerSetter != nil {
		c.headerSetter(httpReq)
	}

	return httpReq, nil
}

func (c *Client) statusError(resp *Response) *StatusError {
	se := &StatusError{
		Provider:   c.config.ProviderName,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
	if gjson.ValidBytes(resp.Body) {
		// OpenAI puts the specific reason in "code", Anthropic only has "type".
		errObj := gjson.GetBytes(resp.Body, "error")
		se.Code = errObj.Get("code").String()
		if se.Code == "" {
			se.Code = errObj.Get("type").String()
		}
	}
	return se
}
