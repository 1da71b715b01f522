// Package httpclient builds the one *http.Client that every provider adapter
// shares. Adapters are created per call, so connection pooling lives here.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// SDK defaults for a single completion call.
const (
	DefaultRequestTimeout        = 600 * time.Second
	DefaultResponseHeaderTimeout = 600 * time.Second
)

// Connection settings for the upstream pool. The gateway talks to at most
// two hosts, so the per-host limit equals the overall limit.
const (
	maxIdleConns        = 100
	idleConnTimeout     = 90 * time.Second
	dialTimeout         = 30 * time.Second
	keepAlive           = 30 * time.Second
	tlsHandshakeTimeout = 10 * time.Second
)

// Timeouts bounds one upstream call. Zero or negative values use the defaults.
type Timeouts struct {
	// Request covers the whole call, body included
	Request time.Duration
	// ResponseHeader is how long to wait for the provider to start answering
	ResponseHeader time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Request <= 0 {
		t.Request = DefaultRequestTimeout
	}
	if t.ResponseHeader <= 0 {
		t.ResponseHeader = DefaultResponseHeaderTimeout
	}
	return t
}

// New returns a client safe for concurrent use by all adapters.
func New(t Timeouts) *http.Client {
	t = t.withDefaults()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: keepAlive,
		}).DialContext,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConns,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: t.ResponseHeader,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   t.Request,
	}
}

// NewDefault returns a client with the SDK default timeouts.
func NewDefault() *http.Client {
	return New(Timeouts{})
}
