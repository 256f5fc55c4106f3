package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	apperrors "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/errors"
)

// Config holds HTTP client configuration.
type Config struct {
	// Name labels metrics emitted by this client.
	Name            string
	Timeout         time.Duration
	MaxConnsPerHost int
}

// DefaultConfig returns sensible defaults for the HTTP client.
func DefaultConfig(name string) Config {
	return Config{
		Name:            name,
		Timeout:         30 * time.Second,
		MaxConnsPerHost: 100,
	}
}

// Client wraps http.Client with connection pooling and per-request metrics.
//
// Requests are attempted exactly once: a failure is terminal for that attempt
// and surfaces to the caller, which decides whether to resubmit.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a pooled HTTP client. The optional wrap functions decorate the
// base transport, innermost first; this is how cross-cutting request
// middleware (auth injection, session teardown) is attached.
func New(cfg Config, wrap ...func(http.RoundTripper) http.RoundTripper) *Client {
	var rt http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	for _, w := range wrap {
		rt = w(rt)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}
}

// Do executes the request once, recording request metrics. Transport-level
// failures (no response at all) are reported as ErrUnreachable.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(c.config.Name, req.Method, req.URL.Path, "error", time.Since(start))
		if ctx.Err() != nil {
			return nil, fmt.Errorf("http request: %w", ctx.Err())
		}
		return nil, apperrors.Unreachable(err)
	}

	observeRequest(c.config.Name, req.Method, req.URL.Path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
	return resp, nil
}
