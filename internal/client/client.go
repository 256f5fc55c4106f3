// Package client is the typed HomeFix API client. It owns request shaping,
// response adaptation and error translation; the auth concerns live in the
// transport it is built on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/session"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/transport"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/httpclient"
)

// Doer executes a single HTTP request.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds client construction options.
type Config struct {
	BaseURL         string
	PublicAssetBase string
	Timeout         time.Duration
	EnableBreaker   bool
}

// Client talks to the HomeFix backend. All calls on authenticated paths go
// through the auth transport; presigned uploads go through a plain client
// because the storage endpoint must not receive the API bearer token.
type Client struct {
	base      *url.URL
	assetBase string
	api       Doer
	uploads   Doer
	sessions  *session.Store
	logger    *slog.Logger
}

// New builds a client over the given session store. The navigator receives
// forced redirects on session invalidation; it may be nil in headless use.
func New(cfg Config, sessions *session.Store, nav transport.Navigator, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	hcCfg := httpclient.DefaultConfig("homefix-api")
	if cfg.Timeout > 0 {
		hcCfg.Timeout = cfg.Timeout
	}

	authWrap := func(rt http.RoundTripper) http.RoundTripper {
		return &transport.AuthTransport{
			Base:     rt,
			Tokens:   sessions,
			Sessions: sessions,
			Nav:      nav,
			Logger:   logger,
		}
	}

	var api Doer = httpclient.New(hcCfg, authWrap)
	if cfg.EnableBreaker {
		api = httpclient.NewWithBreaker(
			api.(*httpclient.Client),
			httpclient.DefaultCircuitBreakerConfig("homefix-api"),
			logger,
		)
	}

	uploadCfg := httpclient.DefaultConfig("homefix-uploads")
	if cfg.Timeout > 0 {
		uploadCfg.Timeout = cfg.Timeout
	}

	return &Client{
		base:      base,
		assetBase: strings.TrimRight(cfg.PublicAssetBase, "/"),
		api:       api,
		uploads:   httpclient.New(uploadCfg),
		sessions:  sessions,
		logger:    logger,
	}, nil
}

// Sessions exposes the session store backing this client.
func (c *Client) Sessions() *session.Store {
	return c.sessions
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON executes the request, translates non-2xx statuses into the error
// taxonomy, and decodes a successful body into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.api.Do(ctx, req)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp)
	}

	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// messageBody is the {"message": "..."} acknowledgment several endpoints
// return on success.
type messageBody struct {
	Message string `json:"message"`
}

// isEmailExistsMessage matches the duplicate-email wording across backend
// revisions (English and Spanish).
func isEmailExistsMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "exist") || strings.Contains(lower, "ya existe")
}
