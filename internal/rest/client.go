// Package rest implements the generic access layer shared by every screen:
// a small set of operations that issue a request against a configurable base
// URL, decode the JSON response, and populate a caller-supplied sink. All
// failures carry typed status codes; the package never touches session state.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pkt.systems/pslog"
)

const defaultTimeout = 15 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport; used by tests.
	HTTPClient *http.Client
}

// Client performs JSON requests against the backend. The zero value is not
// usable; construct with New.
type Client struct {
	baseURL string
	http    *http.Client
	log     pslog.Logger
}

// Option adjusts a single request.
type Option func(*http.Request)

// WithAuthorization attaches the session token verbatim. The token is
// opaque; no bearer scheme is imposed on it.
func WithAuthorization(token string) Option {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", token)
		}
	}
}

// WithHeader attaches an arbitrary header.
func WithHeader(key, value string) Option {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// New constructs a Client for the given base URL.
func New(cfg Config, logger pslog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url must include scheme and host (got %q)", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Client{
		baseURL: base,
		http:    httpClient,
		log:     logger.With("base_url", base),
	}, nil
}

// FetchInto issues a GET against baseURL+path and decodes the JSON response
// into sink (a pointer to the expected shape, single record or slice). On
// any failure the sink is left untouched.
func (c *Client) FetchInto(ctx context.Context, path string, sink any, opts ...Option) error {
	return c.do(ctx, http.MethodGet, path, nil, sink, opts)
}

// CreateInto issues a POST with body serialized as JSON and decodes the
// response into sink.
func (c *Client) CreateInto(ctx context.Context, path string, body, sink any, opts ...Option) error {
	return c.do(ctx, http.MethodPost, path, body, sink, opts)
}

// UpdateInto issues a PUT with body serialized as JSON and decodes the
// response into sink.
func (c *Client) UpdateInto(ctx context.Context, path string, body, sink any, opts ...Option) error {
	return c.do(ctx, http.MethodPut, path, body, sink, opts)
}

// Delete issues a DELETE. No response body is expected.
func (c *Client) Delete(ctx context.Context, path string, opts ...Option) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body, sink any, opts []Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	log := c.log.With("method", method, "path", path)

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			log.Warn("rest encode failed", "err", err)
			return &RequestError{Op: method, Path: path, Status: StatusNetwork, Err: err}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return &RequestError{Op: method, Path: path, Status: StatusNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("rest request failed", "err", err)
		return &RequestError{Op: method, Path: path, Status: StatusNetwork, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug("rest request rejected", "status", resp.StatusCode)
		return &RequestError{Op: method, Path: path, Status: resp.StatusCode}
	}
	if sink == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(sink); err != nil {
		log.Warn("rest decode failed", "err", err)
		return &RequestError{Op: method, Path: path, Status: StatusNetwork, Err: err}
	}
	return nil
}
