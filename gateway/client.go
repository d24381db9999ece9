// Package gateway is the single outbound path to the hospital backend. It turns
// a method, path and payload into one HTTP request, attaches the bearer token
// of the current session when there is one, and classifies failures into the
// small taxonomy in errors.go. It never retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    oauth2.TokenSource
	log       zerolog.Logger
	userAgent string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, e.g. to add a cookie jar.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource sets where bearer tokens come from. A source that returns an
// error means "no credential" and the request is sent unauthenticated.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[gateway New] invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: defaultTimeout},
		log:       log.Logger,
		userAgent: "hms-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues one request. body is JSON encoded when non-nil; a successful JSON
// response is decoded into out unchanged when out is non-nil. Every failure is
// returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	target, err := c.resolve(path)
	if err != nil {
		return &Error{Kind: KindUnknown, Method: method, Path: path, Err: err}
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindUnknown, Method: method, Path: path, Err: fmt.Errorf("encode request: %w", err)}
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return &Error{Kind: KindUnknown, Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	c.authorize(ctx, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Dur("latency", time.Since(start)).
			Msg("request failed")
		return &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(method, path, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindUnknown, Method: method, Path: path, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if tok, ok := ctx.Value(accessTokenKey{}).(string); ok && tok != "" {
		(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
		return
	}
	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.Token()
	if err != nil || tok == nil || tok.AccessToken == "" {
		return
	}
	tok.SetAuthHeader(req)
}

// resolve appends path (which may carry a query string) to the base URL,
// keeping any path prefix the base URL has.
func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return "", fmt.Errorf("path %q must be relative to the base url", path)
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + ref.Path
	u.RawPath = ""
	if ref.RawPath != "" {
		u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + ref.RawPath
	}
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

type accessTokenKey struct{}

// WithAccessToken makes calls using ctx send token instead of asking the
// client's token source. Login uses it to fetch the user before a session
// exists.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}
