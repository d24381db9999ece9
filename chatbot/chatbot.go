// Package chatbot talks to the symptom triage service. The service keeps the
// conversation in a cookie session, so one Client is one conversation.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-hospital-client/gateway"
	"github.com/rs/zerolog"
)

const (
	startPath   = "/chatbot/start"
	respondPath = "/chatbot/respond"

	defaultTimeout = 15 * time.Second
)

var ErrNotStarted = errors.New("conversation not started")

// Reply is one bot turn. Finished is set on the final diagnosis, after which
// the service has forgotten the conversation.
type Reply struct {
	Message  string `json:"message"`
	Finished bool   `json:"finished"`
}

type respondRequest struct {
	Input string `json:"input"`
}

type Client struct {
	api *gateway.Client

	mu      sync.Mutex
	started bool
}

type Option func(*options)

type options struct {
	gateway []gateway.Option
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.gateway = append(o.gateway, gateway.WithLogger(l)) }
}

// WithGatewayOptions passes extra options to the underlying gateway client.
func WithGatewayOptions(opts ...gateway.Option) Option {
	return func(o *options) { o.gateway = append(o.gateway, opts...) }
}

// New returns a client for the chatbot service at baseURL with its own
// cookie jar.
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("[chatbot New] cookie jar: %w", err)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	gwOpts := append([]gateway.Option{gateway.WithHTTPClient(&http.Client{Jar: jar, Timeout: defaultTimeout})}, o.gateway...)
	api, err := gateway.New(baseURL, gwOpts...)
	if err != nil {
		return nil, fmt.Errorf("[chatbot New] %w", err)
	}
	return &Client{api: api}, nil
}

// Start opens a new conversation, discarding any previous one.
func (c *Client) Start(ctx context.Context) (Reply, error) {
	var out Reply
	if err := c.api.Post(ctx, startPath, struct{}{}, &out); err != nil {
		return Reply{}, err
	}
	c.setStarted(true)
	return out, nil
}

// Respond sends one user message. The service answering 400 means it has
// no conversation for this client.
func (c *Client) Respond(ctx context.Context, input string) (Reply, error) {
	if !c.Started() {
		return Reply{}, ErrNotStarted
	}
	var out Reply
	err := c.api.Post(ctx, respondPath, respondRequest{Input: strings.TrimSpace(input)}, &out)
	if gateway.IsValidation(err) {
		c.setStarted(false)
		return Reply{}, fmt.Errorf("[chatbot Respond] %w: %v", ErrNotStarted, err)
	}
	if err != nil {
		return Reply{}, err
	}
	if out.Finished {
		c.setStarted(false)
	}
	return out, nil
}

func (c *Client) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *Client) setStarted(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = v
}
