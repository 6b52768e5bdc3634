// Package consoleauth provides the access-control core of the subscriber
// administration console: session persistence, credential authentication,
// pure authorization decisions, route guarding and zone-scoped data
// visibility.
//
// The package defines interfaces for the session store, the external
// auth backend and the session source; concrete implementations are
// injected via Option functions, so the core stays independent of any
// specific transport or storage.
//
// Example wiring with a Redis-backed store:
//
//	store, err := redistore.New(redisURL)
//	if err != nil {
//	    // handle
//	}
//	backend := rest.New("https://console.example.com")
//	auth := authn.New(store, backend)
//	client, err := consoleauth.NewClient(
//	    consoleauth.Config{Endpoint: "https://console.example.com"},
//	    consoleauth.WithSessionStore(store),
//	    consoleauth.WithAuthBackend(backend),
//	    consoleauth.WithSessionSource(auth),
//	)
package consoleauth

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultTokenTTL is the default expiry of the persisted session record.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Config holds connection and behavior configuration.
type Config struct {
	// Endpoint is the base URL of the console REST backend.
	Endpoint string

	// TokenTTL is how long a persisted session record lives before the
	// user must log in again. Default: 7 days.
	TokenTTL time.Duration

	// LoginPath is where route guards redirect unauthenticated
	// navigation. Default: "/login".
	LoginPath string

	// DeniedPath is where route guards redirect authenticated but
	// unauthorized navigation. Distinct from LoginPath: "forbidden" is a
	// different failure class than "not logged in". Default:
	// "/access-denied".
	DeniedPath string
}

// Client is the main entry point. Service implementations are injected
// via Option functions.
type Client struct {
	config   Config
	logger   *slog.Logger
	store    SessionStore
	backend  AuthBackend
	sessions SessionSource
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSessionStore sets the session persistence implementation.
func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

// WithAuthBackend sets the external authentication implementation.
func WithAuthBackend(b AuthBackend) Option {
	return func(c *Client) { c.backend = b }
}

// WithSessionSource sets the live session view consumed by route guards.
func WithSessionSource(s SessionSource) Option {
	return func(c *Client) { c.sessions = s }
}

// NewClient creates a new client with the given configuration and options.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.DeniedPath == "" {
		cfg.DeniedPath = "/access-denied"
	}

	c := &Client{config: cfg}
	for _, o := range opts {
		o(c)
	}
	if c.backend == nil && cfg.Endpoint == "" {
		return nil, fmt.Errorf("consoleauth: either Endpoint or an AuthBackend is required")
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.config }

// Logger returns the configured logger.
func (c *Client) Logger() *slog.Logger { return c.logger }

// Store returns the session store, or nil if not configured.
func (c *Client) Store() SessionStore { return c.store }

// Backend returns the auth backend, or nil if not configured.
func (c *Client) Backend() AuthBackend { return c.backend }

// Sessions returns the session source, or nil if not configured.
func (c *Client) Sessions() SessionSource { return c.sessions }

// Close releases all resources held by the client.
// Any injected service that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{c.store, c.backend, c.sessions}
	var firstErr error
	for _, svc := range closers {
		if cl, ok := svc.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
