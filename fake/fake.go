// Package fake provides in-memory implementations of the consoleauth
// interfaces for testing.
//
// Use fake.NewClient() in unit tests to avoid network calls and external
// dependencies. The fake backend's credential table stores role and zone
// as raw values (string or number), exactly as a real backend might send
// them, so boundary coercion gets exercised.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/ispkit/consoleauth"
	"github.com/ispkit/consoleauth/authn"
	"github.com/ispkit/consoleauth/store/memstore"
)

// account is one row of the fake credential table.
type account struct {
	password    string
	role        any
	zone        any
	permissions []string
	token       string
}

// Backend implements consoleauth.AuthBackend in memory.
type Backend struct {
	mu       sync.RWMutex
	accounts map[string]*account
	reports  []string

	// FailLogin, when set, makes Login fail with this error regardless
	// of credentials. Use it to simulate an unreachable backend.
	FailLogin error

	// FailReport, when set, makes ReportError fail. The authenticator
	// must swallow it.
	FailReport error
}

var _ consoleauth.AuthBackend = (*Backend)(nil)

// Option configures the fake backend.
type Option func(*Backend)

// WithUser adds an account. role and zone may be ints, floats or
// numeric strings — they are forwarded raw, like a real backend would.
// Pass nil to omit the field from the login response.
func WithUser(username, password string, role, zone any) Option {
	return func(b *Backend) {
		b.accounts[username] = &account{password: password, role: role, zone: zone}
	}
}

// WithPermissions sets the permission strings returned for a user.
func WithPermissions(username string, perms ...string) Option {
	return func(b *Backend) {
		if a, ok := b.accounts[username]; ok {
			a.permissions = perms
		}
	}
}

// WithToken makes the backend issue a fixed token for a user instead of
// leaving token synthesis to the authenticator.
func WithToken(username, token string) Option {
	return func(b *Backend) {
		if a, ok := b.accounts[username]; ok {
			a.token = token
		}
	}
}

// NewBackend creates a fake auth backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{accounts: make(map[string]*account)}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Login checks the credential table.
func (b *Backend) Login(_ context.Context, username, password string) (*consoleauth.LoginResponse, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.FailLogin != nil {
		return nil, b.FailLogin
	}
	a, ok := b.accounts[username]
	if !ok || a.password != password {
		return nil, fmt.Errorf("%w: unknown user or wrong password", consoleauth.ErrCredentialsInvalid)
	}
	return &consoleauth.LoginResponse{
		Message:     "Login successful",
		Token:       a.token,
		Role:        a.role,
		Zone:        a.zone,
		Permissions: a.permissions,
	}, nil
}

// Logout is a no-op, like the real backend's client-only sign-out.
func (b *Backend) Logout(_ context.Context) error { return nil }

// ReportError records the message for later inspection.
func (b *Backend) ReportError(_ context.Context, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailReport != nil {
		return b.FailReport
	}
	b.reports = append(b.reports, message)
	return nil
}

// Reports returns the messages sent to the error sink so far.
func (b *Backend) Reports() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.reports...)
}

// NewClient creates a *consoleauth.Client with an in-memory store, a
// fake backend and a live authenticator, ready for tests.
func NewClient(opts ...Option) (*consoleauth.Client, *authn.Authenticator, *Backend) {
	backend := NewBackend(opts...)
	store := memstore.New()
	auth := authn.New(store, backend)

	client, _ := consoleauth.NewClient(
		consoleauth.Config{Endpoint: "fake://localhost"},
		consoleauth.WithSessionStore(store),
		consoleauth.WithAuthBackend(backend),
		consoleauth.WithSessionSource(auth),
	)
	return client, auth, backend
}
