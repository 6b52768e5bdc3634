// Package memstore provides an in-memory SessionStore for tests and for
// deployments that do not need the session to survive a restart.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/ispkit/consoleauth"
)

// Store implements consoleauth.SessionStore in memory.
type Store struct {
	ttl time.Duration

	mu      sync.Mutex
	token   string
	profile consoleauth.UserProfile
	expires time.Time
	present bool
}

var _ consoleauth.SessionStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the session record expiry. Default: consoleauth.DefaultTokenTTL.
func WithTTL(d time.Duration) Option {
	return func(s *Store) { s.ttl = d }
}

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{ttl: consoleauth.DefaultTokenTTL}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore returns the saved session, or an empty one if nothing is saved
// or the record has expired.
func (s *Store) Restore(_ context.Context) (consoleauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present || time.Now().After(s.expires) {
		s.reset()
		return consoleauth.Session{}, nil
	}
	p := s.profile
	return consoleauth.Session{Token: s.token, User: &p}, nil
}

// Save stores the token/profile pair with the configured expiry.
func (s *Store) Save(_ context.Context, token string, profile consoleauth.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.profile = profile
	s.expires = time.Now().Add(s.ttl)
	s.present = true
	return nil
}

// Clear removes the saved session. Idempotent.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Store) reset() {
	s.token = ""
	s.profile = consoleauth.UserProfile{}
	s.present = false
}
