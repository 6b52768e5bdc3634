// Package redistore persists the console session in Redis.
//
// Token and profile are written as one atomic record under a single key
// with its own expiry, so the pair can never desynchronize: a restore
// either sees both or neither. A record that fails to deserialize is
// deleted on the spot and reported as "no session" — the store self-heals
// against corruption instead of surfacing it.
package redistore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"

	"github.com/ispkit/consoleauth"
)

// DefaultKey is the Redis key holding the session record.
const DefaultKey = "consoleauth:session"

// record is the persisted session layout.
type record struct {
	Token   string                  `json:"token"`
	Profile consoleauth.UserProfile `json:"profile"`
}

// Store implements consoleauth.SessionStore backed by Redis.
type Store struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	sf singleflight.Group
}

var _ consoleauth.SessionStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the session record expiry. Default: consoleauth.DefaultTokenTTL.
func WithTTL(d time.Duration) Option {
	return func(s *Store) { s.ttl = d }
}

// WithKey sets the Redis key for the session record. Useful when several
// consoles share one Redis.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New creates a Redis-backed session store and verifies connectivity.
func New(redisURL string, opts ...Option) (*Store, error) {
	o, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("consoleauth/redistore: invalid redis URL: %w", err)
	}
	o.DialTimeout = 5 * time.Second
	o.ReadTimeout = 3 * time.Second
	o.WriteTimeout = 3 * time.Second

	client := redis.NewClient(o)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("consoleauth/redistore: connect: %w", err)
	}

	s := &Store{
		client: client,
		key:    DefaultKey,
		ttl:    consoleauth.DefaultTokenTTL,
	}
	for _, op := range opts {
		op(s)
	}
	return s, nil
}

// Restore reads the persisted session. Concurrent restores are collapsed
// into a single Redis round trip.
func (s *Store) Restore(ctx context.Context) (consoleauth.Session, error) {
	v, err, _ := s.sf.Do("restore", func() (interface{}, error) {
		return s.restore(ctx)
	})
	if err != nil {
		return consoleauth.Session{}, err
	}
	return v.(consoleauth.Session), nil
}

func (s *Store) restore(ctx context.Context) (consoleauth.Session, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return consoleauth.Session{}, nil
	}
	if err != nil {
		return consoleauth.Session{}, &consoleauth.PersistenceError{Op: "restore", Err: err}
	}

	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil || rec.Token == "" {
		// Corrupt or half-written record: remove it and report no session.
		s.client.Del(ctx, s.key)
		return consoleauth.Session{}, nil
	}

	p := rec.Profile
	return consoleauth.Session{Token: rec.Token, User: &p}, nil
}

// Save writes the token/profile pair as one record with the store's TTL.
func (s *Store) Save(ctx context.Context, token string, profile consoleauth.UserProfile) error {
	data, err := json.Marshal(record{Token: token, Profile: profile})
	if err != nil {
		return &consoleauth.PersistenceError{Op: "save", Err: err}
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return &consoleauth.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Clear removes the session record. Deleting a missing key is not an
// error, so Clear is idempotent.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return &consoleauth.PersistenceError{Op: "clear", Err: err}
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
