// Package authn turns credentials into sessions.
//
// The Authenticator owns the single in-memory Session: every other
// component reads it (directly or through the SessionSource view), but
// only this package invokes Save and Clear on the session store. Login
// and Logout never run concurrently; the session's Loading flag is the
// mutual-exclusion signal that route guards observe as a pending
// decision.
package authn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ispkit/consoleauth"
	"github.com/ispkit/consoleauth/audit"
	"github.com/ispkit/consoleauth/metrics"
)

// reportTimeout bounds the fire-and-forget error notification.
const reportTimeout = 5 * time.Second

// Authenticator implements the credential exchange and owns the session.
type Authenticator struct {
	store   consoleauth.SessionStore
	backend consoleauth.AuthBackend
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Logger

	fallbackZone int

	mu       sync.Mutex
	session  consoleauth.Session
	inflight bool
}

var _ consoleauth.SessionSource = (*Authenticator)(nil)

// Result is the outcome of a successful login.
type Result struct {
	Session consoleauth.Session

	// Durable is false when the session could not be persisted: the user
	// is logged in for this process lifetime only and will have to log
	// in again after a restart.
	Durable bool
}

// Option configures the Authenticator.
type Option func(*Authenticator)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) { a.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Authenticator) { a.metrics = m }
}

// WithAudit sets the audit logger for login/logout events.
func WithAudit(l *audit.Logger) Option {
	return func(a *Authenticator) { a.audit = l }
}

// WithLegacyZoneDefault restores the historical behavior of assigning
// the global zone (1) to users whose login response omits a zone. The
// default is the least-privileged ZoneUnassigned; only enable this while
// migrating consoles whose backends never send id_zone.
func WithLegacyZoneDefault() Option {
	return func(a *Authenticator) { a.fallbackZone = consoleauth.ZoneGlobal }
}

// New creates an Authenticator over the given store and backend.
func New(store consoleauth.SessionStore, backend consoleauth.AuthBackend, opts ...Option) *Authenticator {
	a := &Authenticator{
		store:        store,
		backend:      backend,
		logger:       slog.Default(),
		metrics:      metrics.New(false),
		fallbackZone: consoleauth.ZoneUnassigned,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Current returns a snapshot of the session. The Loading flag reflects
// any in-flight login or logout at the time of the call.
func (a *Authenticator) Current() consoleauth.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Authenticator) snapshotLocked() consoleauth.Session {
	s := consoleauth.Session{Token: a.session.Token, Loading: a.inflight}
	if a.session.User != nil {
		u := *a.session.User
		s.User = &u
	}
	return s
}

// Restore populates the in-memory session from the store, typically once
// at startup. A missing, expired or corrupt record yields an empty
// session; only a store that is actually unreachable returns an error.
func (a *Authenticator) Restore(ctx context.Context) (consoleauth.Session, error) {
	sess, err := a.store.Restore(ctx)
	if err != nil {
		a.metrics.RecordRestore("error")
		a.metrics.RecordStoreFailure("restore")
		return consoleauth.Session{}, err
	}
	if sess.Authenticated() {
		a.metrics.RecordRestore("hit")
	} else {
		a.metrics.RecordRestore("miss")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = sess
	return a.snapshotLocked(), nil
}

// Login exchanges credentials for a session.
//
// On backend rejection or transport failure nothing is saved, any
// pre-existing session stays untouched, and the failure is forwarded to
// the backend's error sink without ever masking the original error.
//
// The exchange runs on a context detached from the caller's
// cancellation: navigating away mid-login does not abandon the request,
// and its eventual completion still settles the session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Result, error) {
	if err := a.begin(); err != nil {
		a.metrics.RecordLoginFailure("inflight")
		return Result{}, err
	}

	ctx = context.WithoutCancel(ctx)

	resp, err := a.backend.Login(ctx, username, password)
	if err != nil {
		a.settle(func() {}) // leave the existing session alone
		a.recordLoginFailure(username, err)
		return Result{}, err
	}

	profile := consoleauth.ProfileFromResponse(username, resp, a.fallbackZone)
	token := resp.Token
	if token == "" {
		// The backend issued no token; substitute a session identifier
		// unique per login attempt.
		token = fmt.Sprintf("user_%s_%s", username, uuid.NewString())
	}

	durable := true
	if err := a.store.Save(ctx, token, profile); err != nil {
		// Logged in against the backend but not persisted: keep the
		// session for this process lifetime only.
		durable = false
		a.metrics.RecordStoreFailure("save")
		a.logger.Warn("session not persisted, login is in-memory only",
			"username", username, "error", err)
	}

	var snapshot consoleauth.Session
	a.settle(func() {
		a.session = consoleauth.Session{Token: token, User: &profile}
		snapshot = a.snapshotLocked()
	})

	a.metrics.RecordLogin()
	if a.audit != nil {
		a.audit.Log(audit.Event{
			Username: username,
			Role:     profile.Role,
			Zone:     profile.Zone,
			Action:   audit.ActionLogin,
			Result:   "success",
		})
	}
	return Result{Session: snapshot, Durable: durable}, nil
}

// Logout signs the user out. The backend call is best-effort; local
// cleanup is unconditional, so calling Logout when already logged out is
// a no-op success.
func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.begin(); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)

	var username string
	a.mu.Lock()
	if a.session.User != nil {
		username = a.session.User.Username
	}
	a.mu.Unlock()

	if err := a.backend.Logout(ctx); err != nil {
		a.logger.Warn("backend sign-out failed, clearing local session anyway", "error", err)
	}

	clearErr := a.store.Clear(ctx)
	if clearErr != nil {
		a.metrics.RecordStoreFailure("clear")
		a.logger.Warn("persisted session not cleared", "error", clearErr)
	}

	a.settle(func() {
		a.session = consoleauth.Session{}
	})

	if a.audit != nil {
		a.audit.Log(audit.Event{
			Username: username,
			Action:   audit.ActionLogout,
			Result:   "success",
		})
	}
	return clearErr
}

// begin marks an operation in flight, failing if one already is.
func (a *Authenticator) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight {
		return consoleauth.ErrLoginInFlight
	}
	a.inflight = true
	return nil
}

// settle applies a session mutation and ends the in-flight operation in
// one step, so observers never see a half-updated session.
func (a *Authenticator) settle(apply func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	apply()
	a.inflight = false
}

// recordLoginFailure classifies the failure, notifies the backend error
// sink fire-and-forget, and emits metrics and audit events. The
// notification's own failure is swallowed so it can never mask the
// original login error.
func (a *Authenticator) recordLoginFailure(username string, loginErr error) {
	reason := "transport"
	if errors.Is(loginErr, consoleauth.ErrCredentialsInvalid) {
		reason = "credentials"
	}
	a.metrics.RecordLoginFailure(reason)
	a.logger.Info("login failed", "username", username, "reason", reason, "error", loginErr)

	if a.audit != nil {
		a.audit.Log(audit.Event{
			Username: username,
			Action:   audit.ActionLogin,
			Result:   "failure",
			Error:    loginErr.Error(),
		})
	}

	msg := loginErr.Error()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		if err := a.backend.ReportError(ctx, msg); err != nil {
			a.logger.Debug("error report not delivered", "error", err)
		}
	}()
}
