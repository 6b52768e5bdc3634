package consoleauth

import "context"

// SessionStore persists the session across process restarts.
// Implementations: store/redistore (Redis), store/memstore (testing).
//
// The persisted record carries both token and profile atomically: no
// observer ever sees a token without its profile or vice versa.
type SessionStore interface {
	// Restore reads the persisted session. A missing or expired record
	// yields an empty Session and a nil error. A corrupt record is
	// removed and likewise yields an empty Session (self-healing);
	// Restore never fails because of malformed persisted data.
	Restore(ctx context.Context) (Session, error)

	// Save writes the token/profile pair with the store's expiry policy.
	Save(ctx context.Context, token string, profile UserProfile) error

	// Clear removes the persisted session. Safe to call when already
	// empty.
	Clear(ctx context.Context) error
}

// AuthBackend is the external authentication collaborator.
// Implementations: rest/ (HTTP), fake/ (testing).
type AuthBackend interface {
	// Login exchanges credentials for the raw login payload. A backend
	// rejection surfaces as ErrCredentialsInvalid; an unreachable
	// backend as ErrBackendUnreachable.
	Login(ctx context.Context, username, password string) (*LoginResponse, error)

	// Logout performs the backend's sign-out operation, if it has one.
	// Callers treat failures as best-effort.
	Logout(ctx context.Context) error

	// ReportError sends a message to the backend's error sink.
	// Fire-and-forget: callers swallow its failures.
	ReportError(ctx context.Context, message string) error
}

// SessionSource exposes a read-only view of the current session.
// Implemented by authn.Authenticator; consumed by the route guards.
type SessionSource interface {
	// Current returns a snapshot of the session. The snapshot's Loading
	// flag reflects any in-flight login/logout at the time of the call.
	Current() Session
}
