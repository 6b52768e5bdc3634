package consoleauth

import (
	"errors"
	"fmt"
)

// Error taxonomy for authentication operations. The Authorization
// Evaluator itself never returns errors — absent or malformed input maps
// to a deny decision, never to a failure.
var (
	// ErrCredentialsInvalid means the backend rejected the login. A
	// pre-existing session is left untouched.
	ErrCredentialsInvalid = errors.New("consoleauth: invalid credentials")

	// ErrBackendUnreachable means the login could not reach the backend
	// at all. Also non-destructive to an existing session.
	ErrBackendUnreachable = errors.New("consoleauth: auth backend unreachable")

	// ErrLoginInFlight means a login or logout is already in progress;
	// the two never run concurrently against the same session.
	ErrLoginInFlight = errors.New("consoleauth: authentication already in flight")
)

// PersistenceError wraps a session-store failure. A login that succeeded
// against the backend but failed to persist is still a logged-in session
// for the current process lifetime; callers detect the degraded case via
// errors.As.
type PersistenceError struct {
	Op  string // "restore", "save" or "clear"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("consoleauth: session store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
