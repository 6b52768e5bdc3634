package consoleauth

import "context"

type ctxKey string

const (
	ctxKeySession ctxKey = "consoleauth_session"
	ctxKeyScope   ctxKey = "consoleauth_scope"
)

// WithSession stores the evaluated session in the context.
// Route guards call this after an allow decision.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext extracts the session placed by a route guard.
// Returns an empty Session when none is present.
func SessionFromContext(ctx context.Context) Session {
	v, _ := ctx.Value(ctxKeySession).(Session)
	return v
}

// WithScope stores the data-visibility scope in the context.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, ctxKeyScope, s)
}

// ScopeFromContext extracts the data-visibility scope from the context.
// The zero Scope (non-global, zone 0) is returned when none is present;
// it matches no records, which is the safe direction.
func ScopeFromContext(ctx context.Context) Scope {
	v, _ := ctx.Value(ctxKeyScope).(Scope)
	return v
}
