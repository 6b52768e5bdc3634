// Package ginguard provides Gin route guards for the console auth core.
//
// A guard re-evaluates the session against the view's requirement on
// every request: there is no terminal state, a login or logout simply
// changes what the next evaluation sees. Guards accept a
// *consoleauth.Client and use its SessionSource — no direct dependency
// on any specific store or backend.
package ginguard

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ispkit/consoleauth"
	"github.com/ispkit/consoleauth/authz"
	"github.com/ispkit/consoleauth/metrics"
	"github.com/ispkit/consoleauth/scope"
)

// Context keys for storing auth data in gin.Context.
const (
	KeySession = "consoleauth_session"
	KeyScope   = "consoleauth_scope"
)

// Option configures guard behavior.
type Option func(*config)

type config struct {
	loginPath  string
	deniedPath string
	metrics    *metrics.Metrics
	pending    gin.HandlerFunc
}

// WithLoginPath overrides the redirect target for unauthenticated
// navigation.
func WithLoginPath(path string) Option {
	return func(cfg *config) { cfg.loginPath = path }
}

// WithDeniedPath overrides the redirect target for authenticated but
// unauthorized navigation.
func WithDeniedPath(path string) Option {
	return func(cfg *config) { cfg.deniedPath = path }
}

// WithMetrics records guard decisions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *config) { cfg.metrics = m }
}

// WithPendingHandler replaces the default response for a session with an
// in-flight login (503 + Retry-After).
func WithPendingHandler(h gin.HandlerFunc) Option {
	return func(cfg *config) { cfg.pending = h }
}

// Protect returns Gin middleware gating a view behind the given
// requirement.
//
// Pending sessions get a neutral waiting response — never a denial and
// never the view's content. Unauthenticated requests are redirected to
// the login page with the original URL in the "from" parameter so a
// successful login can return there. Role and zone denials redirect to
// the access-denied page: a different failure class than "not logged
// in", and a different destination.
func Protect(client *consoleauth.Client, req consoleauth.Requirement, opts ...Option) gin.HandlerFunc {
	cfg := &config{
		loginPath:  client.Config().LoginPath,
		deniedPath: client.Config().DeniedPath,
		metrics:    metrics.New(false),
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.pending == nil {
		cfg.pending = func(c *gin.Context) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "pending"})
		}
	}

	return func(c *gin.Context) {
		src := client.Sessions()
		if src == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session source not configured"})
			return
		}

		start := time.Now()
		sess := src.Current()
		d := authz.Decide(sess, req)
		cfg.metrics.RecordDecision(d.String(), time.Since(start).Seconds())

		switch d {
		case consoleauth.DecisionPending:
			cfg.pending(c)

		case consoleauth.DecisionDenyUnauthenticated:
			target := cfg.loginPath + "?from=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()

		case consoleauth.DecisionDenyRole, consoleauth.DecisionDenyZone:
			c.Redirect(http.StatusFound, cfg.deniedPath)
			c.Abort()

		case consoleauth.DecisionAllow:
			sc := scope.For(sess)
			c.Set(KeySession, sess)
			c.Set(KeyScope, sc)
			ctx := consoleauth.WithSession(c.Request.Context(), sess)
			ctx = consoleauth.WithScope(ctx, sc)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}
	}
}

// GetSession returns the session placed by Protect.
func GetSession(c *gin.Context) consoleauth.Session {
	v, _ := c.Get(KeySession)
	s, _ := v.(consoleauth.Session)
	return s
}

// GetScope returns the data-visibility scope placed by Protect.
func GetScope(c *gin.Context) consoleauth.Scope {
	v, _ := c.Get(KeyScope)
	s, _ := v.(consoleauth.Scope)
	return s
}
