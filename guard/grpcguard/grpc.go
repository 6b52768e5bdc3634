// Package grpcguard provides gRPC interceptors guarding console RPCs.
//
// The decision mapping mirrors the HTTP guard: a pending session is
// Unavailable (retry, not a denial), a missing session is
// Unauthenticated, and role or zone denials are PermissionDenied so the
// caller can tell "log in first" apart from "forbidden".
package grpcguard

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ispkit/consoleauth"
	"github.com/ispkit/consoleauth/authz"
	"github.com/ispkit/consoleauth/scope"
)

// Option configures guard interceptor behavior.
type Option func(*config)

type config struct {
	excludedMethods map[string]bool
}

// WithExcludedMethods sets gRPC methods that skip the guard.
// Methods should be fully qualified (e.g. "/package.Service/Method").
func WithExcludedMethods(methods ...string) Option {
	return func(cfg *config) {
		for _, m := range methods {
			cfg.excludedMethods[m] = true
		}
	}
}

// UnaryProtect returns a gRPC unary server interceptor gating RPCs
// behind the given requirement. On allow, the session and its
// data-visibility scope are placed in the handler context.
func UnaryProtect(client *consoleauth.Client, req consoleauth.Requirement, opts ...Option) grpc.UnaryServerInterceptor {
	cfg := &config{excludedMethods: make(map[string]bool)}
	for _, o := range opts {
		o(cfg)
	}

	return func(ctx context.Context, rpcReq interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if cfg.excludedMethods[info.FullMethod] {
			return handler(ctx, rpcReq)
		}

		ctx, err := evaluate(ctx, client, req)
		if err != nil {
			return nil, err
		}
		return handler(ctx, rpcReq)
	}
}

// StreamProtect returns a gRPC stream server interceptor gating streams
// behind the given requirement.
func StreamProtect(client *consoleauth.Client, req consoleauth.Requirement, opts ...Option) grpc.StreamServerInterceptor {
	cfg := &config{excludedMethods: make(map[string]bool)}
	for _, o := range opts {
		o(cfg)
	}

	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if cfg.excludedMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		ctx, err := evaluate(ss.Context(), client, req)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedStream{ServerStream: ss, ctx: ctx})
	}
}

// --- internal helpers ---

func evaluate(ctx context.Context, client *consoleauth.Client, req consoleauth.Requirement) (context.Context, error) {
	src := client.Sessions()
	if src == nil {
		return ctx, status.Error(codes.Internal, "session source not configured")
	}

	sess := src.Current()
	switch d := authz.Decide(sess, req); d {
	case consoleauth.DecisionPending:
		return ctx, status.Error(codes.Unavailable, "session pending")
	case consoleauth.DecisionDenyUnauthenticated:
		return ctx, status.Error(codes.Unauthenticated, "not logged in")
	case consoleauth.DecisionDenyRole, consoleauth.DecisionDenyZone:
		return ctx, status.Error(codes.PermissionDenied, d.String())
	}

	ctx = consoleauth.WithSession(ctx, sess)
	ctx = consoleauth.WithScope(ctx, scope.For(sess))
	return ctx, nil
}

// wrappedStream wraps grpc.ServerStream to override Context().
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}
