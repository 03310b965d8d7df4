package middleware

import (
	"context"

	"github.com/mateovidal/spinmart-backend/pkg/auth"
)

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxClaims    contextKey = "session_claims"
)

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified token claims, or nil for guests.
func ClaimsFromContext(ctx context.Context) *auth.SessionTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*auth.SessionTokenClaims); ok {
		return v
	}
	return nil
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithClaims injects verified token claims into the context.
func WithClaims(ctx context.Context, claims *auth.SessionTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}
