package middleware

import (
	"context"

	"github.com/campuskit/auth-service/internal/application/auth"
)

type contextKey string

const authContextKey contextKey = "auth_context"

// WithAuthContext stores the resolved identity for downstream handlers.
func WithAuthContext(ctx context.Context, ac auth.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// AuthContextFromContext returns the identity set by the Auth middleware.
func AuthContextFromContext(ctx context.Context) (auth.AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(auth.AuthContext)
	return ac, ok
}

// UserIDFromContext is a convenience accessor for handlers that only need
// the user id.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	ac, ok := AuthContextFromContext(ctx)
	if !ok {
		return 0, false
	}
	return ac.User.ID, true
}
