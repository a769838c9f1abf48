package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/campuskit/auth-service/internal/application/auth"
	"github.com/campuskit/auth-service/internal/domain"
)

// Authenticator resolves a bearer access token to an identity. The token
// must map to an active session for an eligible account.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (auth.AuthContext, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth verifies Authorization: Bearer <access_token> and injects the
// resolved identity into the request context.
func Auth(authn Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ac, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := WithAuthContext(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", domain.ErrTokenMissing()
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.ErrTokenInvalid()
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", domain.ErrTokenInvalid()
	}
	return raw, nil
}
