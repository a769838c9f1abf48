package auth

import (
	"context"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

// AuthContext is the resolved identity for a bearer token, consumed by the
// auth middleware.
type AuthContext struct {
	User   domain.User
	Claims TokenClaims
}

// Authenticate resolves a bearer access token to its user and session.
// The token must be a valid access-kind token bound to an active,
// non-expired session for an eligible user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (AuthContext, error) {
	if accessToken == "" {
		return AuthContext{}, domain.ErrTokenMissing()
	}

	claims, err := s.codec.Verify(accessToken, TokenKindAccess)
	if err != nil {
		return AuthContext{}, err
	}

	sess, err := s.sessions.GetActiveByAccessToken(ctx, accessToken)
	if err != nil {
		if domain.Is(err, "session_not_found") {
			return AuthContext{}, domain.ErrTokenInvalid()
		}
		return AuthContext{}, err
	}

	now := time.Now()
	if sess.IsExpired(now) {
		_ = s.sessions.Invalidate(ctx, sess.ID)
		return AuthContext{}, domain.ErrTokenExpired()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return AuthContext{}, domain.ErrTokenInvalid()
		}
		return AuthContext{}, err
	}
	if !u.CanLogin(now) {
		return AuthContext{}, domain.ErrTokenInvalid()
	}

	return AuthContext{User: u, Claims: claims}, nil
}
