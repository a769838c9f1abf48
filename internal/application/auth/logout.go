package auth

import (
	"context"

	"github.com/campuskit/auth-service/internal/domain"
)

// Logout invalidates the session bound to the bearer token. It is
// idempotent: an unknown or already-invalidated token is a no-op success.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	sess, err := s.sessions.GetActiveByAccessToken(ctx, accessToken)
	if err != nil {
		if domain.Is(err, "session_not_found") {
			return nil
		}
		return err
	}
	return s.sessions.Invalidate(ctx, sess.ID)
}
