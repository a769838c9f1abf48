package auth

import (
	"context"
	"strings"

	"github.com/campuskit/auth-service/internal/domain"
)

// VerifyEmail consumes a verification token and marks the user as verified.
// The stored token is single-use: SetEmailVerified clears it, so a second
// call with the same token fails the lookup.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrVerifyTokenInvalid()
	}

	u, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrVerifyTokenInvalid()
		}
		return err
	}
	if u.IsVerified {
		return domain.ErrEmailAlreadyVerified()
	}

	return s.users.SetEmailVerified(ctx, u.ID)
}
