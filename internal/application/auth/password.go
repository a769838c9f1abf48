package auth

import (
	"context"
	"strings"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

// RequestPasswordReset stores a single-use reset token on the user row and
// publishes the reset email event.
//
// IMPORTANT: non-enumerating. The caller gets the same success outcome
// whether or not the email exists, and storage/publish failures are only
// logged.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !domain.Is(err, "user_not_found") {
			log(ctx).Error().Err(err).Str("email", email).Msg("user lookup failed during password reset request")
		}
		return nil
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		log(ctx).Error().Err(err).Int64("user_id", u.ID).Msg("failed to generate reset token")
		return nil
	}

	expires := time.Now().Add(s.passwordResetTTL)
	if err := s.users.SetPasswordResetToken(ctx, u.ID, token, expires); err != nil {
		log(ctx).Error().Err(err).Int64("user_id", u.ID).Msg("failed to store reset token")
		return nil
	}

	if s.pub != nil {
		evt := PasswordResetEvent{
			UserID: u.ID,
			Email:  u.Email,
			URL:    s.passwordResetBaseURL + token,
		}
		if err := s.pub.PublishPasswordReset(ctx, evt); err != nil {
			log(ctx).Error().
				Err(err).
				Int64("user_id", u.ID).
				Str("email", u.Email).
				Msg("failed to publish password reset event")
		}
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password. The token
// is single-use: a successful reset clears it, and all sessions for the
// user are revoked.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrResetTokenInvalid()
	}
	if err := domain.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	u, err := s.users.GetByPasswordResetToken(ctx, token)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrResetTokenInvalid()
		}
		return err
	}
	if u.PasswordResetExpires != nil && time.Now().After(*u.PasswordResetExpires) {
		return domain.ErrResetTokenExpired()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.ResetPassword(ctx, u.ID, hash); err != nil {
		return err
	}

	// Old credentials should not keep a live session around.
	if err := s.sessions.DeactivateAllForUser(ctx, u.ID); err != nil {
		log(ctx).Error().Err(err).Int64("user_id", u.ID).Msg("failed to revoke sessions after password reset")
	}
	return nil
}

// ChangePassword updates the password for an authenticated user after
// re-verifying the current one. The current session stays valid.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if err := domain.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, currentPassword); err != nil {
		return domain.ErrCurrentPasswordIncorrect()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, u.ID, hash)
}
