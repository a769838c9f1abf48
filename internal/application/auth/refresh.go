package auth

import (
	"context"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

// Refresh rotates the session's token pair. Every failure is the uniform
// invalid-refresh-token result; the distinction only shows up in logs.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if refreshToken == "" {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	claims, err := s.codec.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		log(ctx).Warn().Err(err).Msg("refresh token rejected by codec")
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	sess, err := s.sessions.GetActiveByRefreshToken(ctx, refreshToken)
	if err != nil {
		if domain.Is(err, "session_not_found") {
			return AuthTokens{}, domain.ErrRefreshTokenInvalid()
		}
		return AuthTokens{}, err
	}
	if sess.UserID != claims.UserID {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	now := time.Now()
	if sess.IsExpired(now) {
		_ = s.sessions.Invalidate(ctx, sess.ID)
		log(ctx).Info().Int64("session_id", sess.ID).Msg("expired session invalidated on refresh")
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return AuthTokens{}, domain.ErrRefreshTokenInvalid()
		}
		return AuthTokens{}, err
	}
	if !u.CanLogin(now) {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	access, err := s.codec.Sign(TokenKindAccess, u.ID, u.SchoolID, u.Email, s.accessTTL)
	if err != nil {
		return AuthTokens{}, err
	}
	refresh, err := s.codec.Sign(TokenKindRefresh, u.ID, u.SchoolID, u.Email, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, err
	}

	if _, err := s.sessions.Rotate(ctx, sess.ID, u.ID, access, refresh, now.Add(s.refreshTTL)); err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.accessTTL.Seconds()),
		RefreshExpiresIn: int64(s.refreshTTL.Seconds()),
	}, nil
}
