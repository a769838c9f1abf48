package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuskit/auth-service/internal/domain"
	"github.com/campuskit/auth-service/internal/logger"
)

type Service struct {
	users    UserRepo
	sessions SessionStore
	hasher   PasswordHasher
	codec    TokenCodec
	pub      EventPublisher

	accessTTL        time.Duration
	refreshTTL       time.Duration
	verifyEmailTTL   time.Duration
	passwordResetTTL time.Duration

	maxLoginAttempts int
	lockoutDuration  time.Duration

	// URLs used to build links sent via email-service
	verifyEmailBaseURL   string // e.g. https://frontend/verify-email?token=
	passwordResetBaseURL string // e.g. https://frontend/reset-password?token=
}

type Config struct {
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration

	MaxLoginAttempts int
	LockoutDuration  time.Duration

	VerifyEmailBaseURL   string
	PasswordResetBaseURL string
}

func NewService(
	users UserRepo,
	sessions SessionStore,
	hasher PasswordHasher,
	codec TokenCodec,
	pub EventPublisher,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	verifyTTL := cfg.VerifyEmailTokenTTL
	if verifyTTL <= 0 {
		verifyTTL = 24 * time.Hour
	}
	resetTTL := cfg.PasswordResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = 24 * time.Hour
	}
	attempts := cfg.MaxLoginAttempts
	if attempts <= 0 {
		attempts = 5
	}
	lockout := cfg.LockoutDuration
	if lockout <= 0 {
		lockout = 30 * time.Minute
	}

	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		codec:    codec,
		pub:      pub,

		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
		verifyEmailTTL:   verifyTTL,
		passwordResetTTL: resetTTL,

		maxLoginAttempts: attempts,
		lockoutDuration:  lockout,

		verifyEmailBaseURL:   cfg.VerifyEmailBaseURL,
		passwordResetBaseURL: cfg.PasswordResetBaseURL,
	}
}

// AuthTokens is the common token output for handlers/DTO mapping.
type AuthTokens struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string // "Bearer"
	ExpiresIn        int64  // access token lifetime, seconds
	RefreshExpiresIn int64  // refresh token lifetime, seconds
}

type RegisterResult struct {
	User   domain.User
	Tokens AuthTokens
}

type LoginResult struct {
	User   domain.User
	Tokens AuthTokens
}

// issueSession mints an access+refresh pair and persists the session,
// superseding any other active session for the user.
func (s *Service) issueSession(ctx context.Context, u domain.User, ip, userAgent string) (AuthTokens, domain.Session, error) {
	access, err := s.codec.Sign(TokenKindAccess, u.ID, u.SchoolID, u.Email, s.accessTTL)
	if err != nil {
		return AuthTokens{}, domain.Session{}, err
	}
	refresh, err := s.codec.Sign(TokenKindRefresh, u.ID, u.SchoolID, u.Email, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, domain.Session{}, err
	}

	sess, err := s.sessions.Create(ctx, domain.Session{
		UserID:       u.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		IPAddress:    ip,
		UserAgent:    userAgent,
		IsActive:     true,
		ExpiresAt:    time.Now().Add(s.refreshTTL),
	})
	if err != nil {
		return AuthTokens{}, domain.Session{}, err
	}

	return AuthTokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.accessTTL.Seconds()),
		RefreshExpiresIn: int64(s.refreshTTL.Seconds()),
	}, sess, nil
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// log retrieves the request-scoped logger, falling back to the global one.
func log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &logger.Logger
}
