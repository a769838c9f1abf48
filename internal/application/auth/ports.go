package auth

import (
	"context"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the auth service needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Login attempt bookkeeping. These commit independently of the
	// surrounding flow so a failed attempt is recorded even though the
	// login call itself returns an error.
	//
	// RecordLoginFailure increments the failed-attempt counter atomically
	// and returns the new count.
	RecordLoginFailure(ctx context.Context, userID int64) (int, error)
	LockAccount(ctx context.Context, userID int64, until time.Time) error
	// RecordLoginSuccess resets the counter, clears the lock and stamps
	// last_login.
	RecordLoginSuccess(ctx context.Context, userID int64, at time.Time) error

	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error

	// Single-use token flows. Consuming a token always clears it.
	GetByVerificationToken(ctx context.Context, token string) (domain.User, error)
	SetEmailVerified(ctx context.Context, userID int64) error
	GetByPasswordResetToken(ctx context.Context, token string) (domain.User, error)
	SetPasswordResetToken(ctx context.Context, userID int64, token string, expires time.Time) error
	// ResetPassword sets the new hash and clears the reset token + expiry
	// in one write.
	ResetPassword(ctx context.Context, userID int64, newHash string) error
}

/*
SessionStore
------------
Session row management. Backed by Postgres (or memory in tests).

Create and Rotate must be atomic with respect to a single user's session
set: no window where two sessions are simultaneously active.
*/
type SessionStore interface {
	// Create deactivates every other active session for the user, then
	// inserts the new session as active.
	Create(ctx context.Context, s domain.Session) (domain.Session, error)
	// Rotate replaces token values and expiry on the same session row,
	// stamps last_used, and deactivates any other active sessions for the
	// same user found at rotation time.
	Rotate(ctx context.Context, sessionID, userID int64, accessToken, refreshToken string, expiresAt time.Time) (domain.Session, error)
	// Invalidate sets active=false. Idempotent.
	Invalidate(ctx context.Context, sessionID int64) error
	DeactivateAllForUser(ctx context.Context, userID int64) error

	GetActiveByAccessToken(ctx context.Context, token string) (domain.Session, error)
	GetActiveByRefreshToken(ctx context.Context, token string) (domain.Session, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenCodec
----------
Issues and verifies typed signed tokens (JWT).
Used by service + auth middleware.
*/
type TokenKind string

const (
	TokenKindAccess       TokenKind = "access"
	TokenKindRefresh      TokenKind = "refresh"
	TokenKindVerification TokenKind = "verification"
)

type TokenClaims struct {
	UserID   int64
	SchoolID int64
	Email    string
	Kind     TokenKind
	Exp      time.Time
}

type TokenCodec interface {
	Sign(kind TokenKind, userID, schoolID int64, email string, ttl time.Duration) (string, error)
	// Verify rejects a structurally valid token whose typ claim does not
	// match want.
	Verify(token string, want TokenKind) (TokenClaims, error)
}

/*
EventPublisher
--------------
Publishes events to RabbitMQ.
Email-service consumes these and sends emails.
Auth-service does NOT send emails directly, and never fails a flow on a
publish error.
*/
type EventPublisher interface {
	PublishVerifyEmail(ctx context.Context, evt VerifyEmailEvent) error
	PublishPasswordReset(ctx context.Context, evt PasswordResetEvent) error
	PublishWelcome(ctx context.Context, evt WelcomeEvent) error
}

type VerifyEmailEvent struct {
	UserID int64
	Email  string
	URL    string
}

type PasswordResetEvent struct {
	UserID int64
	Email  string
	URL    string
}

// WelcomeEvent carries the plaintext password so the welcome mail can echo
// the initial credentials back to the user.
type WelcomeEvent struct {
	UserID   int64
	Email    string
	Username string
	Password string
}
