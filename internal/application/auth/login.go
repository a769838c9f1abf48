package auth

import (
	"context"
	"strings"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// Login authenticates a user and issues tokens.
//
// Before the email resolves to a user every failure is a uniform
// invalid-credentials result (no user enumeration). Once the account is
// known, deactivated and locked states are reported distinctly, and are
// checked before the password so a locked attempt never touches the
// failed-attempt counter.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			// Hide not-found behind invalid credentials.
			log(ctx).Warn().Str("email", email).Str("reason", "user_not_found").Msg("failed login attempt")
			return LoginResult{}, domain.ErrInvalidCredentials()
		}
		return LoginResult{}, err
	}

	now := time.Now()
	if !u.IsActive {
		return LoginResult{}, domain.ErrAccountDeactivated()
	}
	if u.IsLocked(now) {
		return LoginResult{}, domain.ErrAccountLocked()
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		s.recordFailedAttempt(ctx, u, now)
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.users.RecordLoginSuccess(ctx, u.ID, now); err != nil {
		return LoginResult{}, err
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLogin = &now

	toks, _, err := s.issueSession(ctx, u, in.IP, in.UserAgent)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: u, Tokens: toks}, nil
}

// recordFailedAttempt commits the counter increment (and a lock once the
// threshold is hit) regardless of the login call failing. The increment is
// atomic in the repo so concurrent failures never under-count.
func (s *Service) recordFailedAttempt(ctx context.Context, u domain.User, now time.Time) {
	attempts, err := s.users.RecordLoginFailure(ctx, u.ID)
	if err != nil {
		log(ctx).Error().Err(err).Int64("user_id", u.ID).Msg("failed to record login failure")
		return
	}

	log(ctx).Warn().
		Int64("user_id", u.ID).
		Str("email", u.Email).
		Int("failed_attempts", attempts).
		Str("reason", "invalid_password").
		Msg("failed login attempt")

	if attempts >= s.maxLoginAttempts {
		until := now.Add(s.lockoutDuration)
		if err := s.users.LockAccount(ctx, u.ID, until); err != nil {
			log(ctx).Error().Err(err).Int64("user_id", u.ID).Msg("failed to lock account")
			return
		}
		log(ctx).Warn().
			Int64("user_id", u.ID).
			Time("locked_until", until).
			Msg("account locked after repeated failed logins")
	}
}
