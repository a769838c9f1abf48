package auth

import (
	"context"
	"strings"

	"github.com/campuskit/auth-service/internal/domain"
)

type RegisterInput struct {
	SchoolID int64
	CampusID *int64
	RoleID   int64

	Email    string
	Username *string
	Password string

	FirstName *string
	LastName  *string

	IP        string
	UserAgent string
}

// Register creates a user, fires the verification and welcome emails, and
// logs the user straight in with a fresh token pair.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return RegisterResult{}, domain.ErrMissingField("password")
	}
	if err := domain.ValidatePasswordStrength(in.Password); err != nil {
		return RegisterResult{}, err
	}

	// Uniqueness checks. Any repo error other than not-found is a real
	// database problem and short-circuits the flow.
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return RegisterResult{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return RegisterResult{}, err
	}
	if in.Username != nil && *in.Username != "" {
		if _, err := s.users.GetByUsername(ctx, *in.Username); err == nil {
			return RegisterResult{}, domain.ErrUsernameAlreadyExists()
		} else if !domain.Is(err, "user_not_found") {
			return RegisterResult{}, err
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	verifyToken, err := newOpaqueToken(32)
	if err != nil {
		return RegisterResult{}, domain.ErrRandomFailed(err)
	}

	created, err := s.users.Create(ctx, domain.User{
		SchoolID: in.SchoolID,
		CampusID: in.CampusID,
		RoleID:   in.RoleID,

		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,

		IsActive:               true,
		IsVerified:             false,
		EmailVerificationToken: &verifyToken,
	})
	if err != nil {
		return RegisterResult{}, err
	}

	// Fire-and-forget: email failures are logged but never fail the
	// registration that already committed.
	s.sendVerifyEmail(ctx, created, verifyToken)
	s.sendWelcome(ctx, created, in.Password)

	toks, _, err := s.issueSession(ctx, created, in.IP, in.UserAgent)
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{User: created, Tokens: toks}, nil
}

func (s *Service) sendVerifyEmail(ctx context.Context, u domain.User, token string) {
	if s.pub == nil {
		return
	}
	evt := VerifyEmailEvent{
		UserID: u.ID,
		Email:  u.Email,
		URL:    s.verifyEmailBaseURL + token,
	}
	if err := s.pub.PublishVerifyEmail(ctx, evt); err != nil {
		log(ctx).Error().
			Err(err).
			Int64("user_id", u.ID).
			Str("email", u.Email).
			Msg("failed to publish verify email event")
	}
}

func (s *Service) sendWelcome(ctx context.Context, u domain.User, password string) {
	if s.pub == nil {
		return
	}
	username := u.Email
	if u.Username != nil && *u.Username != "" {
		username = *u.Username
	}
	evt := WelcomeEvent{
		UserID:   u.ID,
		Email:    u.Email,
		Username: username,
		Password: password,
	}
	if err := s.pub.PublishWelcome(ctx, evt); err != nil {
		log(ctx).Error().
			Err(err).
			Int64("user_id", u.ID).
			Str("email", u.Email).
			Msg("failed to publish welcome event")
	}
}
