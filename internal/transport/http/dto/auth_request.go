package dto

import "strings"

// -------- Core auth --------

type RegisterRequest struct {
	SchoolID int64  `json:"school_id" validate:"required"`
	CampusID *int64 `json:"campus_id,omitempty"`
	RoleID   int64  `json:"role_id" validate:"required"`

	Email    string  `json:"email" validate:"required,email"`
	Username *string `json:"username,omitempty" validate:"omitempty,username_format,max=50"`
	Password string  `json:"password" validate:"required,min=8,max=128"`

	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return check(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return check(r)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	return check(r)
}

// -------- Email verification --------

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *VerifyEmailRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return check(r)
}

// -------- Password reset --------

// The server always answers the same way whether or not the email exists.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *PasswordResetRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return check(r)
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	return check(r)
}

// -------- Password change (authenticated) --------

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

func (r *PasswordChangeRequest) Validate() error {
	return check(r)
}
