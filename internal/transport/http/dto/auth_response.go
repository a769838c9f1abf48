package dto

import (
	"time"

	"github.com/campuskit/auth-service/internal/application/auth"
	"github.com/campuskit/auth-service/internal/domain"
)

type UserView struct {
	ID       int64  `json:"id"`
	SchoolID int64  `json:"school_id"`
	CampusID *int64 `json:"campus_id,omitempty"`
	RoleID   int64  `json:"role_id"`

	Email    string  `json:"email"`
	Username *string `json:"username,omitempty"`

	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	FullName  string  `json:"full_name,omitempty"`

	IsActive   bool `json:"is_active"`
	IsVerified bool `json:"is_verified"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:         u.ID,
		SchoolID:   u.SchoolID,
		CampusID:   u.CampusID,
		RoleID:     u.RoleID,
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
}

type TokensView struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

func NewTokensView(t auth.AuthTokens) TokensView {
	return TokensView{
		AccessToken:      t.AccessToken,
		RefreshToken:     t.RefreshToken,
		TokenType:        t.TokenType,
		ExpiresIn:        t.ExpiresIn,
		RefreshExpiresIn: t.RefreshExpiresIn,
	}
}

type AuthData struct {
	User   UserView   `json:"user"`
	Tokens TokensView `json:"tokens"`
}

type RefreshData struct {
	Tokens TokensView `json:"tokens"`
}

type MeData struct {
	User UserView `json:"user"`
}

type StatusData struct {
	Status string `json:"status"`
}
