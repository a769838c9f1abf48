package postgres

import (
	"database/sql"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

// userRow mirrors the users table; nullable columns use sql.Null types and
// are converted to pointers on the way out.
type userRow struct {
	ID       int64
	SchoolID int64
	CampusID sql.NullInt64
	RoleID   int64

	Email        string
	Username     sql.NullString
	PasswordHash string
	FirstName    sql.NullString
	LastName     sql.NullString

	IsActive   bool
	IsVerified bool

	FailedLoginAttempts int
	LockedUntil         sql.NullTime

	EmailVerificationToken sql.NullString
	PasswordResetToken     sql.NullString
	PasswordResetExpires   sql.NullTime

	LastLogin sql.NullTime
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ur userRow) toDomain() domain.User {
	return domain.User{
		ID:       ur.ID,
		SchoolID: ur.SchoolID,
		CampusID: nullInt64Ptr(ur.CampusID),
		RoleID:   ur.RoleID,

		Email:        ur.Email,
		Username:     nullStringPtr(ur.Username),
		PasswordHash: ur.PasswordHash,
		FirstName:    nullStringPtr(ur.FirstName),
		LastName:     nullStringPtr(ur.LastName),

		IsActive:   ur.IsActive,
		IsVerified: ur.IsVerified,

		FailedLoginAttempts: ur.FailedLoginAttempts,
		LockedUntil:         nullTimePtr(ur.LockedUntil),

		EmailVerificationToken: nullStringPtr(ur.EmailVerificationToken),
		PasswordResetToken:     nullStringPtr(ur.PasswordResetToken),
		PasswordResetExpires:   nullTimePtr(ur.PasswordResetExpires),

		LastLogin: nullTimePtr(ur.LastLogin),
		CreatedAt: ur.CreatedAt,
		UpdatedAt: ur.UpdatedAt,
	}
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func ptrNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func ptrNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
