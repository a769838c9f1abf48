package domain

import "time"

// User is the identity + credential + account-state record.
//
// Email verification is tracked but not required for login; only the active
// flag and the lock window gate authentication.
type User struct {
	ID       int64
	SchoolID int64
	CampusID *int64
	RoleID   int64

	Email        string
	Username     *string
	PasswordHash string

	FirstName *string
	LastName  *string

	IsActive   bool
	IsVerified bool

	FailedLoginAttempts int
	LockedUntil         *time.Time

	EmailVerificationToken *string
	PasswordResetToken     *string
	PasswordResetExpires   *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the account is inside an active lock window.
// A lock with a past deadline counts as expired; the stale counter is only
// cleared by the outcome of the next attempt.
func (u *User) IsLocked(now time.Time) bool {
	if u.LockedUntil == nil {
		return false
	}
	return now.Before(*u.LockedUntil)
}

// CanLogin reports login eligibility: active and not locked.
func (u *User) CanLogin(now time.Time) bool {
	return u.IsActive && !u.IsLocked(now)
}

// FullName joins first and last name, falling back to whichever is set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.LastName != nil:
		return *u.LastName
	}
	return ""
}
