package domain

import "time"

// Session is one outstanding login grant for a user.
//
// Invariant: at most one session with IsActive=true per user at any time.
// The session store enforces this by deactivating every other active session
// whenever a session is created or rotated.
type Session struct {
	ID     int64
	UserID int64

	AccessToken  string
	RefreshToken string

	IPAddress string
	UserAgent string

	IsActive  bool
	ExpiresAt time.Time
	CreatedAt time.Time
	LastUsed  time.Time
}

// IsExpired reports whether the session's refresh window has passed.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
