package memory

import (
	"context"
	"sync"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

// SessionRepo is an in-memory auth.SessionStore. The single mutex makes
// deactivate-then-insert atomic, so at most one session per user is ever
// active, matching what the Postgres adapter enforces in a transaction.
type SessionRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		nextID: 1,
		byID:   make(map[int64]domain.Session),
	}
}

func (r *SessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deactivateOthersLocked(s.UserID, 0)

	s.ID = r.nextID
	r.nextID++
	s.IsActive = true
	now := time.Now()
	s.CreatedAt = now
	s.LastUsed = now
	r.byID[s.ID] = s
	return s, nil
}

func (r *SessionRepo) Rotate(ctx context.Context, sessionID, userID int64, accessToken, refreshToken string, expiresAt time.Time) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[sessionID]
	if !ok || !s.IsActive {
		return domain.Session{}, domain.ErrSessionNotFound()
	}

	r.deactivateOthersLocked(userID, sessionID)

	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.ExpiresAt = expiresAt
	s.LastUsed = time.Now()
	r.byID[sessionID] = s
	return s, nil
}

func (r *SessionRepo) Invalidate(ctx context.Context, sessionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[sessionID]
	if !ok {
		return nil // idempotent
	}
	s.IsActive = false
	r.byID[sessionID] = s
	return nil
}

func (r *SessionRepo) DeactivateAllForUser(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deactivateOthersLocked(userID, 0)
	return nil
}

func (r *SessionRepo) GetActiveByAccessToken(ctx context.Context, token string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.IsActive && s.AccessToken == token {
			return s, nil
		}
	}
	return domain.Session{}, domain.ErrSessionNotFound()
}

func (r *SessionRepo) GetActiveByRefreshToken(ctx context.Context, token string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.IsActive && s.RefreshToken == token {
			return s, nil
		}
	}
	return domain.Session{}, domain.ErrSessionNotFound()
}

// ActiveCountForUser reports how many sessions are currently active for a
// user. Test helper for the single-active-session invariant.
func (r *SessionRepo) ActiveCountForUser(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.byID {
		if s.IsActive && s.UserID == userID {
			n++
		}
	}
	return n
}

// Get returns a session by ID regardless of active state. Test helper.
func (r *SessionRepo) Get(sessionID int64) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[sessionID]
	return s, ok
}

func (r *SessionRepo) deactivateOthersLocked(userID, keepID int64) {
	for id, s := range r.byID {
		if s.UserID == userID && s.IsActive && id != keepID {
			s.IsActive = false
			r.byID[id] = s
		}
	}
}
