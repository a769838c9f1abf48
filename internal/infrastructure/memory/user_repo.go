package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

// UserRepo is an in-memory auth.UserRepo used in tests and as a dev
// fallback. All mutations happen under one mutex, which gives the same
// effective guarantees the SQL adapter gets from its transactions.
type UserRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		nextID: 1,
		byID:   make(map[int64]domain.User),
	}
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		if u.Username != nil && existing.Username != nil && *existing.Username == *u.Username {
			return domain.User{}, domain.ErrUsernameAlreadyExists()
		}
	}

	u.ID = r.nextID
	r.nextID++
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.byID[u.ID] = u
	return u, nil
}

func (r *UserRepo) RecordLoginFailure(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return 0, domain.ErrUserNotFound()
	}
	u.FailedLoginAttempts++
	r.byID[userID] = u
	return u.FailedLoginAttempts, nil
}

func (r *UserRepo) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.LockedUntil = &until
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) RecordLoginSuccess(ctx context.Context, userID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLogin = &at
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == token {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) SetEmailVerified(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.IsVerified = true
	u.EmailVerificationToken = nil
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) GetByPasswordResetToken(ctx context.Context, token string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *UserRepo) SetPasswordResetToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordResetToken = &token
	u.PasswordResetExpires = &expires
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) ResetPassword(ctx context.Context, userID int64, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	r.byID[userID] = u
	return nil
}

// Put replaces a stored user wholesale. Test helper.
func (r *UserRepo) Put(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.byID[u.ID] = u
}
