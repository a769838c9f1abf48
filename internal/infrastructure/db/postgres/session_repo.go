package postgres

import (
	"context"
	"database/sql"
	"errors"

	"time"

	"github.com/campuskit/auth-service/internal/domain"
)

const sessionColumns = `id, user_id, access_token, refresh_token, ip_address, user_agent,
is_active, expires_at, created_at, last_used`

// SessionRepo implements auth.SessionStore on Postgres.
//
// Create and Rotate run deactivate-then-write inside one transaction; the
// deactivating UPDATE takes row locks on the user's active sessions, so two
// concurrent logins serialize and exactly one session ends up active.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func scanSessionRow(row *sql.Row) (domain.Session, error) {
	var s domain.Session
	var ip, ua sql.NullString
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.AccessToken,
		&s.RefreshToken,
		&ip,
		&ua,
		&s.IsActive,
		&s.ExpiresAt,
		&s.CreatedAt,
		&s.LastUsed,
	)
	if err != nil {
		return domain.Session{}, err
	}
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	return s, nil
}

func (r *SessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	const deactivate = `
UPDATE sessions
SET is_active = FALSE
WHERE user_id = $1 AND is_active;
`
	if _, err := tx.ExecContext(ctx, deactivate, s.UserID); err != nil {
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}

	const insert = `
INSERT INTO sessions (user_id, access_token, refresh_token, ip_address, user_agent, is_active, expires_at)
VALUES ($1,$2,$3,$4,$5,TRUE,$6)
RETURNING ` + sessionColumns + `;
`
	created, err := scanSessionRow(tx.QueryRowContext(ctx, insert,
		s.UserID, s.AccessToken, s.RefreshToken, s.IPAddress, s.UserAgent, s.ExpiresAt,
	))
	if err != nil {
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}
	return created, nil
}

func (r *SessionRepo) Rotate(ctx context.Context, sessionID, userID int64, accessToken, refreshToken string, expiresAt time.Time) (domain.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	// Concurrent refreshes or logins may have raced in another session;
	// anything active other than this row loses.
	const deactivateOthers = `
UPDATE sessions
SET is_active = FALSE
WHERE user_id = $1 AND is_active AND id <> $2;
`
	if _, err := tx.ExecContext(ctx, deactivateOthers, userID, sessionID); err != nil {
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}

	const rotate = `
UPDATE sessions
SET access_token = $2, refresh_token = $3, expires_at = $4, last_used = now()
WHERE id = $1 AND is_active
RETURNING ` + sessionColumns + `;
`
	rotated, err := scanSessionRow(tx.QueryRowContext(ctx, rotate,
		sessionID, accessToken, refreshToken, expiresAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrSessionNotFound()
		}
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}
	return rotated, nil
}

func (r *SessionRepo) Invalidate(ctx context.Context, sessionID int64) error {
	// No rows affected means already inactive or gone; both are fine.
	const q = `
UPDATE sessions
SET is_active = FALSE
WHERE id = $1;
`
	if _, err := r.db.ExecContext(ctx, q, sessionID); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *SessionRepo) DeactivateAllForUser(ctx context.Context, userID int64) error {
	const q = `
UPDATE sessions
SET is_active = FALSE
WHERE user_id = $1 AND is_active;
`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *SessionRepo) GetActiveByAccessToken(ctx context.Context, token string) (domain.Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE access_token = $1 AND is_active
LIMIT 1;
`
	return r.getOne(ctx, q, token)
}

func (r *SessionRepo) GetActiveByRefreshToken(ctx context.Context, token string) (domain.Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE refresh_token = $1 AND is_active
LIMIT 1;
`
	return r.getOne(ctx, q, token)
}

func (r *SessionRepo) getOne(ctx context.Context, q string, args ...any) (domain.Session, error) {
	s, err := scanSessionRow(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrSessionNotFound()
		}
		return domain.Session{}, domain.ErrDBUnavailable(err)
	}
	return s, nil
}
