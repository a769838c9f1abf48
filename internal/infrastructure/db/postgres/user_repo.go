package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuskit/auth-service/internal/domain"
)

const userColumns = `id, school_id, campus_id, role_id, email, username, password_hash,
first_name, last_name, is_active, is_verified, failed_login_attempts, locked_until,
email_verification_token, password_reset_token, password_reset_expires,
last_login, created_at, updated_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.SchoolID,
		&ur.CampusID,
		&ur.RoleID,
		&ur.Email,
		&ur.Username,
		&ur.PasswordHash,
		&ur.FirstName,
		&ur.LastName,
		&ur.IsActive,
		&ur.IsVerified,
		&ur.FailedLoginAttempts,
		&ur.LockedUntil,
		&ur.EmailVerificationToken,
		&ur.PasswordResetToken,
		&ur.PasswordResetExpires,
		&ur.LastLogin,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func (r *UserRepo) getOne(ctx context.Context, q string, args ...any) (domain.User, error) {
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

// mapUniqueViolation translates a Postgres unique-constraint error into the
// matching conflict error.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "username") {
			return domain.ErrUsernameAlreadyExists()
		}
		return domain.ErrEmailAlreadyExists()
	}
	return domain.ErrDBUnavailable(err)
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	return r.getOne(ctx, q, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;
`
	return r.getOne(ctx, q, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.ErrMissingField("username")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE username = $1
LIMIT 1;
`
	return r.getOne(ctx, q, username)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	const q = `
INSERT INTO users (
	school_id, campus_id, role_id, email, username, password_hash,
	first_name, last_name, is_active, is_verified, email_verification_token
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING ` + userColumns + `;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		u.SchoolID,
		ptrNullInt64(u.CampusID),
		u.RoleID,
		u.Email,
		ptrNullString(u.Username),
		u.PasswordHash,
		ptrNullString(u.FirstName),
		ptrNullString(u.LastName),
		u.IsActive,
		u.IsVerified,
		ptrNullString(u.EmailVerificationToken),
	))
	if err != nil {
		return domain.User{}, mapUniqueViolation(err)
	}
	return ur.toDomain(), nil
}

func (r *UserRepo) RecordLoginFailure(ctx context.Context, userID int64) (int, error) {
	// Single UPDATE so concurrent failed attempts never under-count.
	const q = `
UPDATE users
SET failed_login_attempts = failed_login_attempts + 1, updated_at = now()
WHERE id = $1
RETURNING failed_login_attempts;
`
	var attempts int
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrUserNotFound()
		}
		return 0, domain.ErrDBUnavailable(err)
	}
	return attempts, nil
}

func (r *UserRepo) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	const q = `
UPDATE users
SET locked_until = $2, updated_at = now()
WHERE id = $1;
`
	return r.exec(ctx, q, userID, until)
}

func (r *UserRepo) RecordLoginSuccess(ctx context.Context, userID int64, at time.Time) error {
	const q = `
UPDATE users
SET failed_login_attempts = 0, locked_until = NULL, last_login = $2, updated_at = now()
WHERE id = $1;
`
	return r.exec(ctx, q, userID, at)
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error {
	const q = `
UPDATE users
SET password_hash = $2, updated_at = now()
WHERE id = $1;
`
	return r.exec(ctx, q, userID, newHash)
}

func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email_verification_token = $1
LIMIT 1;
`
	return r.getOne(ctx, q, token)
}

func (r *UserRepo) SetEmailVerified(ctx context.Context, userID int64) error {
	// Clearing the token makes it single-use.
	const q = `
UPDATE users
SET is_verified = TRUE, email_verification_token = NULL, updated_at = now()
WHERE id = $1;
`
	return r.exec(ctx, q, userID)
}

func (r *UserRepo) GetByPasswordResetToken(ctx context.Context, token string) (domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE password_reset_token = $1
LIMIT 1;
`
	return r.getOne(ctx, q, token)
}

func (r *UserRepo) SetPasswordResetToken(ctx context.Context, userID int64, token string, expires time.Time) error {
	const q = `
UPDATE users
SET password_reset_token = $2, password_reset_expires = $3, updated_at = now()
WHERE id = $1;
`
	return r.exec(ctx, q, userID, token, expires)
}

func (r *UserRepo) ResetPassword(ctx context.Context, userID int64, newHash string) error {
	const q = `
UPDATE users
SET password_hash = $2, password_reset_token = NULL, password_reset_expires = NULL, updated_at = now()
WHERE id = $1;
`
	return r.exec(ctx, q, userID, newHash)
}

func (r *UserRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
