// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/repstack/repstack/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, display_name, password_hash, email_verified_at,
		failed_attempts, locked_until, formula, dashboard_id, created_at, updated_at`

// Create persists a new user. Returns auth.ErrDuplicate if the email is
// already registered.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, email_verified_at,
			failed_attempts, locked_until, formula, dashboard_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID.String(), user.Email, user.DisplayName, user.PasswordHash, user.EmailVerifiedAt,
		user.FailedAttempts, user.LockedUntil, string(user.Formula), user.DashboardID.String(),
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_DUPLICATE").With("email", user.Email).Wrap(auth.ErrDuplicate)
		}
		return oops.With("operation", "create user").With("id", user.ID.String()).Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, id.String())
	user, err := scanUserRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get user").With("id", id.String()).Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE email = $1
	`, auth.NormalizeEmail(email))
	user, err := scanUserRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get user by email").Wrap(err)
	}
	return user, nil
}

// Update modifies an existing user's mutable fields.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	user.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET display_name = $2, password_hash = $3, email_verified_at = $4,
			failed_attempts = $5, locked_until = $6, formula = $7, updated_at = $8
		WHERE id = $1
	`, user.ID.String(), user.DisplayName, user.PasswordHash, user.EmailVerifiedAt,
		user.FailedAttempts, user.LockedUntil, string(user.Formula), user.UpdatedAt)
	if err != nil {
		return oops.With("operation", "update user").With("id", user.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", user.ID.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword sets a new password hash for the user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, id.String(), passwordHash, time.Now())
	if err != nil {
		return oops.With("operation", "update password").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// MarkEmailVerified stamps the user's email-verified timestamp.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id ulid.ULID, verifiedAt time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET email_verified_at = $2, updated_at = $3 WHERE id = $1
	`, id.String(), verifiedAt, time.Now())
	if err != nil {
		return oops.With("operation", "mark email verified").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUserRow scans a single user from a row.
func scanUserRow(row pgx.Row) (*auth.User, error) {
	var user auth.User
	var idStr, dashboardStr, formulaStr string

	err := row.Scan(
		&idStr, &user.Email, &user.DisplayName, &user.PasswordHash, &user.EmailVerifiedAt,
		&user.FailedAttempts, &user.LockedUntil, &formulaStr, &dashboardStr,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse user id").With("id", idStr).Wrap(err)
	}
	user.DashboardID, err = ulid.Parse(dashboardStr)
	if err != nil {
		return nil, oops.With("operation", "parse dashboard id").With("dashboard_id", dashboardStr).Wrap(err)
	}
	user.Formula = auth.Formula(formulaStr)

	return &user, nil
}
