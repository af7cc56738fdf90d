// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/repstack/repstack/internal/auth"
)

// ResetRepository implements auth.ResetRepository using PostgreSQL.
type ResetRepository struct {
	pool poolIface
}

// NewResetRepository creates a new ResetRepository.
func NewResetRepository(pool poolIface) *ResetRepository {
	return &ResetRepository{pool: pool}
}

// Create persists a new password reset token.
func (r *ResetRepository) Create(ctx context.Context, reset *auth.PasswordReset) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_resets (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, reset.TokenHash, reset.UserID.String(), reset.ExpiresAt, reset.CreatedAt)
	if err != nil {
		return oops.With("operation", "create password reset").Wrap(err)
	}
	return nil
}

// Consume atomically deletes the reset with the given fingerprint and
// returns it. Concurrent consumers race on the DELETE; the loser sees
// auth.ErrNotFound.
func (r *ResetRepository) Consume(ctx context.Context, tokenHash string) (*auth.PasswordReset, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM password_resets WHERE token_hash = $1
		RETURNING token_hash, user_id, expires_at, created_at
	`, tokenHash)

	var reset auth.PasswordReset
	var userIDStr string
	err := row.Scan(&reset.TokenHash, &userIDStr, &reset.ExpiresAt, &reset.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "consume password reset").Wrap(err)
	}

	reset.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.With("operation", "parse reset user id").With("user_id", userIDStr).Wrap(err)
	}
	return &reset, nil
}

// DeleteByUser removes any outstanding reset for the user. Deleting zero
// rows is not an error.
func (r *ResetRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM password_resets WHERE user_id = $1`, userID.String())
	if err != nil {
		return oops.With("operation", "delete user resets").With("user_id", userID.String()).Wrap(err)
	}
	return nil
}

// DeleteExpired removes all expired reset tokens.
func (r *ResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM password_resets WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, oops.With("operation", "delete expired resets").Wrap(err)
	}
	return result.RowsAffected(), nil
}
