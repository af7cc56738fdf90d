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

// VerificationRepository implements auth.VerificationRepository using
// PostgreSQL.
type VerificationRepository struct {
	pool poolIface
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(pool poolIface) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

// Create stores a verification code for the user, replacing any code
// already outstanding. The user_id primary key makes the upsert enforce
// one live code per account.
func (r *VerificationRepository) Create(ctx context.Context, verification *auth.EmailVerification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_verifications (user_id, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET code_hash = EXCLUDED.code_hash,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
	`, verification.UserID.String(), verification.CodeHash, verification.ExpiresAt, verification.CreatedAt)
	if err != nil {
		return oops.With("operation", "create email verification").
			With("user_id", verification.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByUser retrieves the outstanding verification code for the user.
func (r *VerificationRepository) GetByUser(ctx context.Context, userID ulid.ULID) (*auth.EmailVerification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, code_hash, expires_at, created_at
		FROM email_verifications WHERE user_id = $1
	`, userID.String())

	var verification auth.EmailVerification
	var userIDStr string
	err := row.Scan(&userIDStr, &verification.CodeHash, &verification.ExpiresAt, &verification.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("VERIFICATION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get email verification").Wrap(err)
	}

	verification.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.With("operation", "parse verification user id").With("user_id", userIDStr).Wrap(err)
	}
	return &verification, nil
}

// Delete removes the user's verification code. Returns auth.ErrNotFound if
// there was none, which is how concurrent confirms lose the race.
func (r *VerificationRepository) Delete(ctx context.Context, userID ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM email_verifications WHERE user_id = $1`, userID.String())
	if err != nil {
		return oops.With("operation", "delete email verification").With("user_id", userID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("VERIFICATION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes all expired verification codes.
func (r *VerificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM email_verifications WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, oops.With("operation", "delete expired verifications").Wrap(err)
	}
	return result.RowsAffected(), nil
}
