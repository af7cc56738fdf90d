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

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool poolIface
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, session.TokenHash, session.UserID.String(), session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return oops.With("operation", "create session").Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token fingerprint.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token_hash, user_id, expires_at, created_at
		FROM sessions WHERE token_hash = $1
	`, tokenHash)

	var session auth.Session
	var userIDStr string
	err := row.Scan(&session.TokenHash, &userIDStr, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get session").Wrap(err)
	}

	session.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.With("operation", "parse session user id").With("user_id", userIDStr).Wrap(err)
	}
	return &session, nil
}

// ExtendExpiry moves a session's expiry forward without changing its
// fingerprint.
func (r *SessionRepository) ExtendExpiry(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE sessions SET expires_at = $2 WHERE token_hash = $1
	`, tokenHash, expiresAt)
	if err != nil {
		return oops.With("operation", "extend session").Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes one session by fingerprint.
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return oops.With("operation", "delete session").Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes every session belonging to the user. Deleting zero
// rows is not an error.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID.String())
	if err != nil {
		return oops.With("operation", "delete user sessions").With("user_id", userID.String()).Wrap(err)
	}
	return nil
}

// DeleteExpired removes all expired sessions and reports how many were
// deleted.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, oops.With("operation", "delete expired sessions").Wrap(err)
	}
	return result.RowsAffected(), nil
}
