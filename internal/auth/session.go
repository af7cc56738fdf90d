// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes = 64 // 64 bytes = 128 hex chars

	// SessionTTL is the lifetime of a session from creation or renewal.
	SessionTTL = 30 * 24 * time.Hour

	// SessionRenewWindow is how close to expiry a validation must land
	// before the session's expiry is extended in place.
	SessionRenewWindow = 15 * 24 * time.Hour
)

// Session represents a web client session. It is identified by the
// fingerprint of the token the client holds; the token itself is never
// stored.
type Session struct {
	TokenHash string
	UserID    ulid.ULID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a validated Session instance.
func NewSession(userID ulid.ULID, tokenHash string, expiresAt time.Time) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &Session{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Useful for testing with deterministic time values.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// RenewableAt returns true if a validation at time t should extend the
// session's expiry: past the halfway point of the lifetime but not expired.
func (s *Session) RenewableAt(t time.Time) bool {
	return !s.IsExpiredAt(t) && t.After(s.ExpiresAt.Add(-SessionRenewWindow))
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token fingerprint.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// ExtendExpiry moves a session's expiry forward in place.
	// Returns ErrNotFound if no session has the fingerprint.
	ExtendExpiry(ctx context.Context, tokenHash string, expiresAt time.Time) error

	// Delete removes a session by its token fingerprint.
	// Returns ErrNotFound if no row was deleted.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByUser removes all sessions for a user. Deleting zero rows is
	// not an error.
	DeleteByUser(ctx context.Context, userID ulid.ULID) error

	// DeleteExpired removes all expired sessions and returns the count of
	// deleted records. Expiry is otherwise enforced lazily at validation;
	// this exists for operators, nothing in-process schedules it.
	DeleteExpired(ctx context.Context) (int64, error)
}
