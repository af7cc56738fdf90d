// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// VerificationCodeTTL is the lifetime of an email verification code.
const VerificationCodeTTL = 10 * time.Minute

// EmailVerification represents the live verification code for an account.
// One per account: re-requesting replaces it.
type EmailVerification struct {
	UserID    ulid.ULID
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewEmailVerification creates a validated EmailVerification instance.
func NewEmailVerification(userID ulid.ULID, codeHash string, expiresAt time.Time) (*EmailVerification, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("VERIFY_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if codeHash == "" {
		return nil, oops.Code("VERIFY_INVALID_HASH").Errorf("code hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("VERIFY_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &EmailVerification{
		UserID:    userID,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the verification code has expired.
func (v *EmailVerification) IsExpired() bool {
	return !time.Now().Before(v.ExpiresAt)
}

// VerificationRepository manages email verification code persistence.
type VerificationRepository interface {
	// Create stores a verification code, replacing any existing one for
	// the user.
	Create(ctx context.Context, verification *EmailVerification) error

	// GetByUser retrieves the live code for a user.
	GetByUser(ctx context.Context, userID ulid.ULID) (*EmailVerification, error)

	// Delete removes the code for a user. Returns ErrNotFound if no row
	// was deleted, so concurrent confirmations cannot both succeed.
	Delete(ctx context.Context, userID ulid.ULID) error

	// DeleteExpired removes all expired codes.
	DeleteExpired(ctx context.Context) (int64, error)
}
