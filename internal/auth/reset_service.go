// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/repstack/repstack/pkg/errutil"
)

// ResetRequest is the result of requesting a password reset: the plaintext
// token plus the data the caller needs to render the email. The service
// never sends email itself.
type ResetRequest struct {
	Token string
	User  *User
}

// ResetService handles password reset operations.
type ResetService struct {
	users    UserRepository
	resets   ResetRepository
	sessions *SessionService
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewResetService creates a ResetService.
func NewResetService(
	users UserRepository,
	resets ResetRepository,
	sessions *SessionService,
	hasher PasswordHasher,
	logger *slog.Logger,
) (*ResetService, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if resets == nil {
		return nil, oops.Errorf("resets repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session service is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetService{
		users:    users,
		resets:   resets,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// Request issues a password reset token for the account with the given
// email. Any prior outstanding reset for the account is invalidated first,
// so only the newest token works. If the email is unknown the call returns
// (nil, nil) to prevent address enumeration — the caller shows the same
// "check your inbox" response either way.
func (s *ResetService) Request(ctx context.Context, email string) (*ResetRequest, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	// At most one live reset per account.
	if err := s.resets.DeleteByUser(ctx, user.ID); err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "invalidate prior resets").
			Wrap(err)
	}

	token, hash, err := GenerateToken(ResetTokenBytes)
	if err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	reset, err := NewPasswordReset(user.ID, hash, time.Now().Add(ResetTokenTTL))
	if err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "build reset").
			Wrap(err)
	}

	if err := s.resets.Create(ctx, reset); err != nil {
		return nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "persist reset").
			Wrap(err)
	}

	return &ResetRequest{Token: token, User: user}, nil
}

// Consume authorizes a password change with a reset token. The token is
// single-use: the delete-returning consume is the gate, so a replay or a
// concurrent duplicate sees zero rows and fails. On success the account's
// password hash is replaced and every session for the account is revoked
// so a hijacked session cannot outlive the reset.
//
// Not-found and expired both surface as ErrInvalidToken; callers must not
// reveal which case occurred.
func (s *ResetService) Consume(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return oops.Code("RESET_PASSWORD_EMPTY").Errorf("new password cannot be empty")
	}
	if token == "" {
		return oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidToken)
	}

	hash := HashToken(token)

	reset, err := s.resets.Consume(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidToken)
		}
		return wrapInternal("RESET_CONSUME_FAILED", "consume reset", err)
	}

	// The row is already gone, which is the lazy cleanup the expiry model
	// wants; the caller still gets the generic error.
	if reset.IsExpired() {
		return oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidToken)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return wrapInternal("RESET_CONSUME_FAILED", "hash new password", err)
	}

	if err := s.users.UpdatePassword(ctx, reset.UserID, passwordHash); err != nil {
		return wrapInternal("RESET_CONSUME_FAILED", "update password", err)
	}

	// Revoke all sessions so the credential change takes effect everywhere.
	// The password is already changed; a revocation failure must not undo
	// that, but it has to be visible for reconciliation.
	if err := s.sessions.RemoveByUser(ctx, reset.UserID); err != nil {
		errutil.LogError(s.logger, "failed to revoke sessions after password reset", err)
	}

	return nil
}

// wrapInternal wraps an unexpected dependency failure with code and operation.
func wrapInternal(code, operation string, err error) error {
	return oops.Code(code).With("operation", operation).Wrap(err)
}
