// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// VerificationService issues and confirms email verification codes.
type VerificationService struct {
	users    UserRepository
	codes    VerificationRepository
	sessions *SessionService
	logger   *slog.Logger
}

// NewVerificationService creates a VerificationService.
func NewVerificationService(
	users UserRepository,
	codes VerificationRepository,
	sessions *SessionService,
	logger *slog.Logger,
) (*VerificationService, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if codes == nil {
		return nil, oops.Errorf("codes repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationService{
		users:    users,
		codes:    codes,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// Request issues a fresh 6-digit code for the account, replacing any code
// already outstanding, and returns the plaintext code for delivery by the
// caller. Rate limiting repeated requests is the HTTP layer's job.
func (s *VerificationService) Request(ctx context.Context, userID ulid.ULID) (string, *User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, oops.Code("VERIFY_USER_NOT_FOUND").Wrap(err)
		}
		return "", nil, oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "get user").
			Wrap(err)
	}
	if user.Verified() {
		return "", nil, oops.Code("VERIFY_ALREADY_VERIFIED").Wrap(ErrAlreadyVerified)
	}

	code, hash, err := GenerateCode()
	if err != nil {
		return "", nil, oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "generate code").
			Wrap(err)
	}

	verification, err := NewEmailVerification(userID, hash, time.Now().Add(VerificationCodeTTL))
	if err != nil {
		return "", nil, oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "build verification").
			Wrap(err)
	}

	if err := s.codes.Create(ctx, verification); err != nil {
		return "", nil, oops.Code("VERIFY_REQUEST_FAILED").
			With("operation", "persist verification").
			Wrap(err)
	}

	return code, user, nil
}

// Confirm checks a candidate code for the account. Malformed candidates
// are rejected before the store is touched; mismatch, absence, and expiry
// all surface as the same ErrInvalidCode. On success the code is consumed,
// the account's email-verified timestamp is stamped, and a fresh session
// is minted so the now-verified user is immediately signed in.
func (s *VerificationService) Confirm(ctx context.Context, userID ulid.ULID, candidate string) (*Session, string, error) {
	if !ValidCodeFormat(candidate) {
		return nil, "", oops.Code("VERIFY_CODE_INVALID").Wrap(ErrInvalidCode)
	}

	verification, err := s.codes.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", oops.Code("VERIFY_CODE_INVALID").Wrap(ErrInvalidCode)
		}
		return nil, "", oops.Code("VERIFY_CONFIRM_FAILED").
			With("operation", "get verification").
			Wrap(err)
	}

	if !VerifyToken(candidate, verification.CodeHash) {
		return nil, "", oops.Code("VERIFY_CODE_INVALID").Wrap(ErrInvalidCode)
	}
	if verification.IsExpired() {
		return nil, "", oops.Code("VERIFY_CODE_INVALID").Wrap(ErrInvalidCode)
	}

	// Single-use gate: whoever deletes the row wins; everyone else sees
	// not-found and gets the generic error.
	if err := s.codes.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", oops.Code("VERIFY_CODE_INVALID").Wrap(ErrInvalidCode)
		}
		return nil, "", oops.Code("VERIFY_CONFIRM_FAILED").
			With("operation", "consume verification").
			Wrap(err)
	}

	if err := s.users.MarkEmailVerified(ctx, userID, time.Now()); err != nil {
		return nil, "", oops.Code("VERIFY_CONFIRM_FAILED").
			With("operation", "mark email verified").
			Wrap(err)
	}

	session, token, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return nil, "", oops.Code("VERIFY_CONFIRM_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	return session, token, nil
}
