// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/repstack/repstack/pkg/errutil"
)

// AccountService handles sign-up and sign-in.
type AccountService struct {
	users    UserRepository
	sessions *SessionService
	codes    *VerificationService
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(
	users UserRepository,
	sessions *SessionService,
	codes *VerificationService,
	hasher PasswordHasher,
	logger *slog.Logger,
) (*AccountService, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session service is required")
	}
	if codes == nil {
		return nil, oops.Errorf("verification service is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:    users,
		sessions: sessions,
		codes:    codes,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// dummyPasswordHash is verified against when a user doesn't exist, so the
// response time does not reveal whether the email is registered. It is a
// fake hash that can never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates an account and issues its first email verification
// code. The returned code is for delivery by the caller; the account stays
// unverified until the code is confirmed.
func (s *AccountService) Register(ctx context.Context, email, password, displayName string) (*User, string, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", oops.Code("REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, displayName, passwordHash)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, "", oops.Code("REGISTER_EMAIL_TAKEN").Wrap(err)
		}
		return nil, "", oops.Code("REGISTER_FAILED").
			With("operation", "persist user").
			Wrap(err)
	}

	code, _, err := s.codes.Request(ctx, user.ID)
	if err != nil {
		return nil, "", oops.Code("REGISTER_FAILED").
			With("operation", "issue verification code").
			Wrap(err)
	}

	return user, code, nil
}

// Login authenticates an account and mints a session. The password check
// runs even for unknown emails (against a dummy hash) so response timing
// does not leak which emails exist, and the lockout check runs after it
// for the same reason. Failures carry the rate limit state (retry delay,
// CAPTCHA requirement, lockout remainder) as error context for the
// transport layer to surface.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, string, error) {
	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	var targetHash string
	var userExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			targetHash = dummyPasswordHash
		} else {
			return nil, "", oops.Code("LOGIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, "", oops.Code("LOGIN_INVALID_CREDENTIALS").Errorf("invalid email or password")
		}
		return nil, "", oops.Code("LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		if userExists {
			user.RecordFailure()
			if updErr := s.users.Update(ctx, user); updErr != nil {
				errutil.LogError(s.logger, "failed to record login failure", updErr)
			}
			limit := CheckFailures(user.FailedAttempts, user.LockedUntil)
			retryAfter := limit.Delay
			if limit.IsLockedOut {
				retryAfter = limit.LockoutRemaining
			}
			return nil, "", oops.Code("LOGIN_INVALID_CREDENTIALS").
				With("retry_after", retryAfter).
				With("requires_captcha", limit.RequiresCaptcha).
				Errorf("invalid email or password")
		}
		return nil, "", oops.Code("LOGIN_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	if user.IsLocked() {
		limit := CheckFailures(user.FailedAttempts, user.LockedUntil)
		return nil, "", oops.Code("LOGIN_ACCOUNT_LOCKED").
			With("locked_until", user.LockedUntil).
			With("retry_after", limit.LockoutRemaining).
			Errorf("account is temporarily locked")
	}

	user.RecordSuccess()

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			user.PasswordHash = newHash
		}
	}

	// Best effort: login succeeds even if the counter reset doesn't stick.
	if updErr := s.users.Update(ctx, user); updErr != nil {
		errutil.LogError(s.logger, "failed to update user after login", updErr)
	}

	session, token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", oops.Code("LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	return session, token, nil
}
