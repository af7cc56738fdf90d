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

	"github.com/repstack/repstack/pkg/errutil"
)

// Identity is the result of a successful session validation: the session
// plus the minimal account projection callers need, so validation does not
// force a second round trip.
type Identity struct {
	Session       *Session
	UserID        ulid.ULID
	DisplayName   string
	EmailVerified bool
	Formula       Formula
	DashboardID   ulid.ULID
}

// SessionService issues, validates, and revokes web sessions.
type SessionService struct {
	sessions SessionRepository
	users    UserRepository
	logger   *slog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions SessionRepository, users UserRepository, logger *slog.Logger) (*SessionService, error) {
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		sessions: sessions,
		users:    users,
		logger:   logger,
	}, nil
}

// Create mints a session for the user and returns it with the plaintext
// token destined for the client's cookie. Accounts may hold any number of
// concurrent sessions, one per device.
func (s *SessionService) Create(ctx context.Context, userID ulid.ULID) (*Session, string, error) {
	token, hash, err := GenerateToken(SessionTokenBytes)
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(userID, hash, time.Now().Add(SessionTTL))
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "build session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return session, token, nil
}

// Validate checks a plaintext session token and returns the caller's
// identity, or (nil, nil) when the token is absent, unknown, or expired —
// unauthenticated is a state, not an error.
//
// Expired sessions are deleted on the spot instead of by a background
// sweep. A validation landing within SessionRenewWindow of expiry extends
// the session in place; the token the client holds does not change, so two
// racing renewals are harmless (last write wins).
func (s *SessionService) Validate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}

	hash := HashToken(token)

	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_VALIDATE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	now := time.Now()
	if session.IsExpiredAt(now) {
		if delErr := s.sessions.Delete(ctx, session.TokenHash); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			errutil.LogError(s.logger, "failed to delete expired session", delErr)
		}
		return nil, nil
	}

	if session.RenewableAt(now) {
		renewed := now.Add(SessionTTL)
		extErr := s.sessions.ExtendExpiry(ctx, session.TokenHash, renewed)
		switch {
		case extErr == nil:
			session.ExpiresAt = renewed
		case errors.Is(extErr, ErrNotFound):
			// Session was revoked between lookup and renewal.
			return nil, nil
		default:
			// Renewal is best effort; the session is still valid until its
			// current expiry.
			errutil.LogError(s.logger, "failed to renew session", extErr)
		}
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Account deleted out from under the session; clean up.
			if delErr := s.sessions.Delete(ctx, session.TokenHash); delErr != nil && !errors.Is(delErr, ErrNotFound) {
				errutil.LogError(s.logger, "failed to delete orphaned session", delErr)
			}
			return nil, nil
		}
		return nil, oops.Code("SESSION_VALIDATE_FAILED").
			With("operation", "get session user").
			Wrap(err)
	}

	return &Identity{
		Session:       session,
		UserID:        user.ID,
		DisplayName:   user.DisplayName,
		EmailVerified: user.Verified(),
		Formula:       user.Formula,
		DashboardID:   user.DashboardID,
	}, nil
}

// Remove deletes one session by its token fingerprint (single-device
// sign-out). Returns an error wrapping ErrNotFound if absent.
func (s *SessionService) Remove(ctx context.Context, tokenHash string) error {
	err := s.sessions.Delete(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SESSION_NOT_FOUND").Wrap(err)
		}
		return oops.Code("SESSION_REMOVE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// RemoveByUser deletes every session for an account, forcing
// re-authentication on all devices. Used when credentials change.
func (s *SessionService) RemoveByUser(ctx context.Context, userID ulid.ULID) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return oops.Code("SESSION_REMOVE_BY_USER_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}
