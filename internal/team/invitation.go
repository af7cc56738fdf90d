// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package team

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/repstack/repstack/internal/auth"
)

// Invitation token configuration. Invitations live longer than reset
// tokens because the invitee may not check email for days.
const (
	InvitationTokenBytes = 32 // 32 bytes = 64 hex chars
	InvitationTTL        = 7 * 24 * time.Hour
)

// Invitation is a pending, single-use invite of an email address into a
// team. Identified by its token fingerprint; the raw token travels only in
// the invite email.
type Invitation struct {
	TokenHash string
	TeamID    ulid.ULID
	Email     string
	InviterID ulid.ULID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewInvitation creates a validated Invitation instance. The email is
// normalized so the (team, email) uniqueness check is case-insensitive.
func NewInvitation(teamID ulid.ULID, email string, inviterID ulid.ULID, tokenHash string, expiresAt time.Time) (*Invitation, error) {
	if teamID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("INVITE_INVALID_TEAM").Errorf("team ID cannot be zero")
	}
	if inviterID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("INVITE_INVALID_INVITER").Errorf("inviter ID cannot be zero")
	}
	email = auth.NormalizeEmail(email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if tokenHash == "" {
		return nil, oops.Code("INVITE_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("INVITE_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &Invitation{
		TokenHash: tokenHash,
		TeamID:    teamID,
		Email:     email,
		InviterID: inviterID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the invitation has expired.
func (i *Invitation) IsExpired() bool {
	return !time.Now().Before(i.ExpiresAt)
}

// InvitationRepository manages invitation persistence.
type InvitationRepository interface {
	// Create stores a new invitation. Returns ErrInvitePending if the
	// (team, email) pair already has one.
	Create(ctx context.Context, invitation *Invitation) error

	// GetByTeamAndEmail retrieves the pending invitation for a team and
	// email, if any.
	GetByTeamAndEmail(ctx context.Context, teamID ulid.ULID, email string) (*Invitation, error)

	// Consume atomically deletes the invitation with the given fingerprint
	// and returns it. Returns ErrNotFound if no row was deleted.
	Consume(ctx context.Context, tokenHash string) (*Invitation, error)

	// DeleteExpired removes all expired invitations.
	DeleteExpired(ctx context.Context) (int64, error)
}
