// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package team

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/repstack/repstack/internal/auth"
)

// InvitationService issues and redeems team invitation tokens.
type InvitationService struct {
	teams       TeamRepository
	members     MembershipRepository
	invitations InvitationRepository
	users       auth.UserRepository
	logger      *slog.Logger
}

// NewInvitationService creates an InvitationService.
func NewInvitationService(
	teams TeamRepository,
	members MembershipRepository,
	invitations InvitationRepository,
	users auth.UserRepository,
	logger *slog.Logger,
) (*InvitationService, error) {
	if teams == nil {
		return nil, oops.Errorf("teams repository is required")
	}
	if members == nil {
		return nil, oops.Errorf("members repository is required")
	}
	if invitations == nil {
		return nil, oops.Errorf("invitations repository is required")
	}
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InvitationService{
		teams:       teams,
		members:     members,
		invitations: invitations,
		users:       users,
		logger:      logger,
	}, nil
}

// Invite issues a single-use invitation token for the email address and
// returns it alongside the stored invitation. Only existing team members
// can invite. If the invited email already belongs to a member, or the
// (team, email) pair already has a pending invitation, no token is issued.
// The membership and pending lookups give callers specific errors; the
// unique (team, email) index and the membership primary key are the gates
// that hold under concurrent invites.
func (s *InvitationService) Invite(ctx context.Context, teamID, inviterID ulid.ULID, email string) (*Invitation, string, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", oops.Code("INVITE_TEAM_NOT_FOUND").Wrap(err)
		}
		return nil, "", oops.Code("INVITE_FAILED").
			With("operation", "get team").
			Wrap(err)
	}

	if _, err := s.members.Get(ctx, teamID, inviterID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", oops.Code("INVITE_NOT_MEMBER").
				Errorf("inviter is not a member of the team")
		}
		return nil, "", oops.Code("INVITE_FAILED").
			With("operation", "check inviter membership").
			Wrap(err)
	}

	email = auth.NormalizeEmail(email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, "", err
	}

	// If the address already maps to a member, inviting it is a no-op.
	if invitee, err := s.users.GetByEmail(ctx, email); err == nil {
		if _, mErr := s.members.Get(ctx, teamID, invitee.ID); mErr == nil {
			return nil, "", oops.Code("INVITE_ALREADY_MEMBER").Wrap(ErrAlreadyMember)
		} else if !errors.Is(mErr, ErrNotFound) {
			return nil, "", oops.Code("INVITE_FAILED").
				With("operation", "check invitee membership").
				Wrap(mErr)
		}
	} else if !errors.Is(err, auth.ErrNotFound) {
		return nil, "", oops.Code("INVITE_FAILED").
			With("operation", "get invitee by email").
			Wrap(err)
	}

	// A live pending invite blocks reissue; an expired leftover is cleared
	// so the address can be invited again without waiting for a sweep.
	if existing, err := s.invitations.GetByTeamAndEmail(ctx, teamID, email); err == nil {
		if !existing.IsExpired() {
			return nil, "", oops.Code("INVITE_PENDING").Wrap(ErrInvitePending)
		}
		if _, cErr := s.invitations.Consume(ctx, existing.TokenHash); cErr != nil && !errors.Is(cErr, ErrNotFound) {
			return nil, "", oops.Code("INVITE_FAILED").
				With("operation", "clear expired invitation").
				Wrap(cErr)
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", oops.Code("INVITE_FAILED").
			With("operation", "check pending invitation").
			Wrap(err)
	}

	token, hash, err := auth.GenerateToken(InvitationTokenBytes)
	if err != nil {
		return nil, "", oops.Code("INVITE_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	invitation, err := NewInvitation(teamID, email, inviterID, hash, time.Now().Add(InvitationTTL))
	if err != nil {
		return nil, "", err
	}

	if err := s.invitations.Create(ctx, invitation); err != nil {
		if errors.Is(err, ErrInvitePending) {
			return nil, "", oops.Code("INVITE_PENDING").Wrap(err)
		}
		return nil, "", oops.Code("INVITE_FAILED").
			With("operation", "persist invitation").
			Wrap(err)
	}

	return invitation, token, nil
}

// Accept redeems an invitation token for the signed-in account and joins
// it to the team. The token is consumed first so a replayed accept loses
// the race and sees the generic invalid error. Joining does not touch the
// account's sessions.
func (s *InvitationService) Accept(ctx context.Context, token string, userID ulid.ULID) (*Membership, error) {
	if token == "" {
		return nil, oops.Code("INVITE_TOKEN_INVALID").Wrap(ErrInviteInvalid)
	}

	invitation, err := s.invitations.Consume(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("INVITE_TOKEN_INVALID").Wrap(ErrInviteInvalid)
		}
		return nil, oops.Code("INVITE_ACCEPT_FAILED").
			With("operation", "consume invitation").
			Wrap(err)
	}
	if invitation.IsExpired() {
		return nil, oops.Code("INVITE_TOKEN_INVALID").Wrap(ErrInviteInvalid)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, oops.Code("INVITE_ACCEPT_FAILED").
			With("operation", "get user").
			Wrap(err)
	}

	// The invite is bound to an address, not an account. Whoever holds the
	// token must be signed in under that address to redeem it.
	if auth.NormalizeEmail(user.Email) != invitation.Email {
		return nil, oops.Code("INVITE_TOKEN_INVALID").Wrap(ErrInviteInvalid)
	}

	membership := &Membership{
		TeamID:    invitation.TeamID,
		UserID:    userID,
		Role:      RoleMember,
		CreatedAt: time.Now(),
	}
	if err := s.members.Create(ctx, membership); err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			return nil, oops.Code("INVITE_ALREADY_MEMBER").Wrap(err)
		}
		return nil, oops.Code("INVITE_ACCEPT_FAILED").
			With("operation", "persist membership").
			Wrap(err)
	}

	return membership, nil
}

// CreateTeam creates a team and makes the creator its owner member.
func (s *InvitationService) CreateTeam(ctx context.Context, name string, ownerID ulid.ULID) (*Team, error) {
	t, err := NewTeam(name, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.teams.Create(ctx, t); err != nil {
		return nil, oops.Code("TEAM_CREATE_FAILED").
			With("operation", "persist team").
			Wrap(err)
	}
	membership := &Membership{
		TeamID:    t.ID,
		UserID:    ownerID,
		Role:      RoleOwner,
		CreatedAt: time.Now(),
	}
	if err := s.members.Create(ctx, membership); err != nil {
		return nil, oops.Code("TEAM_CREATE_FAILED").
			With("operation", "persist owner membership").
			Wrap(err)
	}
	return t, nil
}
