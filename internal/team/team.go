// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

// Package team implements training teams, memberships, and single-use
// invitation tokens.
package team

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Team name constraints.
const (
	MinTeamNameLength = 2
	MaxTeamNameLength = 60
)

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Team is a group of accounts training together.
type Team struct {
	ID        ulid.ULID
	Name      string
	OwnerID   ulid.ULID
	CreatedAt time.Time
}

// NewTeam creates a validated Team instance.
func NewTeam(name string, ownerID ulid.ULID) (*Team, error) {
	if len(name) < MinTeamNameLength || len(name) > MaxTeamNameLength {
		return nil, oops.Code("TEAM_INVALID_NAME").
			With("min", MinTeamNameLength).
			With("max", MaxTeamNameLength).
			Errorf("team name must be between %d and %d characters", MinTeamNameLength, MaxTeamNameLength)
	}
	if ownerID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TEAM_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}

	return &Team{
		ID:        ulid.Make(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}, nil
}

// Membership ties an account to a team.
type Membership struct {
	TeamID    ulid.ULID
	UserID    ulid.ULID
	Role      string
	CreatedAt time.Time
}

// TeamRepository manages team persistence.
type TeamRepository interface {
	// Create stores a new team.
	Create(ctx context.Context, team *Team) error

	// GetByID retrieves a team by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Team, error)
}

// MembershipRepository manages team membership persistence.
type MembershipRepository interface {
	// Create stores a new membership. Returns ErrAlreadyMember if the
	// user already belongs to the team.
	Create(ctx context.Context, membership *Membership) error

	// Get retrieves one membership.
	Get(ctx context.Context, teamID, userID ulid.ULID) (*Membership, error)

	// ListByTeam retrieves all memberships of a team.
	ListByTeam(ctx context.Context, teamID ulid.ULID) ([]*Membership, error)
}
