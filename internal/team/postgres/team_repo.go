// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/repstack/repstack/internal/team"
)

// TeamRepository implements team.TeamRepository using PostgreSQL.
type TeamRepository struct {
	pool poolIface
}

// NewTeamRepository creates a new TeamRepository.
func NewTeamRepository(pool poolIface) *TeamRepository {
	return &TeamRepository{pool: pool}
}

// Create persists a new team.
func (r *TeamRepository) Create(ctx context.Context, t *team.Team) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO teams (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, t.ID.String(), t.Name, t.OwnerID.String(), t.CreatedAt)
	if err != nil {
		return oops.With("operation", "create team").With("id", t.ID.String()).Wrap(err)
	}
	return nil
}

// GetByID retrieves a team by ID.
func (r *TeamRepository) GetByID(ctx context.Context, id ulid.ULID) (*team.Team, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at FROM teams WHERE id = $1
	`, id.String())

	var t team.Team
	var idStr, ownerStr string
	err := row.Scan(&idStr, &t.Name, &ownerStr, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TEAM_NOT_FOUND").With("id", id.String()).Wrap(team.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get team").With("id", id.String()).Wrap(err)
	}

	t.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse team id").With("id", idStr).Wrap(err)
	}
	t.OwnerID, err = ulid.Parse(ownerStr)
	if err != nil {
		return nil, oops.With("operation", "parse team owner id").With("owner_id", ownerStr).Wrap(err)
	}
	return &t, nil
}

// MembershipRepository implements team.MembershipRepository using
// PostgreSQL.
type MembershipRepository struct {
	pool poolIface
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(pool poolIface) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// Create persists a new membership. Returns team.ErrAlreadyMember if the
// user already belongs to the team.
func (r *MembershipRepository) Create(ctx context.Context, m *team.Membership) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, m.TeamID.String(), m.UserID.String(), m.Role, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("MEMBER_DUPLICATE").
				With("team_id", m.TeamID.String()).
				With("user_id", m.UserID.String()).
				Wrap(team.ErrAlreadyMember)
		}
		return oops.With("operation", "create membership").Wrap(err)
	}
	return nil
}

// Get retrieves one membership.
func (r *MembershipRepository) Get(ctx context.Context, teamID, userID ulid.ULID) (*team.Membership, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT team_id, user_id, role, created_at
		FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID.String(), userID.String())

	m, err := scanMembershipRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MEMBER_NOT_FOUND").Wrap(team.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get membership").Wrap(err)
	}
	return m, nil
}

// ListByTeam retrieves all memberships of a team, oldest first.
func (r *MembershipRepository) ListByTeam(ctx context.Context, teamID ulid.ULID) ([]*team.Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT team_id, user_id, role, created_at
		FROM team_members WHERE team_id = $1 ORDER BY created_at ASC
	`, teamID.String())
	if err != nil {
		return nil, oops.With("operation", "list memberships").With("team_id", teamID.String()).Wrap(err)
	}
	defer rows.Close()

	var members []*team.Membership
	for rows.Next() {
		m, err := scanMembershipRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan membership row").Wrap(err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate memberships").Wrap(err)
	}
	return members, nil
}

// scanMembershipRow scans a single membership from a row.
func scanMembershipRow(row pgx.Row) (*team.Membership, error) {
	var m team.Membership
	var teamStr, userStr string

	if err := row.Scan(&teamStr, &userStr, &m.Role, &m.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	m.TeamID, err = ulid.Parse(teamStr)
	if err != nil {
		return nil, oops.With("operation", "parse membership team id").With("team_id", teamStr).Wrap(err)
	}
	m.UserID, err = ulid.Parse(userStr)
	if err != nil {
		return nil, oops.With("operation", "parse membership user id").With("user_id", userStr).Wrap(err)
	}
	return &m, nil
}
