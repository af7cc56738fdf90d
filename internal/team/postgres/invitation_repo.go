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

// InvitationRepository implements team.InvitationRepository using
// PostgreSQL.
type InvitationRepository struct {
	pool poolIface
}

// NewInvitationRepository creates a new InvitationRepository.
func NewInvitationRepository(pool poolIface) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

// Create persists a new invitation. The unique (team_id, email) index
// surfaces as team.ErrInvitePending.
func (r *InvitationRepository) Create(ctx context.Context, inv *team.Invitation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO team_invitations (token_hash, team_id, email, inviter_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, inv.TokenHash, inv.TeamID.String(), inv.Email, inv.InviterID.String(), inv.ExpiresAt, inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("INVITE_PENDING").
				With("team_id", inv.TeamID.String()).
				Wrap(team.ErrInvitePending)
		}
		return oops.With("operation", "create invitation").Wrap(err)
	}
	return nil
}

// GetByTeamAndEmail retrieves the pending invitation for a team and email.
func (r *InvitationRepository) GetByTeamAndEmail(ctx context.Context, teamID ulid.ULID, email string) (*team.Invitation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token_hash, team_id, email, inviter_id, expires_at, created_at
		FROM team_invitations WHERE team_id = $1 AND email = $2
	`, teamID.String(), email)

	inv, err := scanInvitationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("INVITE_NOT_FOUND").Wrap(team.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get invitation").Wrap(err)
	}
	return inv, nil
}

// Consume atomically deletes the invitation with the given fingerprint and
// returns it. Concurrent accepts race on the DELETE; the loser sees
// team.ErrNotFound.
func (r *InvitationRepository) Consume(ctx context.Context, tokenHash string) (*team.Invitation, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM team_invitations WHERE token_hash = $1
		RETURNING token_hash, team_id, email, inviter_id, expires_at, created_at
	`, tokenHash)

	inv, err := scanInvitationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("INVITE_NOT_FOUND").Wrap(team.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "consume invitation").Wrap(err)
	}
	return inv, nil
}

// DeleteExpired removes all expired invitations.
func (r *InvitationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM team_invitations WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, oops.With("operation", "delete expired invitations").Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanInvitationRow scans a single invitation from a row.
func scanInvitationRow(row pgx.Row) (*team.Invitation, error) {
	var inv team.Invitation
	var teamStr, inviterStr string

	if err := row.Scan(&inv.TokenHash, &teamStr, &inv.Email, &inviterStr, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	inv.TeamID, err = ulid.Parse(teamStr)
	if err != nil {
		return nil, oops.With("operation", "parse invitation team id").With("team_id", teamStr).Wrap(err)
	}
	inv.InviterID, err = ulid.Parse(inviterStr)
	if err != nil {
		return nil, oops.With("operation", "parse invitation inviter id").With("inviter_id", inviterStr).Wrap(err)
	}
	return &inv, nil
}
