// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package team_test

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repstack/repstack/internal/team"
	"github.com/repstack/repstack/pkg/errutil"
)

func TestNewTeam(t *testing.T) {
	t.Run("valid team", func(t *testing.T) {
		owner := ulid.Make()
		tm, err := team.NewTeam("Garage Gym Crew", owner)
		require.NoError(t, err)
		assert.Equal(t, "Garage Gym Crew", tm.Name)
		assert.Equal(t, owner, tm.OwnerID)
		assert.NotZero(t, tm.ID)
	})

	t.Run("short name rejected", func(t *testing.T) {
		_, err := team.NewTeam("x", ulid.Make())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TEAM_INVALID_NAME")
	})

	t.Run("long name rejected", func(t *testing.T) {
		_, err := team.NewTeam(strings.Repeat("x", team.MaxTeamNameLength+1), ulid.Make())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TEAM_INVALID_NAME")
	})

	t.Run("zero owner rejected", func(t *testing.T) {
		_, err := team.NewTeam("Garage Gym Crew", ulid.ULID{})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TEAM_INVALID_OWNER")
	})
}

func TestNewInvitation(t *testing.T) {
	teamID := ulid.Make()
	inviterID := ulid.Make()
	expiry := time.Now().Add(team.InvitationTTL)

	t.Run("valid invitation normalizes email", func(t *testing.T) {
		inv, err := team.NewInvitation(teamID, "  Friend@Example.COM ", inviterID, "somehash", expiry)
		require.NoError(t, err)
		assert.Equal(t, "friend@example.com", inv.Email)
		assert.Equal(t, teamID, inv.TeamID)
		assert.Equal(t, inviterID, inv.InviterID)
		assert.Equal(t, "somehash", inv.TokenHash)
	})

	t.Run("zero team rejected", func(t *testing.T) {
		_, err := team.NewInvitation(ulid.ULID{}, "a@b.co", inviterID, "somehash", expiry)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVITE_INVALID_TEAM")
	})

	t.Run("zero inviter rejected", func(t *testing.T) {
		_, err := team.NewInvitation(teamID, "a@b.co", ulid.ULID{}, "somehash", expiry)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVITE_INVALID_INVITER")
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		_, err := team.NewInvitation(teamID, "not-an-email", inviterID, "somehash", expiry)
		require.Error(t, err)
	})

	t.Run("empty hash rejected", func(t *testing.T) {
		_, err := team.NewInvitation(teamID, "a@b.co", inviterID, "", expiry)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVITE_INVALID_HASH")
	})

	t.Run("zero expiry rejected", func(t *testing.T) {
		_, err := team.NewInvitation(teamID, "a@b.co", inviterID, "somehash", time.Time{})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVITE_INVALID_EXPIRY")
	})
}

func TestInvitation_IsExpired(t *testing.T) {
	inv := &team.Invitation{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, inv.IsExpired())

	inv.ExpiresAt = time.Now().Add(-time.Second)
	assert.True(t, inv.IsExpired())
}
