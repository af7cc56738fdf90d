// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/repstack/repstack/internal/store"
	"github.com/repstack/repstack/internal/team"
	"github.com/repstack/repstack/internal/team/postgres"
)

// testPool is the shared database pool for integration tests.
var testPool *pgxpool.Pool

// TestMain sets up a PostgreSQL testcontainer and runs all migrations.
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("repstack_test"),
		pgcontainer.WithUsername("repstack"),
		pgcontainer.WithPassword("repstack"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}
	_ = migrator.Close()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create pool: " + err.Error())
	}
	testPool = pool

	code := m.Run()

	pool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

// createTestUser persists a user row for membership foreign keys.
func createTestUser(ctx context.Context, t *testing.T) ulid.ULID {
	t.Helper()
	userID := ulid.Make()
	_, err := testPool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, formula, dashboard_id, created_at, updated_at)
		VALUES ($1, $2, 'Sam Lifter', 'testhash', 'epley', $3, NOW(), NOW())
	`, userID.String(), userID.String()+"@example.com", ulid.Make().String())
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID.String())
	})
	return userID
}

// createTestTeam persists a team owned by a fresh user.
func createTestTeam(ctx context.Context, t *testing.T) *team.Team {
	t.Helper()
	ownerID := createTestUser(ctx, t)
	tm, err := team.NewTeam("Garage Gym Crew", ownerID)
	require.NoError(t, err)
	require.NoError(t, postgres.NewTeamRepository(testPool).Create(ctx, tm))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, tm.ID.String())
	})
	return tm
}

func TestTeamRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewTeamRepository(testPool)

	t.Run("round trips a team", func(t *testing.T) {
		tm := createTestTeam(ctx, t)

		got, err := repo.GetByID(ctx, tm.ID)
		require.NoError(t, err)
		assert.Equal(t, tm.Name, got.Name)
		assert.Equal(t, tm.OwnerID, got.OwnerID)
	})

	t.Run("unknown team maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, ulid.Make())
		require.Error(t, err)
		assert.ErrorIs(t, err, team.ErrNotFound)
	})
}

func TestMembershipRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewMembershipRepository(testPool)

	t.Run("duplicate membership maps to ErrAlreadyMember", func(t *testing.T) {
		tm := createTestTeam(ctx, t)
		userID := createTestUser(ctx, t)

		m := &team.Membership{TeamID: tm.ID, UserID: userID, Role: team.RoleMember, CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, m))

		err := repo.Create(ctx, m)
		require.Error(t, err)
		assert.ErrorIs(t, err, team.ErrAlreadyMember)
	})

	t.Run("lists members oldest first", func(t *testing.T) {
		tm := createTestTeam(ctx, t)
		first := createTestUser(ctx, t)
		second := createTestUser(ctx, t)

		require.NoError(t, repo.Create(ctx, &team.Membership{
			TeamID: tm.ID, UserID: first, Role: team.RoleOwner, CreatedAt: time.Now().Add(-time.Hour),
		}))
		require.NoError(t, repo.Create(ctx, &team.Membership{
			TeamID: tm.ID, UserID: second, Role: team.RoleMember, CreatedAt: time.Now(),
		}))

		members, err := repo.ListByTeam(ctx, tm.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, first, members[0].UserID)
		assert.Equal(t, second, members[1].UserID)
	})
}

func TestInvitationRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewInvitationRepository(testPool)

	newInvitation := func(t *testing.T, tm *team.Team) *team.Invitation {
		t.Helper()
		inv, err := team.NewInvitation(tm.ID, ulid.Make().String()+"@example.com", tm.OwnerID,
			ulid.Make().String(), time.Now().Add(team.InvitationTTL))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, inv))
		return inv
	}

	t.Run("consume is single use", func(t *testing.T) {
		tm := createTestTeam(ctx, t)
		inv := newInvitation(t, tm)

		got, err := repo.Consume(ctx, inv.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, inv.Email, got.Email)
		assert.Equal(t, tm.ID, got.TeamID)

		_, err = repo.Consume(ctx, inv.TokenHash)
		require.Error(t, err)
		assert.ErrorIs(t, err, team.ErrNotFound)
	})

	t.Run("one pending invitation per team and email", func(t *testing.T) {
		tm := createTestTeam(ctx, t)
		inv := newInvitation(t, tm)

		dup, err := team.NewInvitation(tm.ID, inv.Email, tm.OwnerID,
			ulid.Make().String(), time.Now().Add(team.InvitationTTL))
		require.NoError(t, err)

		err = repo.Create(ctx, dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, team.ErrInvitePending)
	})

	t.Run("looks up by team and email", func(t *testing.T) {
		tm := createTestTeam(ctx, t)
		inv := newInvitation(t, tm)

		got, err := repo.GetByTeamAndEmail(ctx, tm.ID, inv.Email)
		require.NoError(t, err)
		assert.Equal(t, inv.TokenHash, got.TokenHash)
	})
}
