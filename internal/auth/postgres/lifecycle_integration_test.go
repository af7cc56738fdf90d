// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repstack/repstack/internal/auth"
	"github.com/repstack/repstack/internal/auth/postgres"
)

// createTestUser persists a fresh user and removes it at cleanup.
func createTestUser(ctx context.Context, t *testing.T) *auth.User {
	t.Helper()
	user, err := auth.NewUser(ulid.Make().String()+"@example.com", "Sam Lifter", "hashedpw")
	require.NoError(t, err)

	repo := postgres.NewUserRepository(testPool)
	require.NoError(t, repo.Create(ctx, user))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID.String())
	})
	return user
}

func TestUserRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	t.Run("round trips a user", func(t *testing.T) {
		user := createTestUser(ctx, t)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, user.DisplayName, got.DisplayName)
		assert.Equal(t, user.Formula, got.Formula)
		assert.Equal(t, user.DashboardID, got.DashboardID)
		assert.False(t, got.Verified())

		byEmail, err := repo.GetByEmail(ctx, got.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		user := createTestUser(ctx, t)

		dup, err := auth.NewUser(user.Email, "Copy Cat", "otherhash")
		require.NoError(t, err)

		err = repo.Create(ctx, dup)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrDuplicate)
	})

	t.Run("marks email verified", func(t *testing.T) {
		user := createTestUser(ctx, t)

		require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, time.Now()))

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Verified())
	})

	t.Run("unknown user maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, ulid.Make())
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewSessionRepository(testPool)

	newSession := func(t *testing.T, userID ulid.ULID) *auth.Session {
		t.Helper()
		session, err := auth.NewSession(userID, auth.HashToken(ulid.Make().String()),
			time.Now().Add(auth.SessionTTL))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, session))
		return session
	}

	t.Run("round trips and extends a session", func(t *testing.T) {
		user := createTestUser(ctx, t)
		session := newSession(t, user.ID)

		got, err := repo.GetByTokenHash(ctx, session.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.UserID)

		newExpiry := time.Now().Add(auth.SessionTTL).UTC().Truncate(time.Microsecond)
		require.NoError(t, repo.ExtendExpiry(ctx, session.TokenHash, newExpiry))

		got, err = repo.GetByTokenHash(ctx, session.TokenHash)
		require.NoError(t, err)
		assert.WithinDuration(t, newExpiry, got.ExpiresAt, time.Second)
	})

	t.Run("delete is single shot", func(t *testing.T) {
		user := createTestUser(ctx, t)
		session := newSession(t, user.ID)

		require.NoError(t, repo.Delete(ctx, session.TokenHash))

		err := repo.Delete(ctx, session.TokenHash)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("deleting a user cascades to sessions", func(t *testing.T) {
		user := createTestUser(ctx, t)
		session := newSession(t, user.ID)

		_, err := testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID.String())
		require.NoError(t, err)

		_, err = repo.GetByTokenHash(ctx, session.TokenHash)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("sweeps expired sessions", func(t *testing.T) {
		user := createTestUser(ctx, t)
		expired, err := auth.NewSession(user.ID, auth.HashToken(ulid.Make().String()),
			time.Now().Add(time.Millisecond))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, expired))
		time.Sleep(5 * time.Millisecond)

		deleted, err := repo.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, deleted, int64(1))
	})
}

func TestResetRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewResetRepository(testPool)

	t.Run("consume is single use", func(t *testing.T) {
		user := createTestUser(ctx, t)
		reset, err := auth.NewPasswordReset(user.ID, auth.HashToken("rawtoken"),
			time.Now().Add(auth.ResetTokenTTL))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, reset))

		got, err := repo.Consume(ctx, reset.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.UserID)

		_, err = repo.Consume(ctx, reset.TokenHash)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("one outstanding reset per user", func(t *testing.T) {
		user := createTestUser(ctx, t)
		first, err := auth.NewPasswordReset(user.ID, auth.HashToken("first"),
			time.Now().Add(auth.ResetTokenTTL))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		// The user_id unique constraint forces a delete before reissue.
		second, err := auth.NewPasswordReset(user.ID, auth.HashToken("second"),
			time.Now().Add(auth.ResetTokenTTL))
		require.NoError(t, err)
		require.Error(t, repo.Create(ctx, second))

		require.NoError(t, repo.DeleteByUser(ctx, user.ID))
		require.NoError(t, repo.Create(ctx, second))
	})
}

func TestVerificationRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewVerificationRepository(testPool)

	t.Run("reissue replaces the outstanding code", func(t *testing.T) {
		user := createTestUser(ctx, t)
		first, err := auth.NewEmailVerification(user.ID, auth.HashToken("111111"),
			time.Now().Add(auth.VerificationCodeTTL))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, first))

		second, err := auth.NewEmailVerification(user.ID, auth.HashToken("222222"),
			time.Now().Add(auth.VerificationCodeTTL))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, second))

		got, err := repo.GetByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, second.CodeHash, got.CodeHash)
	})

	t.Run("delete is single shot", func(t *testing.T) {
		user := createTestUser(ctx, t)
		verification, err := auth.NewEmailVerification(user.ID, auth.HashToken("123456"),
			time.Now().Add(auth.VerificationCodeTTL))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, verification))

		require.NoError(t, repo.Delete(ctx, user.ID))

		err = repo.Delete(ctx, user.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}
