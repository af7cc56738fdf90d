// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

// Package mocks provides testify mocks for the team repositories.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/repstack/repstack/internal/team"
)

// mockConstructorTestingT is the subset of *testing.T the constructors need.
type mockConstructorTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockTeamRepository mocks team.TeamRepository.
type MockTeamRepository struct {
	mock.Mock
}

// NewMockTeamRepository creates a MockTeamRepository that asserts its
// expectations at test cleanup.
func NewMockTeamRepository(t mockConstructorTestingT) *MockTeamRepository {
	m := &MockTeamRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTeamRepository) Create(ctx context.Context, t *team.Team) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTeamRepository) GetByID(ctx context.Context, id ulid.ULID) (*team.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*team.Team), args.Error(1)
}

// MockMembershipRepository mocks team.MembershipRepository.
type MockMembershipRepository struct {
	mock.Mock
}

// NewMockMembershipRepository creates a MockMembershipRepository that
// asserts its expectations at test cleanup.
func NewMockMembershipRepository(t mockConstructorTestingT) *MockMembershipRepository {
	m := &MockMembershipRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *team.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) Get(ctx context.Context, teamID, userID ulid.ULID) (*team.Membership, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*team.Membership), args.Error(1)
}

func (m *MockMembershipRepository) ListByTeam(ctx context.Context, teamID ulid.ULID) ([]*team.Membership, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*team.Membership), args.Error(1)
}

// MockInvitationRepository mocks team.InvitationRepository.
type MockInvitationRepository struct {
	mock.Mock
}

// NewMockInvitationRepository creates a MockInvitationRepository that
// asserts its expectations at test cleanup.
func NewMockInvitationRepository(t mockConstructorTestingT) *MockInvitationRepository {
	m := &MockInvitationRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockInvitationRepository) Create(ctx context.Context, invitation *team.Invitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockInvitationRepository) GetByTeamAndEmail(ctx context.Context, teamID ulid.ULID, email string) (*team.Invitation, error) {
	args := m.Called(ctx, teamID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*team.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) Consume(ctx context.Context, tokenHash string) (*team.Invitation, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*team.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
