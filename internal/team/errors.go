// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package team

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInviteInvalid covers unknown, expired, and already-consumed invitation
// tokens alike; callers cannot tell which case they hit.
var ErrInviteInvalid = errors.New("invalid or expired invitation")

// ErrInvitePending is returned when the (team, email) pair already has an
// outstanding invitation.
var ErrInvitePending = errors.New("invitation already pending")

// ErrAlreadyMember is returned when the account already belongs to the team.
var ErrAlreadyMember = errors.New("already a team member")
