// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Display name constraints.
const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 50
)

// emailRegex is a permissive shape check; real validation happens when the
// verification code is delivered.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Formula identifies the one-rep-max estimation formula used to chart an
// account's strength progression.
type Formula string

// Supported estimation formulas.
const (
	FormulaEpley    Formula = "epley"
	FormulaBrzycki  Formula = "brzycki"
	FormulaLombardi Formula = "lombardi"
)

// DefaultFormula is applied to new accounts.
const DefaultFormula = FormulaEpley

// ValidFormula reports whether f is a supported estimation formula.
func ValidFormula(f Formula) bool {
	switch f {
	case FormulaEpley, FormulaBrzycki, FormulaLombardi:
		return true
	}
	return false
}

// User represents an account.
type User struct {
	ID              ulid.ULID
	Email           string
	DisplayName     string
	PasswordHash    string
	EmailVerifiedAt *time.Time
	FailedAttempts  int
	LockedUntil     *time.Time
	Formula         Formula
	DashboardID     ulid.ULID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewUser creates a validated User with a fresh dashboard reference.
// The password must already be hashed.
func NewUser(email, displayName, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Formula:      DefaultFormula,
		DashboardID:  ulid.Make(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Verified reports whether the account's email has been confirmed.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// IsLocked returns true if the account is currently locked out.
func (u *User) IsLocked() bool {
	return IsLockedOut(u.LockedUntil)
}

// RecordFailure increments the failure counter and sets lockout if the
// threshold is reached.
func (u *User) RecordFailure() {
	u.FailedAttempts++
	u.LockedUntil = ComputeLockoutTime(u.FailedAttempts)
	u.UpdatedAt = time.Now()
}

// RecordSuccess resets the failure counter and lockout.
func (u *User) RecordSuccess() {
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
}

// NormalizeEmail lowercases and trims an email address so lookups and
// uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the basic shape of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("USER_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("USER_INVALID_EMAIL").Errorf("email address is not valid")
	}
	return nil
}

// ValidateDisplayName checks display name length bounds.
func ValidateDisplayName(name string) error {
	if name == "" {
		return oops.Code("USER_INVALID_NAME").Errorf("display name cannot be empty")
	}
	if len(name) < MinDisplayNameLength {
		return oops.Code("USER_INVALID_NAME").
			With("min", MinDisplayNameLength).
			Errorf("display name must be at least %d characters", MinDisplayNameLength)
	}
	if len(name) > MaxDisplayNameLength {
		return oops.Code("USER_INVALID_NAME").
			With("max", MaxDisplayNameLength).
			Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	return nil
}

// UserRepository manages account persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// MarkEmailVerified stamps the email-verified timestamp.
	MarkEmailVerified(ctx context.Context, id ulid.ULID, verifiedAt time.Time) error
}
