// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidToken covers not-found, expired, and consumed tokens alike so
// callers cannot distinguish which case they hit.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrInvalidCode is the verification-code counterpart of ErrInvalidToken;
// mismatched, absent, and expired codes all collapse into it.
var ErrInvalidCode = errors.New("invalid or expired code")

// ErrDuplicate is returned when a unique constraint rejects a write,
// e.g. registering an email that already has an account.
var ErrDuplicate = errors.New("already exists")

// ErrAlreadyVerified is returned when requesting a verification code for
// an account whose email is already verified.
var ErrAlreadyVerified = errors.New("email already verified")
