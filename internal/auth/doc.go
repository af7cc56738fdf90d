// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

// Package auth implements the credential lifecycle for repstack accounts:
// sliding web sessions, single-use password-reset tokens, and 6-digit
// email-verification codes. Raw secrets are handed to the client exactly
// once; only their SHA-256 fingerprints are ever persisted.
package auth
