// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"

	"github.com/samber/oops"
)

// VerificationCodeDigits is the length of an email verification code.
// The code is typed by a human, so the space is small and the HTTP layer
// must rate-limit attempts.
const VerificationCodeDigits = 6

// codeSpace is 10^VerificationCodeDigits.
var codeSpace = big.NewInt(1_000_000)

// GenerateToken creates numBytes of secure randomness and returns the
// hex-encoded plaintext together with its fingerprint.
// The plaintext is delivered to the client once; only the fingerprint is
// stored in the database.
func GenerateToken(numBytes int) (token, fingerprint string, err error) {
	if numBytes <= 0 {
		return "", "", oops.Code("TOKEN_INVALID_SIZE").
			With("requested_bytes", numBytes).
			Errorf("token size must be positive")
	}

	raw := make([]byte, numBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", numBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(raw)
	fingerprint = HashToken(token)

	return token, fingerprint, nil
}

// GenerateCode creates a uniformly random 6-digit verification code and
// its fingerprint. Leading zeros are preserved.
func GenerateCode() (code, fingerprint string, err error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", "", oops.Code("CODE_GENERATE_FAILED").
			With("operation", "crypto/rand.Int").
			Wrap(err)
	}

	buf := []byte("000000")
	digits := n.String()
	copy(buf[len(buf)-len(digits):], digits)
	code = string(buf)

	return code, HashToken(code), nil
}

// HashToken computes the SHA-256 fingerprint of a secret. The fingerprint
// is deterministic and one-way: it is what repositories store and look up,
// never the secret itself.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyToken reports whether the plaintext secret matches the stored
// fingerprint, in constant time.
func VerifyToken(token, fingerprint string) bool {
	if token == "" || fingerprint == "" {
		return false
	}
	computed := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(fingerprint)) == 1
}

// ValidCodeFormat reports whether candidate is exactly six decimal digits.
// Callers reject malformed candidates before touching the store.
func ValidCodeFormat(candidate string) bool {
	if len(candidate) != VerificationCodeDigits {
		return false
	}
	for _, c := range candidate {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
