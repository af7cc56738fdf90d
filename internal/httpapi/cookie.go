// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/repstack/repstack/internal/auth"
)

// sessionCookie is the browser cookie carrying the raw session token.
const sessionCookie = "repstack_session"

// setSessionCookie writes the session token to the browser, with the
// cookie lifetime mirroring the session's.
func setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// identify resolves the request's session cookie to an identity. Returns
// (nil, nil) for absent, expired, or invalid sessions. When validation
// renewed the session, the cookie is re-set so the browser tracks the new
// expiry.
func (s *Server) identify(w http.ResponseWriter, r *http.Request) (*auth.Identity, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, nil //nolint:nilnil // absent cookie is not an error
	}

	identity, err := s.services.Sessions.Validate(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		s.recordValidated("absent")
		clearSessionCookie(w)
		return nil, nil //nolint:nilnil // invalid session is not an error
	}
	s.recordValidated("ok")

	setSessionCookie(w, cookie.Value, identity.Session.ExpiresAt)
	return identity, nil
}

// requireSession resolves the session or writes a 401.
// The boolean reports whether the caller may proceed.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, err := s.identify(w, r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return nil, false
	}
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "SESSION_REQUIRED", "authentication required")
		return nil, false
	}
	return identity, true
}
