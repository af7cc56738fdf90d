// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/repstack/repstack/internal/auth"
	"github.com/repstack/repstack/internal/mail"
	"github.com/repstack/repstack/internal/observability"
	"github.com/repstack/repstack/pkg/errutil"
)

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type signupResponse struct {
	UserID      string `json:"user_id"`
	DashboardID string `json:"dashboard_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Verified    bool   `json:"verified"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	user, code, err := s.services.Accounts.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.recordIssued(observability.TokenKindVerification)

	s.deliver(r.Context(), mail.VerificationMessage(user.Email, code))

	writeJSON(w, http.StatusCreated, signupResponse{
		UserID:      user.ID.String(),
		DashboardID: user.DashboardID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Verified:    false,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	session, token, err := s.services.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.recordLogin("fail")
		s.writeDomainError(w, r, err)
		return
	}
	s.recordLogin("ok")
	s.recordIssued(observability.TokenKindSession)

	setSessionCookie(w, token, session.ExpiresAt)
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:    session.UserID.String(),
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if remErr := s.services.Sessions.Remove(r.Context(), auth.HashToken(cookie.Value)); remErr != nil {
			// A session that is already gone still logs out cleanly.
			if !errors.Is(remErr, auth.ErrNotFound) {
				errutil.LogError(s.logger, "failed to remove session on logout", remErr)
			}
		}
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Verified    bool      `json:"verified"`
	Formula     string    `json:"formula"`
	DashboardID string    `json:"dashboard_id"`
	ExpiresAt   time.Time `json:"session_expires_at"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		UserID:      identity.UserID.String(),
		DisplayName: identity.DisplayName,
		Verified:    identity.EmailVerified,
		Formula:     string(identity.Formula),
		DashboardID: identity.DashboardID.String(),
		ExpiresAt:   identity.Session.ExpiresAt,
	})
}
