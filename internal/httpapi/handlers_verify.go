// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/repstack/repstack/internal/mail"
	"github.com/repstack/repstack/internal/observability"
)

type verifyConfirmBody struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

func (s *Server) handleVerifyConfirm(w http.ResponseWriter, r *http.Request) {
	var req verifyConfirmBody
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	userID, err := ulid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_USER_ID", "invalid user id")
		return
	}

	session, token, err := s.services.Verifications.Confirm(r.Context(), userID, req.Code)
	if err != nil {
		s.recordConsumed(observability.TokenKindVerification, "fail")
		s.writeDomainError(w, r, err)
		return
	}
	s.recordConsumed(observability.TokenKindVerification, "ok")
	s.recordIssued(observability.TokenKindSession)

	setSessionCookie(w, token, session.ExpiresAt)
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:    session.UserID.String(),
		ExpiresAt: session.ExpiresAt,
	})
}

type verifyResendBody struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleVerifyResend(w http.ResponseWriter, r *http.Request) {
	var req verifyResendBody
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	userID, err := ulid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_USER_ID", "invalid user id")
		return
	}

	if !s.resendGate.Allow(userID.String()) {
		writeError(w, http.StatusTooManyRequests, "RESEND_TOO_SOON", "try again in a minute")
		return
	}

	code, user, err := s.services.Verifications.Request(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.recordIssued(observability.TokenKindVerification)

	s.deliver(r.Context(), mail.VerificationMessage(user.Email, code))

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "verification code sent",
	})
}
