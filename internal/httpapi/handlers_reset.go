// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"net/http"

	"github.com/repstack/repstack/internal/mail"
	"github.com/repstack/repstack/internal/observability"
)

type resetRequestBody struct {
	Email string `json:"email"`
}

// handleResetRequest always answers 202 with the same body, whether or not
// the email maps to an account.
func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestBody
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	reset, err := s.services.Resets.Request(r.Context(), req.Email)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if reset != nil {
		s.recordIssued(observability.TokenKindReset)
		s.deliver(r.Context(), mail.PasswordResetMessage(reset.User.Email, s.baseURL, reset.Token))
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "if that email is registered, a reset link is on its way",
	})
}

type resetConfirmBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmBody
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.services.Resets.Consume(r.Context(), req.Token, req.Password); err != nil {
		s.recordConsumed(observability.TokenKindReset, "fail")
		s.writeDomainError(w, r, err)
		return
	}
	s.recordConsumed(observability.TokenKindReset, "ok")

	// All sessions were revoked; drop this browser's cookie too.
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
