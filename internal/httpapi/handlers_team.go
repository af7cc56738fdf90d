// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/repstack/repstack/internal/mail"
	"github.com/repstack/repstack/internal/observability"
)

type createTeamBody struct {
	Name string `json:"name"`
}

type teamResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req createTeamBody
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	t, err := s.services.Invitations.CreateTeam(r.Context(), req.Name, identity.UserID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, teamResponse{ID: t.ID.String(), Name: t.Name})
}

type inviteBody struct {
	Email string `json:"email"`
}

type inviteResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	teamID, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_TEAM_ID", "invalid team id")
		return
	}

	var req inviteBody
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	invitation, token, err := s.services.Invitations.Invite(r.Context(), teamID, identity.UserID, req.Email)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.recordIssued(observability.TokenKindInvitation)

	t, err := s.services.Teams.GetByID(r.Context(), teamID)
	teamName := "a Repstack team"
	if err == nil {
		teamName = t.Name
	}
	s.deliver(r.Context(), mail.InvitationMessage(invitation.Email, s.baseURL, teamName, token))

	writeJSON(w, http.StatusCreated, inviteResponse{
		Email:     invitation.Email,
		ExpiresAt: invitation.ExpiresAt,
	})
}

type acceptBody struct {
	Token string `json:"token"`
}

type membershipResponse struct {
	TeamID string `json:"team_id"`
	Role   string `json:"role"`
}

func (s *Server) handleInviteAccept(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var req acceptBody
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	membership, err := s.services.Invitations.Accept(r.Context(), req.Token, identity.UserID)
	if err != nil {
		s.recordConsumed(observability.TokenKindInvitation, "fail")
		s.writeDomainError(w, r, err)
		return
	}
	s.recordConsumed(observability.TokenKindInvitation, "ok")

	writeJSON(w, http.StatusOK, membershipResponse{
		TeamID: membership.TeamID.String(),
		Role:   membership.Role,
	})
}
