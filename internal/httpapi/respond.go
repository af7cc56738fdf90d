// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/repstack/repstack/internal/auth"
	"github.com/repstack/repstack/internal/team"
)

// errorResponse is the JSON error body. Messages stay generic so they
// cannot be used to probe which accounts or tokens exist.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`

	// RequiresCaptcha tells the web client to put up a challenge before
	// the next login attempt. Only set on login failures.
	RequiresCaptcha bool `json:"requires_captcha,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		//nolint:errcheck // response write error means client went away
		json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// errCode extracts the oops error code, if any.
func errCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			return code
		}
	}
	return ""
}

// errContext extracts the oops context map, if any.
func errContext(err error) map[string]any {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Context()
	}
	return nil
}

// writeLoginError surfaces the rate limit state carried on login
// failures: Retry-After holds the progressive delay or remaining lockout,
// requires_captcha flags the CAPTCHA threshold.
func writeLoginError(w http.ResponseWriter, status int, code, message string, err error) {
	body := errorResponse{Error: message, Code: code}
	ctx := errContext(err)
	if delay, ok := ctx["retry_after"].(time.Duration); ok && delay > 0 {
		seconds := int64((delay + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}
	if captcha, ok := ctx["requires_captcha"].(bool); ok && captcha {
		body.RequiresCaptcha = true
	}
	writeJSON(w, status, body)
}

// writeDomainError maps a service error onto an HTTP response. Anything
// unmapped is a 500 with no detail.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, errCode(err), "invalid or expired token")
	case errors.Is(err, auth.ErrInvalidCode):
		writeError(w, http.StatusUnauthorized, errCode(err), "invalid or expired code")
	case errors.Is(err, auth.ErrDuplicate):
		writeError(w, http.StatusConflict, errCode(err), "email already registered")
	case errors.Is(err, auth.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, errCode(err), "email already verified")
	case errors.Is(err, team.ErrInviteInvalid):
		writeError(w, http.StatusUnauthorized, errCode(err), "invalid or expired invitation")
	case errors.Is(err, team.ErrInvitePending):
		writeError(w, http.StatusConflict, errCode(err), "invitation already pending")
	case errors.Is(err, team.ErrAlreadyMember):
		writeError(w, http.StatusConflict, errCode(err), "already a team member")
	default:
		switch errCode(err) {
		case "LOGIN_INVALID_CREDENTIALS":
			writeLoginError(w, http.StatusUnauthorized, "LOGIN_INVALID_CREDENTIALS", "invalid email or password", err)
		case "LOGIN_ACCOUNT_LOCKED":
			writeLoginError(w, http.StatusTooManyRequests, "LOGIN_ACCOUNT_LOCKED", "account temporarily locked", err)
		case "INVITE_NOT_MEMBER":
			writeError(w, http.StatusForbidden, "INVITE_NOT_MEMBER", "not a member of this team")
		case "INVITE_TEAM_NOT_FOUND", "TEAM_NOT_FOUND":
			writeError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "team not found")
		case "VERIFY_USER_NOT_FOUND":
			writeError(w, http.StatusNotFound, "VERIFY_USER_NOT_FOUND", "account not found")
		case "TEAM_INVALID_NAME":
			writeError(w, http.StatusBadRequest, "TEAM_INVALID_NAME", "invalid team name")
		case "USER_INVALID_EMAIL", "USER_INVALID_NAME", "AUTH_EMPTY_PASSWORD", "RESET_PASSWORD_EMPTY", "BAD_REQUEST_BODY":
			writeError(w, http.StatusBadRequest, errCode(err), "invalid request")
		default:
			s.logger.ErrorContext(r.Context(), "request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err)
			writeError(w, http.StatusInternalServerError, "", "internal error")
		}
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return oops.Code("BAD_REQUEST_BODY").Wrap(err)
	}
	return nil
}
