// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

// Package httpapi exposes the credential and team flows over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/repstack/repstack/internal/auth"
	"github.com/repstack/repstack/internal/mail"
	"github.com/repstack/repstack/internal/observability"
	"github.com/repstack/repstack/internal/team"
)

// Services bundles the domain services the API fronts.
type Services struct {
	Accounts      *auth.AccountService
	Sessions      *auth.SessionService
	Resets        *auth.ResetService
	Verifications *auth.VerificationService
	Invitations   *team.InvitationService
	Users         auth.UserRepository
	Teams         team.TeamRepository
}

// Server is the public API server.
type Server struct {
	addr       string
	baseURL    string
	services   Services
	mailer     mail.Mailer
	metrics    *observability.Metrics
	logger     *slog.Logger
	resendGate *resendLimiter

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server.
func NewServer(addr, baseURL string, services Services, mailer mail.Mailer, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if services.Accounts == nil || services.Sessions == nil || services.Resets == nil ||
		services.Verifications == nil || services.Invitations == nil {
		return nil, oops.Errorf("all domain services are required")
	}
	if services.Users == nil || services.Teams == nil {
		return nil, oops.Errorf("user and team repositories are required")
	}
	if mailer == nil {
		return nil, oops.Errorf("mailer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:       addr,
		baseURL:    baseURL,
		services:   services,
		mailer:     mailer,
		metrics:    metrics,
		logger:     logger,
		resendGate: newResendLimiter(resendInterval),
	}, nil
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/me", s.handleMe)

	mux.HandleFunc("POST /api/password-reset", s.handleResetRequest)
	mux.HandleFunc("POST /api/password-reset/confirm", s.handleResetConfirm)

	mux.HandleFunc("POST /api/verify-email", s.handleVerifyConfirm)
	mux.HandleFunc("POST /api/verify-email/resend", s.handleVerifyResend)

	mux.HandleFunc("POST /api/teams", s.handleCreateTeam)
	mux.HandleFunc("POST /api/teams/{id}/invitations", s.handleInvite)
	mux.HandleFunc("POST /api/invitations/accept", s.handleInviteAccept)

	return mux
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after startup; the channel is closed when
// the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or empty when not
// running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
