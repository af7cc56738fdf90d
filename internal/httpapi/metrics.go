// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package httpapi

import (
	"context"

	"github.com/repstack/repstack/internal/mail"
	"github.com/repstack/repstack/internal/observability"
	"github.com/repstack/repstack/pkg/errutil"
)

// Metrics are optional; handlers record through these nil-safe helpers.

func (s *Server) recordIssued(kind string) {
	if s.metrics != nil {
		s.metrics.TokensIssuedTotal.WithLabelValues(kind).Inc()
	}
}

func (s *Server) recordValidated(result string) {
	if s.metrics != nil {
		s.metrics.TokensValidatedTotal.WithLabelValues(result).Inc()
	}
}

func (s *Server) recordConsumed(kind, result string) {
	if s.metrics != nil {
		s.metrics.TokensConsumedTotal.WithLabelValues(kind, result).Inc()
	}
}

func (s *Server) recordLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}

// deliver sends mail best effort. Credential flows never fail because the
// mail provider is down; the failure is logged and counted instead.
func (s *Server) deliver(ctx context.Context, msg mail.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		errutil.LogError(s.logger, "mail delivery failed", err)
		observability.RecordMailFailure(msg.Kind)
	}
}
