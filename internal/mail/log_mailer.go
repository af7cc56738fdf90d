// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package mail

import (
	"context"
	"log/slog"
)

// LogMailer logs messages instead of sending them. Used in development and
// whenever no SMTP host is configured. Bodies carry raw secrets, so only
// metadata is logged.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message metadata.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "mail delivery skipped, no smtp configured",
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
