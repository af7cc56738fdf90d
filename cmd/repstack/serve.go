// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/repstack/repstack/internal/auth"
	authpg "github.com/repstack/repstack/internal/auth/postgres"
	"github.com/repstack/repstack/internal/config"
	"github.com/repstack/repstack/internal/httpapi"
	"github.com/repstack/repstack/internal/logging"
	"github.com/repstack/repstack/internal/mail"
	"github.com/repstack/repstack/internal/observability"
	"github.com/repstack/repstack/internal/store"
	"github.com/repstack/repstack/internal/team"
	teampg "github.com/repstack/repstack/internal/team/postgres"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the Repstack API server, which handles accounts, sessions,
password resets, email verification, and team invitations.`,
		RunE: runServe,
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().String("http-addr", "", "API listen address")
	cmd.Flags().String("metrics-addr", "", "observability listen address")
	cmd.Flags().String("base-url", "", "public base URL used in email links")
	cmd.Flags().String("log-format", "", "log format (json or text)")
	cmd.Flags().Bool("auto-migrate", true, "run pending migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	logging.SetDefault("api", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if autoMigrate, _ := cmd.Flags().GetBool("auto-migrate"); autoMigrate {
		migrator, err := store.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := migrator.Up(); err != nil {
			_ = migrator.Close() //nolint:errcheck // migration error takes precedence
			return err
		}
		if err := migrator.Close(); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	services, err := buildServices(pool, logger)
	if err != nil {
		return err
	}

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer, err = mail.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			return err
		}
	} else {
		mailer = mail.NewLogMailer(logger)
	}

	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}

	apiServer, err := httpapi.NewServer(cfg.HTTPAddr, cfg.BaseURL, services, mailer, obsServer.Metrics(), logger)
	if err != nil {
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServer(obsServer.Stop, logger)
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-apiErrCh:
		if err != nil {
			logger.Error("api server failed", "error", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	}

	stopServer(apiServer.Stop, logger)
	stopServer(obsServer.Stop, logger)
	return nil
}

// stopServer shuts one server down with the shared timeout.
func stopServer(stop func(context.Context) error, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}

// buildServices wires the repositories and domain services.
func buildServices(pool *pgxpool.Pool, logger *slog.Logger) (httpapi.Services, error) {
	users := authpg.NewUserRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	resets := authpg.NewResetRepository(pool)
	verifications := authpg.NewVerificationRepository(pool)

	teams := teampg.NewTeamRepository(pool)
	members := teampg.NewMembershipRepository(pool)
	invitations := teampg.NewInvitationRepository(pool)

	hasher := auth.NewArgon2idHasher()

	sessionSvc, err := auth.NewSessionService(sessions, users, logger)
	if err != nil {
		return httpapi.Services{}, err
	}
	resetSvc, err := auth.NewResetService(users, resets, sessionSvc, hasher, logger)
	if err != nil {
		return httpapi.Services{}, err
	}
	verifySvc, err := auth.NewVerificationService(users, verifications, sessionSvc, logger)
	if err != nil {
		return httpapi.Services{}, err
	}
	accountSvc, err := auth.NewAccountService(users, sessionSvc, verifySvc, hasher, logger)
	if err != nil {
		return httpapi.Services{}, err
	}
	inviteSvc, err := team.NewInvitationService(teams, members, invitations, users, logger)
	if err != nil {
		return httpapi.Services{}, err
	}

	return httpapi.Services{
		Accounts:      accountSvc,
		Sessions:      sessionSvc,
		Resets:        resetSvc,
		Verifications: verifySvc,
		Invitations:   inviteSvc,
		Users:         users,
		Teams:         teams,
	}, nil
}
