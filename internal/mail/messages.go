// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Repstack Contributors

package mail

import "fmt"

// Message kinds.
const (
	KindPasswordReset     = "password_reset"
	KindEmailVerification = "email_verification"
	KindTeamInvitation    = "team_invitation"
)

// PasswordResetMessage builds the reset email. The link carries the raw
// token; this is the only place it leaves the service.
func PasswordResetMessage(to, baseURL, token string) Message {
	return Message{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: "Reset your Repstack password",
		Body: fmt.Sprintf(
			"A password reset was requested for your account.\n\n"+
				"Reset your password within 15 minutes:\n\n"+
				"%s/reset-password?token=%s\n\n"+
				"If you did not request this, you can ignore this email.\n",
			baseURL, token),
	}
}

// VerificationMessage builds the email carrying the 6-digit code.
func VerificationMessage(to, code string) Message {
	return Message{
		Kind:    KindEmailVerification,
		To:      to,
		Subject: "Verify your Repstack email",
		Body: fmt.Sprintf(
			"Your verification code is:\n\n"+
				"    %s\n\n"+
				"It expires in 10 minutes.\n",
			code),
	}
}

// InvitationMessage builds the team invite email.
func InvitationMessage(to, baseURL, teamName, token string) Message {
	return Message{
		Kind:    KindTeamInvitation,
		To:      to,
		Subject: fmt.Sprintf("You have been invited to join %s on Repstack", teamName),
		Body: fmt.Sprintf(
			"You have been invited to join the team %q.\n\n"+
				"Accept the invitation within 7 days:\n\n"+
				"%s/invitations/accept?token=%s\n\n"+
				"If you were not expecting this, you can ignore this email.\n",
			teamName, baseURL, token),
	}
}
