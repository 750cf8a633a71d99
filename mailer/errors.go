/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package mailer

import "errors"

var (
	// ErrNoRecipient is returned when a message has no destination address.
	ErrNoRecipient = errors.New("no recipient email address")
	// ErrSenderNotConfigured is returned when MAIL_FROM is missing.
	ErrSenderNotConfigured = errors.New("sender address not configured")
	// ErrHostNotConfigured is returned when SMTP_HOST is missing outside dry-run mode.
	ErrHostNotConfigured = errors.New("smtp host not configured")
	// ErrSendFailed wraps delivery failures.
	ErrSendFailed = errors.New("failed to send email")
)
