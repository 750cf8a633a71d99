/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errInvalidID          = errors.New("invalid id")
	errInvalidDate        = errors.New("invalid date")
	errInvalidBody        = errors.New("invalid request body")
	errSessionUserMissing = errors.New("session user missing")
	errMailNotConfigured  = errors.New("email delivery is not configured")
	errNotDoctor          = errors.New("current user has no doctor profile")
)
