/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "errors"

var (
	errDatabaseURLRequired   = errors.New("database-url is required (set via --database-url or DATABASE_URL env var)")
	errMigrationNameRequired = errors.New("migration name is required")
	errCSRFSecretRequired    = errors.New("CSRF_SECRET is required in production")
	errInvalidRuntimeEnv     = errors.New(runtimeEnvVar + " must be one of: development, dev, production, prod")
	errResultIDRequired      = errors.New("result id is required")
	errInvalidResultID       = errors.New("invalid result id")
	errStatusRequired        = errors.New("status is required")
	errOutputRequired        = errors.New("--output is required for binary formats")
)
