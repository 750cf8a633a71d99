/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMalformedData marks stored result payloads that cannot be decoded.
	ErrMalformedData = errors.New("malformed result data")
	// ErrPersistence wraps failures reported by the database.
	ErrPersistence = errors.New("persistence failure")
	// ErrValidation is returned for invalid caller input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned when a login attempt fails.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrDatabaseConnectionNotInitialized = errors.New("database connection not initialized")
	ErrDatabaseURLNotSet                = errors.New("database URL is not set")
	ErrDatabaseNameNotSpecified         = errors.New("database name not specified in connection string")
)

// PostgreSQL error codes mapped to validation failures.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// wrapWriteError maps constraint violations to ErrValidation and everything
// else to ErrPersistence.
func wrapWriteError(action string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s: referenced record does not exist or is still in use", ErrValidation, action)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: record already exists", ErrValidation, action)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s: value out of allowed set", ErrValidation, action)
		}
	}

	return fmt.Errorf("%w: failed to %s: %w", ErrPersistence, action, err)
}

// wrapReadError wraps a query failure as ErrPersistence.
func wrapReadError(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrPersistence, action, err)
}
