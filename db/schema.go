/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	// Register pgx with database/sql for goose migrations.
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// GetEmbeddedMigrations returns the embedded migrations filesystem for use by CLI commands
func GetEmbeddedMigrations() embed.FS {
	return embedMigrations
}

// SyncSchema runs database migrations, upserts the built-in reference data
// and loads the reference table into memory.
func (s *Store) SyncSchema(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := runMigrations(s.databaseURL); err != nil {
		return err
	}

	if err := s.SyncReferenceRanges(ctx); err != nil {
		return fmt.Errorf("failed to sync reference ranges: %w", err)
	}

	if err := s.SyncAnalysisTypes(ctx); err != nil {
		return fmt.Errorf("failed to sync analysis types: %w", err)
	}

	refs, err := s.LoadReferenceTable(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reference table: %w", err)
	}
	s.refs = refs

	return nil
}

// OpenMigrationDB opens a database/sql handle configured for goose with the
// embedded migrations.
func OpenMigrationDB(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, ErrDatabaseURLNotSet
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}

	return sqlDB, nil
}

func runMigrations(databaseURL string) error {
	sqlDB, err := OpenMigrationDB(databaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close migration connection", "error", err)
		}
	}()

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
