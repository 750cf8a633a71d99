/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserInput holds the values for a new staff account.
type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Role     Role
	Email    *string
}

// UpdateUserInput holds editable account fields. A nil Password keeps the
// current password.
type UpdateUserInput struct {
	FullName string
	Role     Role
	Email    *string
	Password *string
}

const userColumns = `id, username, full_name, role, email, status, last_login, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.FullName, &user.Role,
		&user.Email, &user.Status, &user.LastLogin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CreateUser creates an active staff account.
func (s *Store) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	fullName := strings.TrimSpace(input.FullName)

	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	case input.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	case fullName == "":
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	case !input.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, full_name, role, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		username, hash, fullName, input.Role, normalizeOptional(input.Email),
	))
	if err != nil {
		return nil, wrapWriteError("create user", err)
	}

	logger.Info("Created user", "user_id", user.ID, "username", user.Username, "role", user.Role)

	return user, nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	user, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, wrapReadError("get user", err)
	}

	return user, nil
}

// GetUserByUsername returns a user by login name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	user, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, wrapReadError("get user", err)
	}

	return user, nil
}

// ListUsers returns all users, optionally restricted to one role.
func (s *Store) ListUsers(ctx context.Context, role *Role) ([]User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if role != nil {
		query += ` WHERE role = $1`
		args = append(args, *role)
	}
	query += ` ORDER BY full_name ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapReadError("list users", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, wrapReadError("scan user", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate users", err)
	}

	return users, nil
}

// UpdateUser changes an account's name, role, email and optionally password.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) error {
	if err := s.ready(); err != nil {
		return err
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if !input.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}

	var hash *string
	if input.Password != nil && *input.Password != "" {
		h, err := hashPassword(*input.Password)
		if err != nil {
			return err
		}
		hash = &h
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET full_name = $1, role = $2, email = $3, password_hash = COALESCE($4, password_hash)
		WHERE id = $5
	`, fullName, input.Role, normalizeOptional(input.Email), hash, id)
	if err != nil {
		return wrapWriteError("update user", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	return nil
}

// SetUserStatus blocks or unblocks an account.
func (s *Store) SetUserStatus(ctx context.Context, id uuid.UUID, status UserStatus) error {
	if err := s.ready(); err != nil {
		return err
	}

	if !status.Valid() {
		return fmt.Errorf("%w: unknown user status %q", ErrValidation, status)
	}

	tag, err := s.pool.Exec(ctx, `UPDATE users SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return wrapWriteError("update user status", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	logger.Info("Updated user status", "user_id", id, "status", status)

	return nil
}

// DeleteUser removes an account. Technicians with recorded results cannot
// be deleted.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete user", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	return nil
}

// Authenticate checks a username and password for an active account and
// records the login time.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		hash   string
		status UserStatus
		id     uuid.UUID
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id, password_hash, status FROM users WHERE username = $1`,
		strings.TrimSpace(username),
	).Scan(&id, &hash, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrapReadError("look up user", err)
	}

	if status != UserActive {
		return nil, fmt.Errorf("%w: account is blocked", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.pool.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id); err != nil {
		logger.Warn("Failed to record last login", "user_id", id, "error", err)
	}

	return s.GetUser(ctx, id)
}
