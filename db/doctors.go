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
)

const doctorSelect = `
	SELECT d.id, d.user_id, u.full_name, u.email, d.specialization
	FROM doctors d
	JOIN users u ON u.id = d.user_id
`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var doctor Doctor
	if err := row.Scan(&doctor.ID, &doctor.UserID, &doctor.FullName, &doctor.Email, &doctor.Specialization); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// CreateDoctor registers a specialization for an account with the doctor role.
func (s *Store) CreateDoctor(ctx context.Context, userID uuid.UUID, specialization string) (*Doctor, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s does not exist", ErrValidation, userID)
		}
		return nil, err
	}
	if user.Role != RoleDoctor {
		return nil, fmt.Errorf("%w: user %s is not a doctor", ErrValidation, userID)
	}

	var id uuid.UUID
	err = s.pool.QueryRow(ctx,
		`INSERT INTO doctors (user_id, specialization) VALUES ($1, $2) RETURNING id`,
		userID, strings.TrimSpace(specialization),
	).Scan(&id)
	if err != nil {
		return nil, wrapWriteError("create doctor", err)
	}

	return s.GetDoctor(ctx, id)
}

// GetDoctor returns a doctor by ID.
func (s *Store) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.getDoctor(ctx, doctorSelect+` WHERE d.id = $1`, id)
}

// GetDoctorByUserID returns the doctor record for an account.
func (s *Store) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return s.getDoctor(ctx, doctorSelect+` WHERE d.user_id = $1`, userID)
}

func (s *Store) getDoctor(ctx context.Context, query string, id uuid.UUID) (*Doctor, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	doctor, err := scanDoctor(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, id)
		}
		return nil, wrapReadError("get doctor", err)
	}

	return doctor, nil
}

// ListDoctors returns all doctors ordered by name.
func (s *Store) ListDoctors(ctx context.Context) ([]Doctor, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, doctorSelect+` ORDER BY u.full_name ASC`)
	if err != nil {
		return nil, wrapReadError("list doctors", err)
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, wrapReadError("scan doctor", err)
		}
		doctors = append(doctors, *doctor)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate doctors", err)
	}

	return doctors, nil
}
