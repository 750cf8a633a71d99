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
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PatientInput holds the editable fields of a patient.
type PatientInput struct {
	FullName  string
	BirthDate time.Time
	Gender    *Gender
	Phone     string
	Email     string
	Address   string
}

func (in PatientInput) validate() (PatientInput, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)

	switch {
	case in.FullName == "":
		return in, fmt.Errorf("%w: patient name is required", ErrValidation)
	case in.BirthDate.IsZero():
		return in, fmt.Errorf("%w: birth date is required", ErrValidation)
	case in.BirthDate.After(time.Now()):
		return in, fmt.Errorf("%w: birth date is in the future", ErrValidation)
	case in.Gender != nil && !in.Gender.Valid():
		return in, fmt.Errorf("%w: unknown gender %q", ErrValidation, *in.Gender)
	}

	return in, nil
}

const patientColumns = `id, full_name, birth_date, gender, phone, email, address, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FullName, &p.BirthDate, &p.Gender, &p.Phone,
		&p.Email, &p.Address, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePatient registers a new patient.
func (s *Store) CreatePatient(ctx context.Context, input PatientInput) (*Patient, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	patient, err := scanPatient(s.pool.QueryRow(ctx, `
		INSERT INTO patients (full_name, birth_date, gender, phone, email, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+patientColumns,
		input.FullName, input.BirthDate, input.Gender, input.Phone, input.Email, input.Address,
	))
	if err != nil {
		return nil, wrapWriteError("create patient", err)
	}

	logger.Info("Created patient", "patient_id", patient.ID)

	return patient, nil
}

// GetPatient returns a patient by ID.
func (s *Store) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	patient, err := scanPatient(s.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: patient %s", ErrNotFound, id)
		}
		return nil, wrapReadError("get patient", err)
	}

	return patient, nil
}

// UpdatePatient replaces the editable fields of a patient.
func (s *Store) UpdatePatient(ctx context.Context, id uuid.UUID, input PatientInput) error {
	if err := s.ready(); err != nil {
		return err
	}

	input, err := input.validate()
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE patients
		SET full_name = $1, birth_date = $2, gender = $3, phone = $4, email = $5, address = $6, updated_at = now()
		WHERE id = $7
	`, input.FullName, input.BirthDate, input.Gender, input.Phone, input.Email, input.Address, id)
	if err != nil {
		return wrapWriteError("update patient", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: patient %s", ErrNotFound, id)
	}

	return nil
}

// DeletePatient removes a patient and their appointments. Patients with
// analysis results cannot be deleted.
func (s *Store) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}

	var resultCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_results WHERE patient_id = $1`, id).Scan(&resultCount); err != nil {
		return wrapReadError("count patient results", err)
	}
	if resultCount > 0 {
		return fmt.Errorf("%w: patient %s has %d analysis results", ErrValidation, id, resultCount)
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete patient", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: patient %s", ErrNotFound, id)
	}

	logger.Info("Deleted patient", "patient_id", id)

	return nil
}

// ListPatients returns patients ordered by name. A non-empty search matches
// name, phone or email case-insensitively.
func (s *Store) ListPatients(ctx context.Context, search string) ([]Patient, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []interface{}

	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE full_name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	query += ` ORDER BY full_name ASC`

	return s.queryPatients(ctx, query, args...)
}

// ListPatientsWithoutAnalysis returns patients that have no results at all,
// or none of the given analysis type when analysisTypeID is set.
func (s *Store) ListPatientsWithoutAnalysis(ctx context.Context, analysisTypeID *uuid.UUID) ([]Patient, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + patientColumns + `
		FROM patients p
		WHERE NOT EXISTS (
			SELECT 1 FROM analysis_results r
			WHERE r.patient_id = p.id`
	var args []interface{}
	if analysisTypeID != nil {
		query += ` AND r.analysis_type_id = $1`
		args = append(args, *analysisTypeID)
	}
	query += `
		)
		ORDER BY full_name ASC`

	return s.queryPatients(ctx, query, args...)
}

func (s *Store) queryPatients(ctx context.Context, query string, args ...interface{}) ([]Patient, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapReadError("list patients", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, wrapReadError("scan patient", err)
		}
		patients = append(patients, *patient)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate patients", err)
	}

	return patients, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
