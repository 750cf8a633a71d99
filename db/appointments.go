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

// CreateAppointmentInput holds the values for a new appointment.
type CreateAppointmentInput struct {
	DoctorID        uuid.UUID
	PatientID       uuid.UUID
	AppointmentDate time.Time
	Notes           string
}

// AppointmentFilter narrows ListAppointments. Dates are inclusive calendar days.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *AppointmentStatus
	FromDate  *time.Time
	ToDate    *time.Time
}

const appointmentSelect = `
	SELECT a.id, a.doctor_id, u.full_name, d.specialization,
	       a.patient_id, p.full_name, p.email,
	       a.appointment_date, a.status, a.notes, a.created_at
	FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users u ON u.id = d.user_id
	JOIN patients p ON p.id = a.patient_id
`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.DoctorID, &a.DoctorName, &a.Specialization,
		&a.PatientID, &a.PatientName, &a.PatientEmail,
		&a.AppointmentDate, &a.Status, &a.Notes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAppointment schedules a visit. Unknown doctor or patient IDs are
// reported as ErrValidation.
func (s *Store) CreateAppointment(ctx context.Context, input CreateAppointmentInput) (*Appointment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	if input.AppointmentDate.IsZero() {
		return nil, fmt.Errorf("%w: appointment date is required", ErrValidation)
	}

	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (doctor_id, patient_id, appointment_date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, input.DoctorID, input.PatientID, input.AppointmentDate, strings.TrimSpace(input.Notes)).Scan(&id)
	if err != nil {
		return nil, wrapWriteError("create appointment", err)
	}

	logger.Info("Created appointment", "appointment_id", id, "doctor_id", input.DoctorID, "patient_id", input.PatientID)

	return s.GetAppointment(ctx, id)
}

// GetAppointment returns an appointment by ID.
func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	appointment, err := scanAppointment(s.pool.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
		}
		return nil, wrapReadError("get appointment", err)
	}

	return appointment, nil
}

// ListAppointments returns appointments matching the filter in date order.
func (s *Store) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.DoctorID != nil {
		add("a.doctor_id = $%d", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		add("a.patient_id = $%d", *filter.PatientID)
	}
	if filter.Status != nil {
		add("a.status = $%d", string(*filter.Status))
	}
	if filter.FromDate != nil {
		add("a.appointment_date >= $%d", startOfDay(*filter.FromDate))
	}
	if filter.ToDate != nil {
		add("a.appointment_date < $%d", startOfDay(*filter.ToDate).AddDate(0, 0, 1))
	}

	query := appointmentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.appointment_date ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapReadError("list appointments", err)
	}
	defer rows.Close()

	var appointments []Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, wrapReadError("scan appointment", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate appointments", err)
	}

	return appointments, nil
}

// UpdateAppointmentStatus sets the status of an appointment.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error {
	if err := s.ready(); err != nil {
		return err
	}

	if !status.Valid() {
		return fmt.Errorf("%w: unknown appointment status %q", ErrValidation, status)
	}

	tag, err := s.pool.Exec(ctx, `UPDATE appointments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return wrapWriteError("update appointment status", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}

	return nil
}

// DeleteAppointment removes an appointment.
func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete appointment", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}

	return nil
}
