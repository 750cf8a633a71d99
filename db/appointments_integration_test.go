// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func mustCreateDoctor(t *testing.T, store *Store) *Doctor {
	t.Helper()
	user := mustCreateUser(t, store, "doctor1", RoleDoctor)
	doctor, err := store.CreateDoctor(testContext(), user.ID, "Терапевт")
	if err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	return doctor
}

func TestAppointmentLifecycle(t *testing.T) {
	store := resetDatabase(t)
	ctx := testContext()

	doctor := mustCreateDoctor(t, store)
	patient := mustCreatePatient(t, store, "Иванов Иван Иванович")

	later, err := store.CreateAppointment(ctx, CreateAppointmentInput{
		DoctorID: doctor.ID, PatientID: patient.ID,
		AppointmentDate: mustParseDateTime(t, "2023-10-16 09:30"),
		Notes:           " Консультация ",
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}
	if later.Status != AppointmentScheduled || later.Notes != "Консультация" || later.DoctorName != "User doctor1" {
		t.Fatalf("unexpected appointment: %#v", later)
	}

	earlier, err := store.CreateAppointment(ctx, CreateAppointmentInput{
		DoctorID: doctor.ID, PatientID: patient.ID,
		AppointmentDate: mustParseDateTime(t, "2023-10-15 10:00"),
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	list, err := store.ListAppointments(ctx, AppointmentFilter{DoctorID: &doctor.ID})
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != earlier.ID || list[1].ID != later.ID {
		t.Fatalf("expected ascending order, got %#v", list)
	}

	day := mustParseDate(t, "2023-10-16")
	onDay, err := store.ListAppointments(ctx, AppointmentFilter{FromDate: &day, ToDate: &day})
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(onDay) != 1 || onDay[0].ID != later.ID {
		t.Fatalf("expected single appointment on day, got %#v", onDay)
	}

	if err := store.UpdateAppointmentStatus(ctx, later.ID, AppointmentCancelled); err != nil {
		t.Fatalf("UpdateAppointmentStatus failed: %v", err)
	}
	if err := store.UpdateAppointmentStatus(ctx, later.ID, AppointmentStatus("lost")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	status := AppointmentCancelled
	cancelled, err := store.ListAppointments(ctx, AppointmentFilter{Status: &status})
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(cancelled) != 1 {
		t.Fatalf("expected one cancelled appointment, got %d", len(cancelled))
	}

	if err := store.DeleteAppointment(ctx, earlier.ID); err != nil {
		t.Fatalf("DeleteAppointment failed: %v", err)
	}
	if _, err := store.GetAppointment(ctx, earlier.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	store := resetDatabase(t)
	ctx := testContext()

	doctor := mustCreateDoctor(t, store)

	if _, err := store.CreateAppointment(ctx, CreateAppointmentInput{DoctorID: doctor.ID, PatientID: uuid.New()}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing date, got %v", err)
	}

	_, err := store.CreateAppointment(ctx, CreateAppointmentInput{
		DoctorID: doctor.ID, PatientID: uuid.New(),
		AppointmentDate: mustParseDateTime(t, "2023-10-15 10:00"),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown patient, got %v", err)
	}
}
