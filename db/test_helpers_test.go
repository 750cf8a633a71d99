// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testContext() context.Context {
	return context.Background()
}

func stringPtr(value string) *string {
	return &value
}

func floatPtr(value float64) *float64 {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func assertFloatPtrEqual(t *testing.T, got, want *float64) {
	t.Helper()
	if got == nil && want == nil {
		return
	}
	if got == nil || want == nil {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if *got != *want {
		t.Fatalf("expected %v, got %v", *want, *got)
	}
}

func assertBoolPtrEqual(t *testing.T, name string, got, want *bool) {
	t.Helper()
	if got == nil && want == nil {
		return
	}
	if got == nil || want == nil {
		t.Fatalf("%s: expected is_normal %v, got %v", name, describeBool(want), describeBool(got))
	}
	if *got != *want {
		t.Fatalf("%s: expected is_normal %v, got %v", name, *want, *got)
	}
}

func describeBool(b *bool) string {
	if b == nil {
		return "undetermined"
	}
	if *b {
		return "true"
	}
	return "false"
}

func mustParseDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", value, err)
	}
	return parsed
}

func mustParseDateTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("failed to parse date time %q: %v", value, err)
	}
	return parsed
}

func mustCreateUser(t *testing.T, store *Store, username string, role Role) *User {
	t.Helper()
	user, err := store.CreateUser(testContext(), CreateUserInput{
		Username: username,
		Password: "secret",
		FullName: "User " + username,
		Role:     role,
		Email:    stringPtr(username + "@medcenter.com"),
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func mustCreatePatient(t *testing.T, store *Store, name string) *Patient {
	t.Helper()
	patient, err := store.CreatePatient(testContext(), PatientInput{
		FullName:  name,
		BirthDate: mustParseDate(t, "1978-05-15"),
		Phone:     "+7 (900) 123-45-67",
		Email:     "patient@example.com",
		Address:   "г. Москва",
	})
	if err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	return patient
}

func mustGetAnalysisType(t *testing.T, store *Store, name string) *AnalysisType {
	t.Helper()
	at, err := store.GetAnalysisTypeByName(testContext(), name)
	if err != nil {
		t.Fatalf("failed to get analysis type %q: %v", name, err)
	}
	return at
}

func mustAddResult(t *testing.T, store *Store, input AddResultInput) uuid.UUID {
	t.Helper()
	id, err := store.AddResult(testContext(), input)
	if err != nil {
		t.Fatalf("failed to add result: %v", err)
	}
	return id
}

// insertRawResult bypasses AddResult to store arbitrary payload text.
func insertRawResult(t *testing.T, store *Store, patientID, typeID, labID uuid.UUID, payload *string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := store.pool.QueryRow(testContext(), `
		INSERT INTO analysis_results (patient_id, analysis_type_id, lab_user_id, result_data)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, patientID, typeID, labID, payload).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert raw result: %v", err)
	}
	return id
}
