/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
)

// Store is the database surface used by the handlers. *db.Store satisfies it.
type Store interface {
	Authenticate(ctx context.Context, username, password string) (*db.User, error)

	CreateUser(ctx context.Context, input db.CreateUserInput) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	ListUsers(ctx context.Context, role *db.Role) ([]db.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input db.UpdateUserInput) error
	SetUserStatus(ctx context.Context, id uuid.UUID, status db.UserStatus) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateDoctor(ctx context.Context, userID uuid.UUID, specialization string) (*db.Doctor, error)
	GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*db.Doctor, error)
	ListDoctors(ctx context.Context) ([]db.Doctor, error)

	CreatePatient(ctx context.Context, input db.PatientInput) (*db.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*db.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, input db.PatientInput) error
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, search string) ([]db.Patient, error)
	ListPatientsWithoutAnalysis(ctx context.Context, analysisTypeID *uuid.UUID) ([]db.Patient, error)

	ListAnalysisTypes(ctx context.Context) ([]db.AnalysisType, error)
	GetAnalysisType(ctx context.Context, id uuid.UUID) (*db.AnalysisType, error)
	References() *db.ReferenceTable

	AddResult(ctx context.Context, input db.AddResultInput) (uuid.UUID, error)
	ListResults(ctx context.Context, filter db.ResultFilter) ([]db.ResultSummary, error)
	GetResultDetails(ctx context.Context, id uuid.UUID) (*db.ResultDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status db.ResultStatus) error
	SetConclusion(ctx context.Context, id uuid.UUID, conclusion string) error
	DeleteResult(ctx context.Context, id uuid.UUID) error
	ParameterHistory(ctx context.Context, patientID uuid.UUID, parameter string) ([]db.ParameterPoint, error)

	CreateAppointment(ctx context.Context, input db.CreateAppointmentInput) (*db.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*db.Appointment, error)
	ListAppointments(ctx context.Context, filter db.AppointmentFilter) ([]db.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status db.AppointmentStatus) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	GetStatistics(ctx context.Context, from, to time.Time) (*db.Statistics, error)
}

var _ Store = (*db.Store)(nil)
