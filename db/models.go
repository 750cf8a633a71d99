/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a staff account role
type Role string

// Role values represent supported staff roles.
const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleLab    Role = "lab"
)

// Roles lists all roles in display order.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleLab}

// Valid reports whether the role is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleLab:
		return true
	}
	return false
}

// RoleLabel returns the human-readable label for a role.
func RoleLabel(r Role) string {
	switch r {
	case RoleAdmin:
		return "Администратор"
	case RoleDoctor:
		return "Врач"
	case RoleLab:
		return "Лаборант"
	default:
		return string(r)
	}
}

// UserStatus represents whether an account may log in
type UserStatus string

// UserStatus values.
const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

// Valid reports whether the status is supported.
func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserBlocked
}

// ResultStatus is the lifecycle state of an analysis result
type ResultStatus string

// ResultStatus values.
const (
	ResultPending   ResultStatus = "pending"
	ResultCompleted ResultStatus = "completed"
	ResultSent      ResultStatus = "sent"
)

// ResultStatuses lists all result statuses in lifecycle order.
var ResultStatuses = []ResultStatus{ResultPending, ResultCompleted, ResultSent}

// Valid reports whether the status is supported.
func (s ResultStatus) Valid() bool {
	switch s {
	case ResultPending, ResultCompleted, ResultSent:
		return true
	}
	return false
}

// ResultStatusLabel returns the human-readable label for a result status.
func ResultStatusLabel(s ResultStatus) string {
	switch s {
	case ResultPending:
		return "Ожидает"
	case ResultCompleted:
		return "Выполнен"
	case ResultSent:
		return "Отправлен"
	default:
		return string(s)
	}
}

// AppointmentStatus is the state of a scheduled visit
type AppointmentStatus string

// AppointmentStatus values.
const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists all appointment statuses.
var AppointmentStatuses = []AppointmentStatus{AppointmentScheduled, AppointmentCompleted, AppointmentCancelled}

// Valid reports whether the status is supported.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// AppointmentStatusLabel returns the human-readable label for an appointment status.
func AppointmentStatusLabel(s AppointmentStatus) string {
	switch s {
	case AppointmentScheduled:
		return "Запланирован"
	case AppointmentCompleted:
		return "Завершен"
	case AppointmentCancelled:
		return "Отменен"
	default:
		return string(s)
	}
}

// Gender represents patient sex
type Gender string

// Gender values.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether the gender is supported.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// User represents a staff account.
type User struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Username  string     `db:"username" json:"username"`
	FullName  string     `db:"full_name" json:"full_name"`
	Role      Role       `db:"role" json:"role"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Status    UserStatus `db:"status" json:"status"`
	LastLogin *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Doctor links a doctor account to a specialization.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Specialization string    `db:"specialization" json:"specialization"`
}

// Patient represents a person registered at the medical center.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	Gender    *Gender   `db:"gender" json:"gender,omitempty"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AgeAt returns the patient's age in whole years at the given date.
func (p *Patient) AgeAt(date time.Time) int {
	age := date.Year() - p.BirthDate.Year()
	if date.Month() < p.BirthDate.Month() ||
		(date.Month() == p.BirthDate.Month() && date.Day() < p.BirthDate.Day()) {
		age--
	}
	return age
}

// AnalysisType describes a kind of lab analysis and its ordered parameters.
type AnalysisType struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Parameters  []string  `json:"parameters"`
}

// Declares reports whether the parameter belongs to this analysis type.
func (a *AnalysisType) Declares(parameter string) bool {
	for _, name := range a.Parameters {
		if name == parameter {
			return true
		}
	}
	return false
}

// AnalysisResult is a stored analysis result row.
type AnalysisResult struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	PatientID      uuid.UUID    `db:"patient_id" json:"patient_id"`
	AnalysisTypeID uuid.UUID    `db:"analysis_type_id" json:"analysis_type_id"`
	LabUserID      uuid.UUID    `db:"lab_user_id" json:"lab_user_id"`
	ResultData     *string      `db:"result_data" json:"result_data,omitempty"`
	ResultDate     time.Time    `db:"result_date" json:"result_date"`
	Status         ResultStatus `db:"status" json:"status"`
	Conclusion     *string      `db:"conclusion" json:"conclusion,omitempty"`
}

// ResultSummary is a result row joined with patient, analysis type and
// technician names for listing.
type ResultSummary struct {
	ID               uuid.UUID    `json:"id"`
	PatientID        uuid.UUID    `json:"patient_id"`
	PatientName      string       `json:"patient_name"`
	AnalysisTypeID   uuid.UUID    `json:"analysis_type_id"`
	AnalysisTypeName string       `json:"analysis_type_name"`
	LabUserID        uuid.UUID    `json:"lab_user_id"`
	LabUserName      string       `json:"lab_user_name"`
	ResultDate       time.Time    `json:"result_date"`
	Status           ResultStatus `json:"status"`
	Conclusion       *string      `json:"conclusion,omitempty"`
}

// PatientSummary is the patient portion of a result detail.
type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	BirthDate time.Time `json:"birth_date"`
	Gender    *Gender   `json:"gender,omitempty"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
}

// AnalysisTypeSummary is the analysis type portion of a result detail.
type AnalysisTypeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// ResultDetail is a fully annotated analysis result.
type ResultDetail struct {
	ID            uuid.UUID             `json:"id"`
	ResultDate    time.Time             `json:"result_date"`
	Status        ResultStatus          `json:"status"`
	Conclusion    *string               `json:"conclusion,omitempty"`
	Patient       PatientSummary        `json:"patient"`
	AnalysisType  AnalysisTypeSummary   `json:"analysis_type"`
	LabUserID     uuid.UUID             `json:"lab_user_id"`
	LabTechnician string                `json:"lab_technician"`
	Parameters    []ParameterAnnotation `json:"parameters"`
}

// Appointment is a scheduled patient visit joined with doctor and patient names.
type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	DoctorName      string            `json:"doctor_name"`
	Specialization  string            `json:"specialization"`
	PatientID       uuid.UUID         `json:"patient_id"`
	PatientName     string            `json:"patient_name"`
	PatientEmail    string            `json:"patient_email"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NamedCount is a labelled counter used in statistics.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Statistics aggregates activity for a reporting period.
type Statistics struct {
	From                 time.Time    `json:"from"`
	To                   time.Time    `json:"to"`
	UsersByRole          []NamedCount `json:"users_by_role"`
	TotalPatients        int          `json:"total_patients"`
	NewPatients          int          `json:"new_patients"`
	TotalAnalyses        int          `json:"total_analyses"`
	AnalysesByType       []NamedCount `json:"analyses_by_type"`
	TotalAppointments    int          `json:"total_appointments"`
	AppointmentsByStatus []NamedCount `json:"appointments_by_status"`
}
