/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/report"
)

type createAppointmentRequest struct {
	DoctorID        *uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	AppointmentDate time.Time  `json:"appointment_date"`
	Notes           string     `json:"notes"`
}

// ownDoctorID resolves the doctor profile of a signed-in doctor.
func ownDoctorID(c flamego.Context, store Store, user SessionUser) (uuid.UUID, error) {
	doctor, err := store.GetDoctorByUserID(c.Request().Context(), user.ID)
	if err != nil {
		if errorStatus(err) == http.StatusNotFound {
			return uuid.Nil, errNotDoctor
		}
		return uuid.Nil, err
	}
	return doctor.ID, nil
}

// ListAppointments returns appointments in date order. Doctors only see
// their own schedule.
func ListAppointments(c flamego.Context, s session.Session, store Store) {
	user, ok := currentUser(s)
	if !ok {
		writeFailure(c, "list appointments", errSessionUserMissing)
		return
	}

	var (
		filter db.AppointmentFilter
		err    error
	)

	if filter.DoctorID, err = optionalIDQuery(c, "doctor_id"); err != nil {
		writeFailure(c, "list appointments", err)
		return
	}
	if filter.PatientID, err = optionalIDQuery(c, "patient_id"); err != nil {
		writeFailure(c, "list appointments", err)
		return
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := db.AppointmentStatus(raw)
		if !status.Valid() {
			writeFailure(c, "list appointments", fmt.Errorf("%w: unknown appointment status %q", db.ErrValidation, raw))
			return
		}
		filter.Status = &status
	}
	if filter.FromDate, err = dateQuery(c, "from"); err != nil {
		writeFailure(c, "list appointments", err)
		return
	}
	if filter.ToDate, err = dateQuery(c, "to"); err != nil {
		writeFailure(c, "list appointments", err)
		return
	}

	if user.Role == db.RoleDoctor {
		doctorID, err := ownDoctorID(c, store, user)
		if err != nil {
			writeFailure(c, "list appointments", err)
			return
		}
		filter.DoctorID = &doctorID
	}

	appointments, err := store.ListAppointments(c.Request().Context(), filter)
	if err != nil {
		writeFailure(c, "list appointments", err)
		return
	}
	if appointments == nil {
		appointments = []db.Appointment{}
	}

	writeJSON(c, http.StatusOK, appointments)
}

// CreateAppointment schedules a visit. A doctor books into their own
// schedule; admins must name the doctor.
func CreateAppointment(c flamego.Context, s session.Session, store Store) {
	user, ok := currentUser(s)
	if !ok {
		writeFailure(c, "create appointment", errSessionUserMissing)
		return
	}

	var req createAppointmentRequest
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "create appointment", err)
		return
	}

	var doctorID uuid.UUID
	switch {
	case user.Role == db.RoleDoctor:
		id, err := ownDoctorID(c, store, user)
		if err != nil {
			writeFailure(c, "create appointment", err)
			return
		}
		doctorID = id
	case req.DoctorID != nil:
		doctorID = *req.DoctorID
	default:
		writeFailure(c, "create appointment", fmt.Errorf("%w: doctor_id is required", db.ErrValidation))
		return
	}

	appointment, err := store.CreateAppointment(c.Request().Context(), db.CreateAppointmentInput{
		DoctorID:        doctorID,
		PatientID:       req.PatientID,
		AppointmentDate: req.AppointmentDate,
		Notes:           req.Notes,
	})
	if err != nil {
		writeFailure(c, "create appointment", err)
		return
	}

	writeJSON(c, http.StatusCreated, appointment)
}

// GetAppointment returns one appointment.
func GetAppointment(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "get appointment", err)
		return
	}

	appointment, err := store.GetAppointment(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "get appointment", err)
		return
	}

	writeJSON(c, http.StatusOK, appointment)
}

// UpdateAppointmentStatus marks an appointment completed or cancelled.
func UpdateAppointmentStatus(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "update appointment status", err)
		return
	}

	var req struct {
		Status db.AppointmentStatus `json:"status"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "update appointment status", err)
		return
	}

	if err := store.UpdateAppointmentStatus(c.Request().Context(), id, req.Status); err != nil {
		writeFailure(c, "update appointment status", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// DeleteAppointment removes an appointment.
func DeleteAppointment(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "delete appointment", err)
		return
	}

	if err := store.DeleteAppointment(c.Request().Context(), id); err != nil {
		writeFailure(c, "delete appointment", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// ExportReferral downloads the referral document for an appointment.
func ExportReferral(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "export referral", err)
		return
	}

	ctx := c.Request().Context()
	appointment, err := store.GetAppointment(ctx, id)
	if err != nil {
		writeFailure(c, "export referral", err)
		return
	}

	patient, err := store.GetPatient(ctx, appointment.PatientID)
	if err != nil {
		writeFailure(c, "export referral", err)
		return
	}

	history, err := store.ListResults(ctx, db.ResultFilter{PatientID: &appointment.PatientID})
	if err != nil {
		writeFailure(c, "export referral", err)
		return
	}

	doc := report.Referral(appointment, patient, history, time.Now())
	writeDocument(c, doc, c.Query("format"),
		"Направление", patient.FullName, appointment.AppointmentDate.Format("2006-01-02"))
}

// RemindAppointment emails the patient a reminder. The body may override
// the recipient address.
func RemindAppointment(c flamego.Context, store Store, m *mailer.Mailer) {
	if m == nil {
		writeFailure(c, "send reminder", errMailNotConfigured)
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "send reminder", err)
		return
	}

	var req struct {
		To string `json:"to"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "send reminder", err)
		return
	}

	appointment, err := store.GetAppointment(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "send reminder", err)
		return
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		to = appointment.PatientEmail
	}

	if err := m.SendAppointmentReminder(c.Request().Context(), to, appointment); err != nil {
		writeFailure(c, "send reminder", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}
