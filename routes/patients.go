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

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/report"
)

type patientRequest struct {
	FullName  string     `json:"full_name"`
	BirthDate string     `json:"birth_date"`
	Gender    *db.Gender `json:"gender"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
}

func (r patientRequest) input() (db.PatientInput, error) {
	birthDate, err := parseDate(r.BirthDate)
	if err != nil {
		return db.PatientInput{}, err
	}
	if birthDate == nil {
		return db.PatientInput{}, fmt.Errorf("%w: birth date is required", db.ErrValidation)
	}

	return db.PatientInput{
		FullName:  r.FullName,
		BirthDate: *birthDate,
		Gender:    r.Gender,
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
	}, nil
}

func decodePatient(c flamego.Context) (db.PatientInput, error) {
	var req patientRequest
	if err := decodeJSON(c, &req); err != nil {
		return db.PatientInput{}, err
	}
	return req.input()
}

// ListPatients returns patients ordered by name. With ?without_analysis=1
// only patients lacking results (of ?analysis_type_id, if set) are listed.
func ListPatients(c flamego.Context, store Store) {
	ctx := c.Request().Context()

	var (
		patients []db.Patient
		err      error
	)

	if c.QueryBool("without_analysis") {
		typeID, idErr := optionalIDQuery(c, "analysis_type_id")
		if idErr != nil {
			writeFailure(c, "list patients", idErr)
			return
		}
		patients, err = store.ListPatientsWithoutAnalysis(ctx, typeID)
	} else {
		patients, err = store.ListPatients(ctx, c.Query("search"))
	}
	if err != nil {
		writeFailure(c, "list patients", err)
		return
	}
	if patients == nil {
		patients = []db.Patient{}
	}

	writeJSON(c, http.StatusOK, patients)
}

// CreatePatient registers a patient.
func CreatePatient(c flamego.Context, store Store) {
	input, err := decodePatient(c)
	if err != nil {
		writeFailure(c, "create patient", err)
		return
	}

	patient, err := store.CreatePatient(c.Request().Context(), input)
	if err != nil {
		writeFailure(c, "create patient", err)
		return
	}

	writeJSON(c, http.StatusCreated, patient)
}

// GetPatient returns one patient.
func GetPatient(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "get patient", err)
		return
	}

	patient, err := store.GetPatient(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "get patient", err)
		return
	}

	writeJSON(c, http.StatusOK, patient)
}

// UpdatePatient replaces a patient's details.
func UpdatePatient(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "update patient", err)
		return
	}

	input, err := decodePatient(c)
	if err != nil {
		writeFailure(c, "update patient", err)
		return
	}

	if err := store.UpdatePatient(c.Request().Context(), id, input); err != nil {
		writeFailure(c, "update patient", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// DeletePatient removes a patient without analysis results.
func DeletePatient(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "delete patient", err)
		return
	}

	if err := store.DeletePatient(c.Request().Context(), id); err != nil {
		writeFailure(c, "delete patient", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// PatientVCard downloads the patient's contact card.
func PatientVCard(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "export contact card", err)
		return
	}

	patient, err := store.GetPatient(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "export contact card", err)
		return
	}

	data, err := report.EncodeVCard(report.PatientVCard(patient))
	if err != nil {
		writeFailure(c, "export contact card", err)
		return
	}

	writeAttachment(c, report.VCardContentType, report.FileName("vcf", patient.FullName), data)
}

// PatientQRCode returns a PNG QR code of the patient's contact card.
func PatientQRCode(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "render QR code", err)
		return
	}

	patient, err := store.GetPatient(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "render QR code", err)
		return
	}

	png, err := report.PatientQRCode(patient)
	if err != nil {
		writeFailure(c, "render QR code", err)
		return
	}

	c.ResponseWriter().Header().Set("Content-Type", "image/png")
	c.ResponseWriter().WriteHeader(http.StatusOK)
	if _, err := c.ResponseWriter().Write(png); err != nil {
		logger.Error("Failed to write QR code", "patient_id", id, "error", err)
	}
}

// ExportPatientCard downloads the patient card with the analysis history.
func ExportPatientCard(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "export patient card", err)
		return
	}

	ctx := c.Request().Context()
	patient, err := store.GetPatient(ctx, id)
	if err != nil {
		writeFailure(c, "export patient card", err)
		return
	}

	history, err := store.ListResults(ctx, db.ResultFilter{PatientID: &id})
	if err != nil {
		writeFailure(c, "export patient card", err)
		return
	}

	doc := report.WithPatientQRCode(report.PatientCard(patient, history, time.Now()), patient)
	writeDocument(c, doc, c.Query("format"), "Карта", strings.TrimSpace(patient.FullName))
}
