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
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/report"
)

type addResultRequest struct {
	PatientID      uuid.UUID         `json:"patient_id"`
	AnalysisTypeID uuid.UUID         `json:"analysis_type_id"`
	LabUserID      *uuid.UUID        `json:"lab_user_id"`
	Values         map[string]string `json:"values"`
	Conclusion     *string           `json:"conclusion"`
	ResultDate     *time.Time        `json:"result_date"`
}

// AddResult records a new analysis result. Lab technicians always record
// under their own account; admins may name another technician.
func AddResult(c flamego.Context, s session.Session, store Store) {
	user, ok := currentUser(s)
	if !ok {
		writeFailure(c, "add result", errSessionUserMissing)
		return
	}

	var req addResultRequest
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "add result", err)
		return
	}

	labUserID := user.ID
	if user.Role == db.RoleAdmin && req.LabUserID != nil {
		labUserID = *req.LabUserID
	}

	id, err := store.AddResult(c.Request().Context(), db.AddResultInput{
		PatientID:      req.PatientID,
		AnalysisTypeID: req.AnalysisTypeID,
		LabUserID:      labUserID,
		Values:         db.ParameterValues(req.Values),
		Conclusion:     req.Conclusion,
		ResultDate:     req.ResultDate,
	})
	if err != nil {
		writeFailure(c, "add result", err)
		return
	}

	writeJSON(c, http.StatusCreated, map[string]string{"id": id.String()})
}

func resultFilterFromQuery(c flamego.Context) (db.ResultFilter, error) {
	var (
		filter db.ResultFilter
		err    error
	)

	if filter.PatientID, err = optionalIDQuery(c, "patient_id"); err != nil {
		return filter, err
	}
	if filter.AnalysisTypeID, err = optionalIDQuery(c, "analysis_type_id"); err != nil {
		return filter, err
	}
	if filter.LabUserID, err = optionalIDQuery(c, "lab_user_id"); err != nil {
		return filter, err
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := db.ResultStatus(raw)
		if !status.Valid() {
			return filter, fmt.Errorf("%w: unknown result status %q", db.ErrValidation, raw)
		}
		filter.Status = &status
	}
	if filter.FromDate, err = dateQuery(c, "from"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = dateQuery(c, "to"); err != nil {
		return filter, err
	}

	return filter, nil
}

// ListResults returns result summaries, newest first.
func ListResults(c flamego.Context, store Store) {
	filter, err := resultFilterFromQuery(c)
	if err != nil {
		writeFailure(c, "list results", err)
		return
	}

	results, err := store.ListResults(c.Request().Context(), filter)
	if err != nil {
		writeFailure(c, "list results", err)
		return
	}
	if results == nil {
		results = []db.ResultSummary{}
	}

	writeJSON(c, http.StatusOK, results)
}

// GetResultDetails returns a result with every parameter annotated.
func GetResultDetails(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "get result", err)
		return
	}

	detail, err := store.GetResultDetails(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "get result", err)
		return
	}

	writeJSON(c, http.StatusOK, detail)
}

// UpdateResultStatus changes the workflow status of a result.
func UpdateResultStatus(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "update result status", err)
		return
	}

	var req struct {
		Status db.ResultStatus `json:"status"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "update result status", err)
		return
	}

	if err := store.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		writeFailure(c, "update result status", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// SetResultConclusion stores the doctor's conclusion for a result.
func SetResultConclusion(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "set conclusion", err)
		return
	}

	var req struct {
		Conclusion string `json:"conclusion"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "set conclusion", err)
		return
	}

	if err := store.SetConclusion(c.Request().Context(), id, req.Conclusion); err != nil {
		writeFailure(c, "set conclusion", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// DeleteResult removes a result.
func DeleteResult(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "delete result", err)
		return
	}

	if err := store.DeleteResult(c.Request().Context(), id); err != nil {
		writeFailure(c, "delete result", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

func analysisReport(detail *db.ResultDetail, withJudgment bool) *report.Document {
	return report.AnalysisReport(detail, report.AnalysisReportOptions{
		WithJudgment: withJudgment,
		GeneratedAt:  time.Now(),
	})
}

// ExportResult downloads a result as xlsx, csv or html. The judgment
// column is added with ?judgment=1.
func ExportResult(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "export result", err)
		return
	}

	detail, err := store.GetResultDetails(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "export result", err)
		return
	}

	doc := analysisReport(detail, c.QueryBool("judgment"))
	writeDocument(c, doc, c.Query("format"),
		"Анализ", detail.AnalysisType.Name, detail.Patient.FullName, detail.ResultDate.Format("2006-01-02"))
}

// EmailResult sends a result to the patient, or to the address in the
// request body, and marks it sent.
func EmailResult(c flamego.Context, store Store, m *mailer.Mailer) {
	if m == nil {
		writeFailure(c, "email result", errMailNotConfigured)
		return
	}

	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "email result", err)
		return
	}

	var req struct {
		To string `json:"to"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "email result", err)
		return
	}

	if err := mailer.DeliverResult(c.Request().Context(), store, m, id, strings.TrimSpace(req.To)); err != nil {
		writeFailure(c, "email result", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// ResultPage renders the printable result page.
func ResultPage(c flamego.Context, s session.Session, store Store, t template.Template, data template.Data) {
	id, err := idParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "Некорректный идентификатор результата")
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	detail, err := store.GetResultDetails(c.Request().Context(), id)
	if err != nil {
		if errorStatus(err) == http.StatusNotFound {
			SetErrorFlash(s, "Результат анализа не найден")
		} else {
			logger.Error("Failed to load result", "result_id", id, "error", err)
			SetErrorFlash(s, "Не удалось загрузить результат анализа")
		}
		c.Redirect("/", http.StatusSeeOther)
		return
	}

	data["Title"] = detail.AnalysisType.Name
	data["Detail"] = detail
	data["Doc"] = analysisReport(detail, true)
	t.HTML(http.StatusOK, "result")
}

// HomePage lists recent results with links to their printable pages.
func HomePage(c flamego.Context, s session.Session, store Store, t template.Template, data template.Data) {
	filter, err := resultFilterFromQuery(c)
	if err != nil {
		SetErrorFlash(s, "Некорректный фильтр")
		filter = db.ResultFilter{}
	}

	results, err := store.ListResults(c.Request().Context(), filter)
	if err != nil {
		logger.Error("Failed to list results", "error", err)
		data["Error"] = "Не удалось загрузить результаты анализов"
	}

	user, _ := currentUser(s)
	data["User"] = user
	data["RoleLabel"] = db.RoleLabel(user.Role)
	data["Results"] = results
	data["StatusLabel"] = db.ResultStatusLabel
	data["DateLayout"] = report.DateTimeLayout
	t.HTML(http.StatusOK, "home")
}

// ParameterChart renders the trend of one parameter across a patient's
// results, e.g. /api/patients/{id}/chart?parameter=Гемоглобин.
func ParameterChart(c flamego.Context, store Store) {
	patientID, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "render chart", err)
		return
	}

	parameter := strings.TrimSpace(c.Query("parameter"))
	if parameter == "" {
		writeFailure(c, "render chart", fmt.Errorf("%w: parameter is required", db.ErrValidation))
		return
	}

	ctx := c.Request().Context()
	patient, err := store.GetPatient(ctx, patientID)
	if err != nil {
		writeFailure(c, "render chart", err)
		return
	}

	points, err := store.ParameterHistory(ctx, patientID, parameter)
	if err != nil {
		writeFailure(c, "render chart", err)
		return
	}

	page, err := report.ParameterTrendChart(patient.FullName, store.References().Lookup(parameter), points)
	if err != nil {
		writeFailure(c, "render chart", err)
		return
	}

	c.ResponseWriter().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.ResponseWriter().WriteHeader(http.StatusOK)
	if _, err := c.ResponseWriter().Write([]byte(page)); err != nil {
		logger.Error("Failed to write chart", "error", err)
	}
}
