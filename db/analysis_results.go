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

// AddResultInput holds the values for a new analysis result.
type AddResultInput struct {
	PatientID      uuid.UUID
	AnalysisTypeID uuid.UUID
	LabUserID      uuid.UUID
	Values         ParameterValues
	Conclusion     *string
	// ResultDate defaults to now when nil.
	ResultDate *time.Time
}

// ResultFilter narrows ListResults. Nil fields are ignored. FromDate and
// ToDate are calendar dates, both inclusive.
type ResultFilter struct {
	PatientID      *uuid.UUID
	AnalysisTypeID *uuid.UUID
	LabUserID      *uuid.UUID
	Status         *ResultStatus
	FromDate       *time.Time
	ToDate         *time.Time
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// where builds the WHERE clause and positional arguments for the filter.
func (f ResultFilter) where() (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.PatientID != nil {
		add("r.patient_id = $%d", *f.PatientID)
	}
	if f.AnalysisTypeID != nil {
		add("r.analysis_type_id = $%d", *f.AnalysisTypeID)
	}
	if f.LabUserID != nil {
		add("r.lab_user_id = $%d", *f.LabUserID)
	}
	if f.Status != nil {
		add("r.status = $%d", string(*f.Status))
	}
	if f.FromDate != nil {
		add("r.result_date >= $%d", startOfDay(*f.FromDate))
	}
	if f.ToDate != nil {
		add("r.result_date < $%d", startOfDay(*f.ToDate).AddDate(0, 0, 1))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// AddResult validates and stores a new analysis result with status completed.
func (s *Store) AddResult(ctx context.Context, input AddResultInput) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, wrapWriteError("begin transaction", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("Failed to roll back add result transaction", "error", err)
		}
	}()

	var patientExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1)`, input.PatientID).Scan(&patientExists); err != nil {
		return uuid.Nil, wrapReadError("check patient", err)
	}
	if !patientExists {
		return uuid.Nil, fmt.Errorf("%w: patient %s does not exist", ErrValidation, input.PatientID)
	}

	var params string
	err = tx.QueryRow(ctx, `SELECT parameters FROM analysis_types WHERE id = $1`, input.AnalysisTypeID).Scan(&params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: analysis type %s does not exist", ErrValidation, input.AnalysisTypeID)
		}
		return uuid.Nil, wrapReadError("check analysis type", err)
	}

	var role Role
	err = tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, input.LabUserID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: lab user %s does not exist", ErrValidation, input.LabUserID)
		}
		return uuid.Nil, wrapReadError("check lab user", err)
	}
	if role != RoleLab {
		return uuid.Nil, fmt.Errorf("%w: user %s is not a lab technician", ErrValidation, input.LabUserID)
	}

	if err := validateResultValues(SplitParameters(params), input.Values); err != nil {
		return uuid.Nil, err
	}

	payload, err := encodePayload(input.Values)
	if err != nil {
		return uuid.Nil, err
	}

	resultDate := time.Now()
	if input.ResultDate != nil {
		resultDate = *input.ResultDate
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO analysis_results (patient_id, analysis_type_id, lab_user_id, result_data, result_date, status, conclusion)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, input.PatientID, input.AnalysisTypeID, input.LabUserID, payload, resultDate, ResultCompleted, normalizeOptional(input.Conclusion)).Scan(&id)
	if err != nil {
		return uuid.Nil, wrapWriteError("insert analysis result", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, wrapWriteError("commit analysis result", err)
	}

	logger.Info("Added analysis result", "result_id", id, "patient_id", input.PatientID, "analysis_type_id", input.AnalysisTypeID)

	return id, nil
}

// validateResultValues requires at least one non-blank value and rejects
// parameters the analysis type does not declare.
func validateResultValues(declared []string, values ParameterValues) error {
	allowed := make(map[string]bool, len(declared))
	for _, name := range declared {
		allowed[name] = true
	}

	filled := 0
	for _, name := range values.Names() {
		if !allowed[name] {
			return fmt.Errorf("%w: parameter %q is not declared by the analysis type", ErrValidation, name)
		}
		if strings.TrimSpace(values[name]) != "" {
			filled++
		}
	}

	if filled == 0 {
		return fmt.Errorf("%w: at least one parameter value is required", ErrValidation)
	}

	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListResults returns results matching the filter, most recent first.
func (s *Store) ListResults(ctx context.Context, filter ResultFilter) ([]ResultSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	where, args := filter.where()
	query := `
		SELECT r.id, r.patient_id, p.full_name, r.analysis_type_id, t.name,
		       r.lab_user_id, u.full_name, r.result_date, r.status, r.conclusion
		FROM analysis_results r
		JOIN patients p ON p.id = r.patient_id
		JOIN analysis_types t ON t.id = r.analysis_type_id
		JOIN users u ON u.id = r.lab_user_id
		` + where + `
		ORDER BY r.result_date DESC, r.id
	`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapReadError("list analysis results", err)
	}
	defer rows.Close()

	var results []ResultSummary
	for rows.Next() {
		var r ResultSummary
		err := rows.Scan(
			&r.ID, &r.PatientID, &r.PatientName, &r.AnalysisTypeID, &r.AnalysisTypeName,
			&r.LabUserID, &r.LabUserName, &r.ResultDate, &r.Status, &r.Conclusion,
		)
		if err != nil {
			return nil, wrapReadError("scan analysis result", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate analysis results", err)
	}

	return results, nil
}

// GetResult returns the stored result row.
func (s *Store) GetResult(ctx context.Context, id uuid.UUID) (*AnalysisResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var r AnalysisResult
	err := s.pool.QueryRow(ctx, `
		SELECT id, patient_id, analysis_type_id, lab_user_id, result_data, result_date, status, conclusion
		FROM analysis_results
		WHERE id = $1
	`, id).Scan(&r.ID, &r.PatientID, &r.AnalysisTypeID, &r.LabUserID, &r.ResultData, &r.ResultDate, &r.Status, &r.Conclusion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: analysis result %s", ErrNotFound, id)
		}
		return nil, wrapReadError("get analysis result", err)
	}

	return &r, nil
}

// UpdateStatus sets the status of a result. Any valid status may replace any other.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status ResultStatus) error {
	if err := s.ready(); err != nil {
		return err
	}

	if !status.Valid() {
		return fmt.Errorf("%w: unknown result status %q", ErrValidation, status)
	}

	tag, err := s.pool.Exec(ctx, `UPDATE analysis_results SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return wrapWriteError("update result status", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: analysis result %s", ErrNotFound, id)
	}

	logger.Info("Updated result status", "result_id", id, "status", status)

	return nil
}

// SetConclusion stores the doctor's conclusion for a result. A blank
// conclusion clears it.
func (s *Store) SetConclusion(ctx context.Context, id uuid.UUID, conclusion string) error {
	if err := s.ready(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `UPDATE analysis_results SET conclusion = $1 WHERE id = $2`, normalizeOptional(&conclusion), id)
	if err != nil {
		return wrapWriteError("update result conclusion", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: analysis result %s", ErrNotFound, id)
	}

	return nil
}

// DeleteResult removes a result.
func (s *Store) DeleteResult(ctx context.Context, id uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM analysis_results WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("delete analysis result", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: analysis result %s", ErrNotFound, id)
	}

	return nil
}

// GetResultDetails returns a result joined with its patient, analysis type
// and technician, with every parameter annotated against the reference table.
// A missing join target is reported as ErrNotFound; a partial record is never
// returned.
func (s *Store) GetResultDetails(ctx context.Context, id uuid.UUID) (*ResultDetail, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		detail ResultDetail
		data   *string

		patientID, typeID, labID     *uuid.UUID
		patientName, typeName, labNm *string
		birthDate                    *time.Time
		gender                       *Gender
		phone, email, description    *string
		params                       *string
	)

	err := s.pool.QueryRow(ctx, `
		SELECT r.id, r.result_date, r.status, r.result_data, r.conclusion,
		       p.id, p.full_name, p.birth_date, p.gender, p.phone, p.email,
		       t.id, t.name, t.description, t.parameters,
		       u.id, u.full_name
		FROM analysis_results r
		LEFT JOIN patients p ON p.id = r.patient_id
		LEFT JOIN analysis_types t ON t.id = r.analysis_type_id
		LEFT JOIN users u ON u.id = r.lab_user_id
		WHERE r.id = $1
	`, id).Scan(
		&detail.ID, &detail.ResultDate, &detail.Status, &data, &detail.Conclusion,
		&patientID, &patientName, &birthDate, &gender, &phone, &email,
		&typeID, &typeName, &description, &params,
		&labID, &labNm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: analysis result %s", ErrNotFound, id)
		}
		return nil, wrapReadError("get analysis result details", err)
	}

	switch {
	case patientID == nil:
		return nil, fmt.Errorf("%w: patient of analysis result %s", ErrNotFound, id)
	case typeID == nil:
		return nil, fmt.Errorf("%w: analysis type of analysis result %s", ErrNotFound, id)
	case labID == nil:
		return nil, fmt.Errorf("%w: lab user of analysis result %s", ErrNotFound, id)
	}

	detail.Patient = PatientSummary{
		ID:        *patientID,
		FullName:  deref(patientName),
		BirthDate: derefTime(birthDate),
		Gender:    gender,
		Phone:     deref(phone),
		Email:     deref(email),
	}
	detail.AnalysisType = AnalysisTypeSummary{
		ID:          *typeID,
		Name:        deref(typeName),
		Description: deref(description),
	}
	detail.LabUserID = *labID
	detail.LabTechnician = deref(labNm)
	detail.Parameters = AssembleParameters(s.refs, SplitParameters(deref(params)), data)

	return &detail, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefTime(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}

// ParameterPoint is one measurement of a parameter over time.
type ParameterPoint struct {
	ResultID   uuid.UUID `json:"result_id"`
	ResultDate time.Time `json:"result_date"`
	Value      string    `json:"value"`
	Number     float64   `json:"number"`
}

// ParameterHistory returns numeric readings of a parameter for a patient in
// chronological order. Results with malformed payloads or non-numeric values
// are skipped.
func (s *Store) ParameterHistory(ctx context.Context, patientID uuid.UUID, parameter string) ([]ParameterPoint, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, result_date, result_data
		FROM analysis_results
		WHERE patient_id = $1
		ORDER BY result_date ASC
	`, patientID)
	if err != nil {
		return nil, wrapReadError("query parameter history", err)
	}
	defer rows.Close()

	ref := s.refs.Lookup(parameter)

	var points []ParameterPoint
	for rows.Next() {
		var (
			resultID   uuid.UUID
			resultDate time.Time
			data       *string
		)
		if err := rows.Scan(&resultID, &resultDate, &data); err != nil {
			return nil, wrapReadError("scan parameter history", err)
		}

		if data == nil {
			continue
		}

		values, err := decodePayload(*data)
		if err != nil {
			continue
		}

		raw, ok := values[parameter]
		if !ok {
			continue
		}

		value := ParseValue(raw, ref)
		number, ok := value.Numeric()
		if !ok {
			continue
		}

		points = append(points, ParameterPoint{
			ResultID:   resultID,
			ResultDate: resultDate,
			Value:      value.String(),
			Number:     number,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate parameter history", err)
	}

	return points, nil
}
