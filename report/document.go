/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"time"

	"github.com/humaidq/medcenter/db"
)

// Date layouts used in printed documents.
const (
	DateLayout     = "02.01.2006"
	DateTimeLayout = "02.01.2006 15:04"
)

// Field is a labelled value in a document header or footer.
type Field struct {
	Label string
	Value string
}

// Row is one table row. Flagged rows are highlighted by renderers.
type Row struct {
	Cells   []string
	Flagged bool
}

// Document is a format-independent export: a header block, one table and a
// free-text conclusion.
type Document struct {
	Template   string
	Title      string
	Heading    string
	Fields     []Field
	Columns    []string
	Rows       []Row
	Empty      string
	Conclusion string
	Footer     []Field
	// Image is an optional PNG placed beside the header block.
	Image []byte
}

// Template describes a document variant.
type Template struct {
	Name    string
	Title   string
	Sheet   string
	Columns []string
	Empty   string
}

// Document templates.
var (
	AnalysisReportTemplate = Template{
		Name:    "analysis_report",
		Title:   "РЕЗУЛЬТАТ АНАЛИЗА",
		Sheet:   "Результат",
		Columns: []string{"Параметр", "Значение", "Ед. изм.", "Норма"},
		Empty:   "Нет данных о результатах анализа.",
	}
	PatientCardTemplate = Template{
		Name:    "patient_card",
		Title:   "КАРТА ПАЦИЕНТА",
		Sheet:   "Пациент",
		Columns: []string{"Дата", "Тип анализа", "Статус"},
		Empty:   "История анализов отсутствует",
	}
	ReferralTemplate = Template{
		Name:    "referral",
		Title:   "НАПРАВЛЕНИЕ НА ПРИЕМ",
		Sheet:   "Направление",
		Columns: []string{"Дата", "Тип анализа", "Статус"},
		Empty:   "Анализы не проводились",
	}
)

// JudgmentColumn is appended to analysis reports that include a verdict.
const JudgmentColumn = "Оценка"

func (t Template) newDocument() *Document {
	return &Document{
		Template: t.Name,
		Title:    t.Title,
		Columns:  append([]string(nil), t.Columns...),
		Empty:    t.Empty,
	}
}

// TemplateByName returns a template by its name.
func TemplateByName(name string) (Template, bool) {
	for _, t := range []Template{AnalysisReportTemplate, PatientCardTemplate, ReferralTemplate} {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

func sheetName(doc *Document) string {
	if t, ok := TemplateByName(doc.Template); ok {
		return t.Sheet
	}
	return "Отчет"
}

// AnalysisReportOptions controls optional parts of an analysis report.
type AnalysisReportOptions struct {
	WithJudgment bool
	GeneratedAt  time.Time
}

// AnalysisReport builds the printable view of an assembled result.
func AnalysisReport(detail *db.ResultDetail, opts AnalysisReportOptions) *Document {
	doc := AnalysisReportTemplate.newDocument()
	doc.Heading = "Анализ: " + detail.AnalysisType.Name
	doc.Fields = []Field{
		{Label: "ФИО пациента", Value: detail.Patient.FullName},
		{Label: "Дата рождения", Value: formatDate(detail.Patient.BirthDate)},
		{Label: "Пол", Value: genderLabel(detail.Patient.Gender)},
		{Label: "Телефон", Value: detail.Patient.Phone},
		{Label: "Дата анализа", Value: detail.ResultDate.Format(DateTimeLayout)},
	}

	if opts.WithJudgment {
		doc.Columns = append(doc.Columns, JudgmentColumn)
	}

	for _, p := range detail.Parameters {
		cells := []string{p.Name, p.Value, p.Unit, p.NormalRange()}
		if opts.WithJudgment {
			cells = append(cells, p.Judgment())
		}
		doc.Rows = append(doc.Rows, Row{
			Cells:   cells,
			Flagged: p.IsNormal != nil && !*p.IsNormal,
		})
	}

	if detail.Conclusion != nil {
		doc.Conclusion = *detail.Conclusion
	}

	doc.Footer = []Field{
		{Label: "Лаборант", Value: detail.LabTechnician},
		{Label: "Статус", Value: db.ResultStatusLabel(detail.Status)},
		{Label: "Дата", Value: generatedAt(opts.GeneratedAt).Format(DateLayout)},
	}

	return doc
}

// PatientCard builds a patient card with the analysis history.
func PatientCard(patient *db.Patient, history []db.ResultSummary, at time.Time) *Document {
	doc := PatientCardTemplate.newDocument()
	doc.Heading = "История анализов"
	doc.Fields = patientFields(patient)
	if patient.Email != "" {
		doc.Fields = append(doc.Fields, Field{Label: "Email", Value: patient.Email})
	}
	if patient.Address != "" {
		doc.Fields = append(doc.Fields, Field{Label: "Адрес", Value: patient.Address})
	}

	doc.Rows = historyRows(history)
	doc.Footer = []Field{{Label: "Дата", Value: generatedAt(at).Format(DateLayout)}}

	return doc
}

// Referral builds an appointment referral for a patient.
func Referral(appointment *db.Appointment, patient *db.Patient, history []db.ResultSummary, at time.Time) *Document {
	doc := ReferralTemplate.newDocument()
	doc.Heading = "Анализы пациента"

	specialization := appointment.Specialization
	if specialization == "" {
		specialization = "Не указана"
	}

	doc.Fields = append(patientFields(patient),
		Field{Label: "Врач", Value: appointment.DoctorName},
		Field{Label: "Специализация", Value: specialization},
		Field{Label: "Дата приема", Value: appointment.AppointmentDate.Format(DateLayout)},
		Field{Label: "Время приема", Value: appointment.AppointmentDate.Format("15:04")},
		Field{Label: "Статус", Value: db.AppointmentStatusLabel(appointment.Status)},
	)

	doc.Rows = historyRows(history)
	doc.Conclusion = appointment.Notes
	doc.Footer = []Field{{Label: "Дата выдачи", Value: generatedAt(at).Format(DateLayout)}}

	return doc
}

func patientFields(patient *db.Patient) []Field {
	fields := []Field{
		{Label: "ФИО", Value: patient.FullName},
		{Label: "Дата рождения", Value: formatDate(patient.BirthDate)},
		{Label: "Пол", Value: genderLabel(patient.Gender)},
	}
	if patient.Phone != "" {
		fields = append(fields, Field{Label: "Телефон", Value: patient.Phone})
	}
	return fields
}

func historyRows(history []db.ResultSummary) []Row {
	rows := make([]Row, 0, len(history))
	for _, r := range history {
		rows = append(rows, Row{Cells: []string{
			r.ResultDate.Format(DateLayout),
			r.AnalysisTypeName,
			db.ResultStatusLabel(r.Status),
		}})
	}
	return rows
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func genderLabel(g *db.Gender) string {
	if g == nil {
		return "Не указан"
	}
	switch *g {
	case db.GenderMale:
		return "Мужской"
	case db.GenderFemale:
		return "Женский"
	default:
		return string(*g)
	}
}

func generatedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
