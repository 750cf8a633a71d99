/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/report"
)

const bodyTemplates = `{{define "result"}}<html>
<head><style>{{.Style}}</style></head>
<body>
<h1>Результаты анализов</h1>
<p>Уважаемый(ая) <strong>{{.PatientName}}</strong>,</p>
<p>Направляем Вам результаты анализа <strong>{{.AnalysisName}}</strong> от {{.Date}}.</p>
<h2>Результаты:</h2>
{{template "table" .Doc}}
{{- if .Doc.Conclusion}}
<h2>Заключение</h2>
<p>{{.Doc.Conclusion}}</p>
{{- end}}
<p>С уважением,<br>Медицинский центр</p>
</body>
</html>{{end}}

{{define "reminder"}}<html>
<head><style>{{.Style}}</style></head>
<body>
<h1>Напоминание о приеме</h1>
<p>Уважаемый(ая) <strong>{{.PatientName}}</strong>,</p>
<p>Напоминаем Вам о предстоящем приеме в нашем медицинском центре.</p>
<h2>Информация о приеме:</h2>
<p><strong>Дата:</strong> {{.Date}}</p>
<p><strong>Время:</strong> {{.Time}}</p>
<p><strong>Врач:</strong> {{.DoctorName}}{{if .Specialization}}, {{.Specialization}}{{end}}</p>
<p><strong>Пожалуйста, не забудьте взять с собой паспорт и полис ОМС.</strong></p>
{{- if .Notes}}
<p><strong>Дополнительная информация:</strong></p>
<p>{{.Notes}}</p>
{{- end}}
<p>В случае невозможности посещения в указанное время, пожалуйста, свяжитесь с нами заранее.</p>
<p>С уважением,<br>Медицинский центр</p>
</body>
</html>{{end}}

{{define "report"}}<html>
<head><style>{{.Style}}</style></head>
<body>
<h1>{{.ReportType}}</h1>
{{- if .RecipientName}}
<p>Уважаемый(ая) <strong>{{.RecipientName}}</strong>,</p>
{{- end}}
<p>Направляем Вам отчет «{{.ReportType}}» за период {{.Period}}. Файл отчета приложен к письму.</p>
{{- if .Doc}}
{{template "table" .Doc}}
{{- end}}
{{- if .Note}}
<p>{{.Note}}</p>
{{- end}}
<p>С уважением,<br>Медицинский центр</p>
</body>
</html>{{end}}`

var bodies = template.Must(template.Must(template.New("mail").Parse(report.TableTemplate)).Parse(bodyTemplates))

var style = template.CSS(report.TableStyle)

// SendResult emails an assembled result with the XLSX export attached.
func (m *Mailer) SendResult(ctx context.Context, to string, detail *db.ResultDetail) error {
	doc := report.AnalysisReport(detail, report.AnalysisReportOptions{WithJudgment: true})

	var body bytes.Buffer
	err := renderBody(&body, "result", struct {
		Style        template.CSS
		PatientName  string
		AnalysisName string
		Date         string
		Doc          *report.Document
	}{
		Style:        style,
		PatientName:  detail.Patient.FullName,
		AnalysisName: detail.AnalysisType.Name,
		Date:         detail.ResultDate.Format(report.DateLayout),
		Doc:          doc,
	})
	if err != nil {
		return err
	}

	renderer := report.XLSXRenderer{}
	export, err := report.RenderBytes(renderer, doc)
	if err != nil {
		return fmt.Errorf("failed to export result: %w", err)
	}

	attachment := Attachment{
		Name: report.FileName(renderer.Extension(),
			"Анализ", detail.AnalysisType.Name, detail.Patient.FullName,
			detail.ResultDate.Format(time.DateOnly)),
		ContentType: renderer.ContentType(),
		Data:        export,
	}

	subject := "Результаты анализа: " + detail.AnalysisType.Name

	return m.send(ctx, to, subject, body.String(), attachment)
}

// SendAppointmentReminder emails a reminder about an upcoming visit.
func (m *Mailer) SendAppointmentReminder(ctx context.Context, to string, appointment *db.Appointment) error {
	date := appointment.AppointmentDate.Format(report.DateLayout)

	var body bytes.Buffer
	err := renderBody(&body, "reminder", struct {
		Style          template.CSS
		PatientName    string
		DoctorName     string
		Specialization string
		Date           string
		Time           string
		Notes          string
	}{
		Style:          style,
		PatientName:    appointment.PatientName,
		DoctorName:     appointment.DoctorName,
		Specialization: appointment.Specialization,
		Date:           date,
		Time:           appointment.AppointmentDate.Format("15:04"),
		Notes:          appointment.Notes,
	})
	if err != nil {
		return err
	}

	return m.send(ctx, to, "Напоминание о приеме "+date, body.String())
}

// ReportMail describes a report sent to a staff member.
type ReportMail struct {
	RecipientName string
	ReportType    string
	Period        string
	Note          string
	// Summary is an optional table shown in the message body.
	Summary    *report.Document
	Attachment Attachment
}

// SendReport emails a report file to a staff member.
func (m *Mailer) SendReport(ctx context.Context, to string, r ReportMail) error {
	if len(r.Attachment.Data) == 0 {
		return fmt.Errorf("%w: report %q has no file", ErrSendFailed, r.ReportType)
	}

	var body bytes.Buffer
	err := renderBody(&body, "report", struct {
		Style         template.CSS
		RecipientName string
		ReportType    string
		Period        string
		Note          string
		Doc           *report.Document
	}{
		Style:         style,
		RecipientName: r.RecipientName,
		ReportType:    r.ReportType,
		Period:        r.Period,
		Note:          r.Note,
		Doc:           r.Summary,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Отчет: %s (%s)", r.ReportType, r.Period)

	return m.send(ctx, to, subject, body.String(), r.Attachment)
}

// ResultStore is the part of the database store needed to deliver results.
type ResultStore interface {
	GetResultDetails(ctx context.Context, id uuid.UUID) (*db.ResultDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status db.ResultStatus) error
}

// DeliverResult emails a result and marks it sent. An empty address falls
// back to the patient's email.
func DeliverResult(ctx context.Context, store ResultStore, m *Mailer, id uuid.UUID, to string) error {
	detail, err := store.GetResultDetails(ctx, id)
	if err != nil {
		return err
	}

	if to == "" {
		to = detail.Patient.Email
	}

	if err := m.SendResult(ctx, to, detail); err != nil {
		return err
	}

	if err := store.UpdateStatus(ctx, id, db.ResultSent); err != nil {
		return fmt.Errorf("result %s was emailed but its status was not updated: %w", id, err)
	}

	return nil
}
