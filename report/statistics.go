/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/humaidq/medcenter/db"
)

// Statistics workbook sheet names.
const (
	SummarySheet  = "Сводка"
	PatientsSheet = "Пациенты"
)

// StatisticsTitle is the title of statistics reports.
const StatisticsTitle = "СТАТИСТИКА МЕДИЦИНСКОГО ЦЕНТРА"

// Period formats a statistics period for display.
func Period(stats *db.Statistics) string {
	return stats.From.Format(DateLayout) + " – " + stats.To.Format(DateLayout)
}

// StatisticsDocument flattens statistics into a single two-column table.
func StatisticsDocument(stats *db.Statistics) *Document {
	doc := &Document{
		Template: "statistics",
		Title:    StatisticsTitle,
		Fields:   []Field{{Label: "Период", Value: Period(stats)}},
		Columns:  []string{"Показатель", "Значение"},
	}

	add := func(label string, count int) {
		doc.Rows = append(doc.Rows, Row{Cells: []string{label, strconv.Itoa(count)}})
	}

	for _, c := range stats.UsersByRole {
		add("Пользователи: "+db.RoleLabel(db.Role(c.Name)), c.Count)
	}
	add("Всего пациентов", stats.TotalPatients)
	add("Новых пациентов", stats.NewPatients)
	add("Анализов за период", stats.TotalAnalyses)
	for _, c := range stats.AnalysesByType {
		add("Анализы: "+c.Name, c.Count)
	}
	add("Приемов за период", stats.TotalAppointments)
	for _, c := range stats.AppointmentsByStatus {
		add("Приемы: "+db.AppointmentStatusLabel(db.AppointmentStatus(c.Name)), c.Count)
	}

	return doc
}

// WriteStatisticsWorkbook writes a workbook with a summary sheet and a
// patient list sheet.
func WriteStatisticsWorkbook(w io.Writer, stats *db.Statistics, patients []db.Patient) error {
	f, err := newWorkbook(SummarySheet)
	if err != nil {
		return err
	}
	defer closeWorkbook(f)

	if err := writeDocumentSheet(f, SummarySheet, StatisticsDocument(stats)); err != nil {
		return err
	}

	if _, err := f.NewSheet(PatientsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writePatientSheet(f, patients); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

var patientSheetHeader = []string{"ФИО", "Дата рождения", "Пол", "Телефон", "Email", "Адрес"}

var patientSheetWidths = []float64{32, 16, 12, 20, 26, 36}

func writePatientSheet(f *excelize.File, patients []db.Patient) error {
	styles, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f, sheet: PatientsSheet, row: 1}

	for i, header := range patientSheetHeader {
		if err := sw.set(i+1, header, styles.header); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(PatientsSheet, col, col, patientSheetWidths[i]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	sw.row++

	for _, p := range patients {
		cells := []string{p.FullName, formatDate(p.BirthDate), genderLabel(p.Gender), p.Phone, p.Email, p.Address}
		for i, value := range cells {
			if err := sw.set(i+1, value, styles.cell); err != nil {
				return err
			}
		}
		sw.row++
	}

	return nil
}
