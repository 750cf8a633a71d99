/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXRenderer writes documents as Excel workbooks with a single sheet.
type XLSXRenderer struct{}

// ContentType implements Renderer.
func (XLSXRenderer) ContentType() string { return xlsxContentType }

// Extension implements Renderer.
func (XLSXRenderer) Extension() string { return "xlsx" }

// Render implements Renderer.
func (XLSXRenderer) Render(w io.Writer, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}

	f, err := newWorkbook(sheetName(doc))
	if err != nil {
		return err
	}
	defer closeWorkbook(f)

	if err := writeDocumentSheet(f, sheetName(doc), doc); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// newWorkbook creates a workbook whose only sheet has the given name.
func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheet)
	if err != nil {
		closeWorkbook(f)
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		closeWorkbook(f)
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	return f, nil
}

func closeWorkbook(f *excelize.File) {
	if err := f.Close(); err != nil {
		logger.Warn("Failed to close workbook", "error", err)
	}
}

type workbookStyles struct {
	title   int
	label   int
	header  int
	cell    int
	flagged int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var (
		styles workbookStyles
		err    error
	)

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}

	if styles.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return styles, fmt.Errorf("failed to create title style: %w", err)
	}

	if styles.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return styles, fmt.Errorf("failed to create label style: %w", err)
	}

	if styles.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: border,
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	}); err != nil {
		return styles, fmt.Errorf("failed to create header style: %w", err)
	}

	if styles.cell, err = f.NewStyle(&excelize.Style{Border: border}); err != nil {
		return styles, fmt.Errorf("failed to create cell style: %w", err)
	}

	if styles.flagged, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#C0392B"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#FDECEA"}, Pattern: 1},
		Border: border,
	}); err != nil {
		return styles, fmt.Errorf("failed to create flagged style: %w", err)
	}

	return styles, nil
}

// sheetWriter writes cells top to bottom.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (sw *sheetWriter) set(col int, value interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, sw.row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := sw.f.SetCellValue(sw.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	if style != 0 {
		if err := sw.f.SetCellStyle(sw.sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set style for %s: %w", cell, err)
		}
	}
	return nil
}

func (sw *sheetWriter) fields(fields []Field, labelStyle int) error {
	for _, field := range fields {
		if err := sw.set(1, field.Label, labelStyle); err != nil {
			return err
		}
		if err := sw.set(2, field.Value, 0); err != nil {
			return err
		}
		sw.row++
	}
	return nil
}

var documentColumnWidths = []float64{26, 22, 14, 16, 14}

func writeDocumentSheet(f *excelize.File, sheet string, doc *Document) error {
	styles, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f, sheet: sheet, row: 1}

	if err := sw.set(1, doc.Title, styles.title); err != nil {
		return err
	}
	sw.row++

	if doc.Heading != "" {
		if err := sw.set(1, doc.Heading, styles.label); err != nil {
			return err
		}
		sw.row++
	}

	sw.row++
	if err := sw.fields(doc.Fields, styles.label); err != nil {
		return err
	}
	sw.row++

	for i, column := range doc.Columns {
		if err := sw.set(i+1, column, styles.header); err != nil {
			return err
		}
	}
	sw.row++

	if len(doc.Rows) == 0 && doc.Empty != "" {
		if err := sw.set(1, doc.Empty, 0); err != nil {
			return err
		}
		sw.row++
	}

	for _, row := range doc.Rows {
		style := styles.cell
		if row.Flagged {
			style = styles.flagged
		}
		for i, value := range row.Cells {
			if err := sw.set(i+1, value, style); err != nil {
				return err
			}
		}
		sw.row++
	}

	if doc.Conclusion != "" {
		sw.row++
		if err := sw.fields([]Field{{Label: "Заключение", Value: doc.Conclusion}}, styles.label); err != nil {
			return err
		}
	}

	if len(doc.Footer) > 0 {
		sw.row++
		if err := sw.fields(doc.Footer, styles.label); err != nil {
			return err
		}
	}

	for i := range doc.Columns {
		if i >= len(documentColumnWidths) {
			break
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, documentColumnWidths[i]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if len(doc.Image) > 0 {
		cell, err := excelize.CoordinatesToCellName(len(doc.Columns)+2, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.AddPictureFromBytes(sheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      doc.Image,
			Format:    &excelize.GraphicOptions{ScaleX: 0.5, ScaleY: 0.5},
		}); err != nil {
			return fmt.Errorf("failed to add picture: %w", err)
		}
	}

	return nil
}
