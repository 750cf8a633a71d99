/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM makes spreadsheet applications detect UTF-8.
const utf8BOM = "\ufeff"

// CSVRenderer writes documents as semicolon separated values.
type CSVRenderer struct{}

// ContentType implements Renderer.
func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }

// Extension implements Renderer.
func (CSVRenderer) Extension() string { return "csv" }

// Render implements Renderer.
func (CSVRenderer) Render(w io.Writer, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	records := [][]string{{doc.Title}}
	if doc.Heading != "" {
		records = append(records, []string{doc.Heading})
	}
	for _, f := range doc.Fields {
		records = append(records, []string{f.Label, f.Value})
	}

	records = append(records, []string{}, doc.Columns)
	if len(doc.Rows) == 0 && doc.Empty != "" {
		records = append(records, []string{doc.Empty})
	}
	for _, row := range doc.Rows {
		records = append(records, row.Cells)
	}

	if doc.Conclusion != "" {
		records = append(records, []string{}, []string{"Заключение", doc.Conclusion})
	}
	if len(doc.Footer) > 0 {
		records = append(records, []string{})
		for _, f := range doc.Footer {
			records = append(records, []string{f.Label, f.Value})
		}
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	return nil
}
