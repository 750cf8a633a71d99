/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
)

// TableTemplate renders the table part of a document. It is shared with
// the email bodies.
const TableTemplate = `{{define "table"}}<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- if and (not .Rows) .Empty}}
<tr><td colspan="{{len .Columns}}">{{.Empty}}</td></tr>
{{- end}}
{{- range .Rows}}
<tr{{if .Flagged}} class="flagged"{{end}}>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>{{end}}`

// TableStyle is the stylesheet used by TableTemplate.
const TableStyle = `body { font-family: Arial, sans-serif; line-height: 1.6; }
table { border-collapse: collapse; width: 100%; margin-top: 20px; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
tr:nth-child(even) { background-color: #f9f9f9; }
tr.flagged td { color: #c0392b; font-weight: bold; }`

const documentTemplate = `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>{{.Doc.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<h1>{{.Doc.Title}}</h1>
{{- if .Image}}
<img src="{{.Image}}" alt="QR" width="160" height="160">
{{- end}}
{{- if .Doc.Fields}}
<dl>
{{- range .Doc.Fields}}
<dt>{{.Label}}</dt><dd>{{.Value}}</dd>
{{- end}}
</dl>
{{- end}}
{{- if .Doc.Heading}}
<h2>{{.Doc.Heading}}</h2>
{{- end}}
{{template "table" .Doc}}
{{- if .Doc.Conclusion}}
<h2>Заключение</h2>
<p>{{.Doc.Conclusion}}</p>
{{- end}}
{{- if .Doc.Footer}}
<footer>
{{- range .Doc.Footer}}
<p>{{.Label}}: {{.Value}}</p>
{{- end}}
</footer>
{{- end}}
</body>
</html>`

var documentHTML = template.Must(template.Must(template.New("document").Parse(documentTemplate)).Parse(TableTemplate))

// HTMLRenderer writes documents as standalone printable HTML pages.
type HTMLRenderer struct{}

// ContentType implements Renderer.
func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Extension implements Renderer.
func (HTMLRenderer) Extension() string { return "html" }

// Render implements Renderer.
func (HTMLRenderer) Render(w io.Writer, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}

	var image template.URL
	if len(doc.Image) > 0 {
		image = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(doc.Image))
	}

	err := documentHTML.Execute(w, struct {
		Doc   *Document
		Style template.CSS
		Image template.URL
	}{Doc: doc, Style: template.CSS(TableStyle), Image: image})
	if err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}

	return nil
}
