/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Format is an export file format.
type Format string

// Supported export formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatXLSX, FormatCSV, FormatHTML:
		return f, nil
	case "":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Renderer writes a document in one file format.
type Renderer interface {
	Render(w io.Writer, doc *Document) error
	ContentType() string
	Extension() string
}

// RendererFor returns the renderer for a format.
func RendererFor(format Format) (Renderer, error) {
	switch format {
	case FormatXLSX:
		return XLSXRenderer{}, nil
	case FormatCSV:
		return CSVRenderer{}, nil
	case FormatHTML:
		return HTMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// RenderBytes renders a document into memory.
func RenderBytes(r Renderer, doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var fileNameReplacer = strings.NewReplacer("/", "-", `\`, "-", ":", "-", " ", "_", `"`, "", "*", "", "?", "", "<", "", ">", "", "|", "")

// FileName joins parts with underscores into a file name that is safe on
// common file systems.
func FileName(ext string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, fileNameReplacer.Replace(p))
		}
	}
	if len(kept) == 0 {
		kept = append(kept, "document")
	}
	return strings.Join(kept, "_") + "." + strings.TrimPrefix(ext, ".")
}
