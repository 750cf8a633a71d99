/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/report"
)

func writeJSON(c flamego.Context, status int, v interface{}) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")
	c.ResponseWriter().WriteHeader(status)
	if err := json.NewEncoder(c.ResponseWriter()).Encode(v); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func writeError(c flamego.Context, status int, message string) {
	writeJSON(c, status, map[string]string{"error": message})
}

// errorStatus maps an error to the HTTP status reported to the client.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, report.ErrNoDataPoints):
		return http.StatusNotFound
	case errors.Is(err, db.ErrValidation),
		errors.Is(err, errInvalidID),
		errors.Is(err, errInvalidDate),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errNotDoctor),
		errors.Is(err, report.ErrUnsupportedFormat),
		errors.Is(err, mailer.ErrNoRecipient):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errMailNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, mailer.ErrSendFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure reports err to the client. Server-side failures are logged
// and their details are not exposed.
func writeFailure(c flamego.Context, action string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "action", action, "path", c.Request().URL.Path, "error", err)
		writeError(c, status, fmt.Sprintf("failed to %s", action))
		return
	}
	writeError(c, status, err.Error())
}

func decodeJSON(c flamego.Context, v interface{}) error {
	if err := json.NewDecoder(c.Request().Body().ReadCloser()).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}

func idParam(c flamego.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", errInvalidID, name)
	}
	return id, nil
}

func optionalIDQuery(c flamego.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errInvalidID, name)
	}
	return &id, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	date, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidDate, raw)
	}
	return &date, nil
}

func dateQuery(c flamego.Context, name string) (*time.Time, error) {
	return parseDate(c.Query(name))
}

// writeDocument renders doc in the requested format as a download.
func writeDocument(c flamego.Context, doc *report.Document, format string, nameParts ...string) {
	f, err := report.ParseFormat(format)
	if err != nil {
		writeFailure(c, "export document", err)
		return
	}
	renderer, err := report.RendererFor(f)
	if err != nil {
		writeFailure(c, "export document", err)
		return
	}

	data, err := report.RenderBytes(renderer, doc)
	if err != nil {
		writeFailure(c, "export document", err)
		return
	}

	writeAttachment(c, renderer.ContentType(), report.FileName(renderer.Extension(), nameParts...), data)
}

func writeAttachment(c flamego.Context, contentType, fileName string, data []byte) {
	header := c.ResponseWriter().Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	c.ResponseWriter().WriteHeader(http.StatusOK)
	if _, err := c.ResponseWriter().Write(data); err != nil {
		logger.Error("Failed to write attachment", "file", fileName, "error", err)
	}
}

// CSRFToken returns the token JSON clients send in the X-CSRF-Token header.
func CSRFToken(c flamego.Context, x csrf.CSRF) {
	writeJSON(c, http.StatusOK, map[string]string{"token": x.Token()})
}
