/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/report"
)

// statisticsPeriod reads ?from and ?to, defaulting to the current month
// up to today.
func statisticsPeriod(c flamego.Context, now time.Time) (time.Time, time.Time, error) {
	from, err := dateQuery(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if from == nil {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		from = &start
	}
	if to == nil {
		to = &now
	}

	return *from, *to, nil
}

// GetStatistics returns activity counters for a period.
func GetStatistics(c flamego.Context, store Store) {
	from, to, err := statisticsPeriod(c, time.Now())
	if err != nil {
		writeFailure(c, "get statistics", err)
		return
	}

	stats, err := store.GetStatistics(c.Request().Context(), from, to)
	if err != nil {
		writeFailure(c, "get statistics", err)
		return
	}

	writeJSON(c, http.StatusOK, stats)
}

func statisticsWorkbook(ctx context.Context, store Store, from, to time.Time) (*db.Statistics, []byte, error) {
	stats, err := store.GetStatistics(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}

	patients, err := store.ListPatients(ctx, "")
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := report.WriteStatisticsWorkbook(&buf, stats, patients); err != nil {
		return nil, nil, err
	}

	return stats, buf.Bytes(), nil
}

func statisticsFileName(stats *db.Statistics) string {
	return report.FileName(report.XLSXRenderer{}.Extension(),
		"Статистика", stats.From.Format("2006-01-02"), stats.To.Format("2006-01-02"))
}

// ExportStatistics downloads the statistics workbook.
func ExportStatistics(c flamego.Context, store Store) {
	from, to, err := statisticsPeriod(c, time.Now())
	if err != nil {
		writeFailure(c, "export statistics", err)
		return
	}

	stats, data, err := statisticsWorkbook(c.Request().Context(), store, from, to)
	if err != nil {
		writeFailure(c, "export statistics", err)
		return
	}

	writeAttachment(c, report.XLSXRenderer{}.ContentType(), statisticsFileName(stats), data)
}

// EmailStatistics sends the statistics workbook to the address in the
// request body or to the signed-in user.
func EmailStatistics(c flamego.Context, s session.Session, store Store, m *mailer.Mailer) {
	if m == nil {
		writeFailure(c, "email statistics", errMailNotConfigured)
		return
	}

	user, ok := currentUser(s)
	if !ok {
		writeFailure(c, "email statistics", errSessionUserMissing)
		return
	}

	var req struct {
		To   string `json:"to"`
		Note string `json:"note"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "email statistics", err)
		return
	}

	from, to, err := statisticsPeriod(c, time.Now())
	if err != nil {
		writeFailure(c, "email statistics", err)
		return
	}

	ctx := c.Request().Context()
	recipient := strings.TrimSpace(req.To)
	if recipient == "" {
		account, err := store.GetUser(ctx, user.ID)
		if err != nil {
			writeFailure(c, "email statistics", err)
			return
		}
		if account.Email != nil {
			recipient = *account.Email
		}
	}

	stats, data, err := statisticsWorkbook(ctx, store, from, to)
	if err != nil {
		writeFailure(c, "email statistics", err)
		return
	}

	err = m.SendReport(ctx, recipient, mailer.ReportMail{
		RecipientName: user.FullName,
		ReportType:    "Статистика",
		Period:        report.Period(stats),
		Note:          req.Note,
		Summary:       report.StatisticsDocument(stats),
		Attachment: mailer.Attachment{
			Name:        statisticsFileName(stats),
			ContentType: report.XLSXRenderer{}.ContentType(),
			Data:        data,
		},
	})
	if err != nil {
		writeFailure(c, "email statistics", fmt.Errorf("send statistics: %w", err))
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}
