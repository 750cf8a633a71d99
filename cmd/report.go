/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/report"
)

var CmdReport = &cli.Command{
	Name:  "report",
	Usage: "Generate management reports",
	Flags: []cli.Flag{
		databaseURLFlag(),
	},
	Commands: []*cli.Command{
		{
			Name:  "statistics",
			Usage: "Build the statistics workbook for a period",
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: "from", Usage: "first date, YYYY-MM-DD (default: first day of this month)"},
				&cli.StringFlag{Name: "to", Usage: "last date, YYYY-MM-DD (default: today)"},
				&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the workbook to this file"},
				&cli.StringFlag{Name: "email", Usage: "email the workbook to this address"},
				&cli.StringFlag{Name: "note", Usage: "note included in the email"},
			}, mailFlags()...),
			Action: reportStatistics,
		},
	},
}

// reportPeriod resolves the --from and --to flags, defaulting to the
// current month up to now.
func reportPeriod(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	from, err := optionalDate(fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := optionalDate(toRaw)
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

func reportStatistics(ctx context.Context, cmd *cli.Command) error {
	from, to, err := reportPeriod(cmd.String("from"), cmd.String("to"), time.Now())
	if err != nil {
		return err
	}

	output := cmd.String("output")
	recipient := cmd.String("email")
	if output == "" && recipient == "" {
		return errOutputRequired
	}

	var m *mailer.Mailer
	if recipient != "" {
		if m, err = mailer.New(mailConfig(cmd)); err != nil {
			return err
		}
	}

	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.GetStatistics(ctx, from, to)
	if err != nil {
		return err
	}

	patients, err := store.ListPatients(ctx, "")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteStatisticsWorkbook(&buf, stats, patients); err != nil {
		return err
	}

	fileName := report.FileName("xlsx", "Статистика", stats.From.Format("2006-01-02"), stats.To.Format("2006-01-02"))

	if output != "" {
		if err := writeFile(output, func(w io.Writer) error {
			_, err := w.Write(buf.Bytes())
			return err
		}); err != nil {
			return err
		}
		appLogger.Info("Statistics workbook written", "file", output, "period", report.Period(stats))
	}

	if m != nil {
		err := m.SendReport(ctx, recipient, mailer.ReportMail{
			ReportType: "Статистика",
			Period:     report.Period(stats),
			Note:       cmd.String("note"),
			Summary:    report.StatisticsDocument(stats),
			Attachment: mailer.Attachment{
				Name:        fileName,
				ContentType: report.XLSXRenderer{}.ContentType(),
				Data:        buf.Bytes(),
			},
		})
		if err != nil {
			return err
		}
		appLogger.Info("Statistics workbook emailed", "to", recipient, "period", report.Period(stats))
	}

	return nil
}
