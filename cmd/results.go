/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/report"
)

var CmdResults = &cli.Command{
	Name:  "results",
	Usage: "Inspect, export and deliver analysis results",
	Flags: []cli.Flag{
		databaseURLFlag(),
	},
	Commands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List results, newest first",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "patient", Usage: "patient id"},
				&cli.StringFlag{Name: "type", Usage: "analysis type id"},
				&cli.StringFlag{Name: "lab", Usage: "lab technician user id"},
				&cli.StringFlag{Name: "status", Usage: "pending, completed or sent"},
				&cli.StringFlag{Name: "from", Usage: "first date, YYYY-MM-DD (inclusive)"},
				&cli.StringFlag{Name: "to", Usage: "last date, YYYY-MM-DD (inclusive)"},
			},
			Action: resultsList,
		},
		{
			Name:      "show",
			Usage:     "Show an annotated result",
			ArgsUsage: "<id>",
			Action:    resultsShow,
		},
		{
			Name:      "export",
			Usage:     "Export a result as xlsx, csv or html",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "format", Value: string(report.FormatXLSX), Usage: "xlsx, csv or html"},
				&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout for text formats when empty)"},
				&cli.BoolFlag{Name: "judgment", Usage: "add a normal/abnormal column"},
			},
			Action: resultsExport,
		},
		{
			Name:      "email",
			Usage:     "Email a result and mark it sent",
			ArgsUsage: "<id>",
			Flags: append([]cli.Flag{
				&cli.StringFlag{Name: "to", Usage: "recipient (defaults to the patient's email)"},
			}, mailFlags()...),
			Action: resultsEmail,
		},
		{
			Name:      "status",
			Usage:     "Set the status of a result",
			ArgsUsage: "<id> <pending|completed|sent>",
			Action:    resultsStatus,
		},
	},
}

func resultIDArg(cmd *cli.Command) (uuid.UUID, error) {
	raw := strings.TrimSpace(cmd.Args().First())
	if raw == "" {
		return uuid.Nil, errResultIDRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", errInvalidResultID, raw)
	}
	return id, nil
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", db.ErrValidation, raw)
	}
	return &id, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return nil, nil
	}
	date, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", db.ErrValidation, raw)
	}
	return &date, nil
}

func resultFilter(cmd *cli.Command) (db.ResultFilter, error) {
	var (
		filter db.ResultFilter
		err    error
	)

	if filter.PatientID, err = optionalUUID(cmd.String("patient")); err != nil {
		return filter, err
	}
	if filter.AnalysisTypeID, err = optionalUUID(cmd.String("type")); err != nil {
		return filter, err
	}
	if filter.LabUserID, err = optionalUUID(cmd.String("lab")); err != nil {
		return filter, err
	}
	if raw := strings.TrimSpace(cmd.String("status")); raw != "" {
		status := db.ResultStatus(raw)
		if !status.Valid() {
			return filter, fmt.Errorf("%w: unknown result status %q", db.ErrValidation, raw)
		}
		filter.Status = &status
	}
	if filter.FromDate, err = optionalDate(cmd.String("from")); err != nil {
		return filter, err
	}
	if filter.ToDate, err = optionalDate(cmd.String("to")); err != nil {
		return filter, err
	}

	return filter, nil
}

func resultsList(ctx context.Context, cmd *cli.Command) error {
	filter, err := resultFilter(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.ListResults(ctx, filter)
	if err != nil {
		return err
	}

	return printResults(cmd.Root().Writer, results)
}

func printResults(w io.Writer, results []db.ResultSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tДАТА\tПАЦИЕНТ\tАНАЛИЗ\tЛАБОРАНТ\tСТАТУС")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.ResultDate.Format(report.DateTimeLayout), r.PatientName,
			r.AnalysisTypeName, r.LabUserName, db.ResultStatusLabel(r.Status))
	}
	return tw.Flush()
}

func resultsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := resultIDArg(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	detail, err := store.GetResultDetails(ctx, id)
	if err != nil {
		return err
	}

	return printResultDetail(cmd.Root().Writer, detail)
}

func printResultDetail(w io.Writer, detail *db.ResultDetail) error {
	fmt.Fprintf(w, "%s\n", detail.AnalysisType.Name)
	fmt.Fprintf(w, "Пациент:  %s\n", detail.Patient.FullName)
	fmt.Fprintf(w, "Дата:     %s\n", detail.ResultDate.Format(report.DateTimeLayout))
	fmt.Fprintf(w, "Лаборант: %s\n", detail.LabTechnician)
	fmt.Fprintf(w, "Статус:   %s\n\n", db.ResultStatusLabel(detail.Status))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ПАРАМЕТР\tЗНАЧЕНИЕ\tЕД. ИЗМ.\tНОРМА\tОЦЕНКА")
	for _, p := range detail.Parameters {
		name := p.Name
		if p.Undeclared {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, p.Value, p.Unit, p.NormalRange(), p.Judgment())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if detail.Conclusion != nil {
		fmt.Fprintf(w, "\nЗаключение: %s\n", *detail.Conclusion)
	}

	return nil
}

func resultsExport(ctx context.Context, cmd *cli.Command) error {
	id, err := resultIDArg(cmd)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	renderer, err := report.RendererFor(format)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" && format == report.FormatXLSX {
		return errOutputRequired
	}

	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	detail, err := store.GetResultDetails(ctx, id)
	if err != nil {
		return err
	}

	doc := report.AnalysisReport(detail, report.AnalysisReportOptions{
		WithJudgment: cmd.Bool("judgment"),
		GeneratedAt:  time.Now(),
	})

	if output == "" {
		return renderer.Render(cmd.Root().Writer, doc)
	}

	if err := writeFile(output, func(w io.Writer) error { return renderer.Render(w, doc) }); err != nil {
		return err
	}

	appLogger.Info("Exported result", "result_id", id, "file", output)
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return write(f)
}

func resultsEmail(ctx context.Context, cmd *cli.Command) error {
	id, err := resultIDArg(cmd)
	if err != nil {
		return err
	}

	m, err := mailer.New(mailConfig(cmd))
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := mailer.DeliverResult(ctx, store, m, id, cmd.String("to")); err != nil {
		return err
	}

	appLogger.Info("Result emailed", "result_id", id)
	return nil
}

func resultsStatus(ctx context.Context, cmd *cli.Command) error {
	id, err := resultIDArg(cmd)
	if err != nil {
		return err
	}

	raw := strings.TrimSpace(cmd.Args().Get(1))
	if raw == "" {
		return errStatusRequired
	}

	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpdateStatus(ctx, id, db.ResultStatus(raw)); err != nil {
		return err
	}

	appLogger.Info("Result status updated", "result_id", id, "status", raw)
	return nil
}
