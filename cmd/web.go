/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/routes"
	"github.com/humaidq/medcenter/static"
	"github.com/humaidq/medcenter/templates"
)

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the web server",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Value:   "8080",
			Sources: cli.EnvVars("PORT"),
			Usage:   "the web server port",
		},
		databaseURLFlag(),
		&cli.StringFlag{
			Name:    "runtime-env",
			Value:   string(runtimeDevelopment),
			Sources: cli.EnvVars(runtimeEnvVar),
			Usage:   "development or production (production enables secure cookies)",
		},
		&cli.StringFlag{
			Name:    "csrf-secret",
			Sources: cli.EnvVars("CSRF_SECRET"),
			Usage:   "secret used to sign CSRF tokens",
		},
	}, mailFlags()...),
	Action: start,
}

type webOptions struct {
	env        runtimeEnv
	csrfSecret string
}

func start(ctx context.Context, cmd *cli.Command) (err error) {
	env, err := parseRuntimeEnv(cmd.String("runtime-env"))
	if err != nil {
		return err
	}

	csrfSecret := cmd.String("csrf-secret")
	if csrfSecret == "" && env == runtimeProduction {
		return errCSRFSecretRequired
	}

	appLogger.Info("Connecting to database")
	store, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	appLogger.Info("Database schema synced")

	var m *mailer.Mailer
	if m, err = mailer.New(mailConfig(cmd)); err != nil {
		appLogger.Warn("Email delivery disabled", "error", err)
		m = nil
	}

	f, err := newWebApp(store, m, webOptions{env: env, csrfSecret: csrfSecret})
	if err != nil {
		return err
	}

	port := cmd.String("port")

	appLogger.Info("Starting web server", "port", port, "env", env)
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", port),
		Handler:      f,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     requestStdLogger,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shut down web server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}

	return nil
}

func newWebApp(store *db.Store, m *mailer.Mailer, opts webOptions) (*flamego.Flame, error) {
	f := flamego.New()
	f.Use(flamego.Recovery())

	fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	f.Use(session.Sessioner(session.Options{
		Initer: db.PostgresSessionIniter(),
		Config: db.PostgresSessionConfig{Store: store},
		Cookie: session.CookieOptions{
			Name:     "medcenter_session",
			HTTPOnly: true,
			Secure:   opts.env == runtimeProduction,
			SameSite: http.SameSiteLaxMode,
		},
	}))
	f.Use(routes.RequestLogger)
	f.Use(csrf.Csrfer(csrf.Options{Secret: opts.csrfSecret}))
	f.Use(template.Templater(template.Options{FileSystem: fs}))
	f.Use(flamego.Static(flamego.StaticOptions{FileSystem: http.FS(static.Static)}))
	f.Use(routes.NoCacheHeaders())
	f.Use(routes.Services(store, m))
	f.Use(routes.CSRFInjector())
	f.Use(routes.FlashInjector())

	configureNotFoundHandler(f)
	registerRoutes(f)

	return f, nil
}

// configureNotFoundHandler answers unknown paths with a JSON 404.
func configureNotFoundHandler(f *flamego.Flame) {
	f.NotFound(func(c flamego.Context) {
		c.ResponseWriter().Header().Set("Content-Type", "application/json")
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
		_, _ = c.ResponseWriter().Write([]byte(`{"error":"not found"}` + "\n"))
	})
}

func registerRoutes(f *flamego.Flame) {
	staff := routes.RequireRole(db.RoleAdmin, db.RoleDoctor, db.RoleLab)
	clinical := routes.RequireRole(db.RoleAdmin, db.RoleDoctor)
	lab := routes.RequireRole(db.RoleAdmin, db.RoleLab)
	admin := routes.RequireRole(db.RoleAdmin)

	f.Get("/login", routes.LoginForm)
	f.Post("/login", csrf.Validate, routes.Login)

	f.Group("", func() {
		f.Get("/", routes.HomePage)
		f.Get("/logout", routes.Logout)
		f.Get("/results/{id}", routes.ResultPage)
	}, routes.RequireAuth)

	f.Group("/api", func() {
		f.Get("/csrf", routes.CSRFToken)
		f.Get("/me", routes.CurrentUser)

		f.Get("/analysis-types", staff, routes.ListAnalysisTypes)
		f.Get("/analysis-types/{id}", staff, routes.GetAnalysisType)
		f.Get("/reference-ranges", staff, routes.ListReferenceRanges)

		f.Get("/results", staff, routes.ListResults)
		f.Post("/results", lab, csrf.Validate, routes.AddResult)
		f.Get("/results/{id}", staff, routes.GetResultDetails)
		f.Post("/results/{id}/status", lab, csrf.Validate, routes.UpdateResultStatus)
		f.Post("/results/{id}/conclusion", clinical, csrf.Validate, routes.SetResultConclusion)
		f.Post("/results/{id}/delete", admin, csrf.Validate, routes.DeleteResult)
		f.Get("/results/{id}/export", staff, routes.ExportResult)
		f.Post("/results/{id}/email", staff, csrf.Validate, routes.EmailResult)

		f.Get("/patients", staff, routes.ListPatients)
		f.Post("/patients", clinical, csrf.Validate, routes.CreatePatient)
		f.Get("/patients/{id}", staff, routes.GetPatient)
		f.Post("/patients/{id}", clinical, csrf.Validate, routes.UpdatePatient)
		f.Post("/patients/{id}/delete", admin, csrf.Validate, routes.DeletePatient)
		f.Get("/patients/{id}/card", staff, routes.ExportPatientCard)
		f.Get("/patients/{id}/vcard", staff, routes.PatientVCard)
		f.Get("/patients/{id}/qr", staff, routes.PatientQRCode)
		f.Get("/patients/{id}/chart", staff, routes.ParameterChart)

		f.Get("/appointments", clinical, routes.ListAppointments)
		f.Post("/appointments", clinical, csrf.Validate, routes.CreateAppointment)
		f.Get("/appointments/{id}", clinical, routes.GetAppointment)
		f.Post("/appointments/{id}/status", clinical, csrf.Validate, routes.UpdateAppointmentStatus)
		f.Post("/appointments/{id}/delete", clinical, csrf.Validate, routes.DeleteAppointment)
		f.Get("/appointments/{id}/referral", clinical, routes.ExportReferral)
		f.Post("/appointments/{id}/remind", clinical, csrf.Validate, routes.RemindAppointment)

		f.Get("/statistics", admin, routes.GetStatistics)
		f.Get("/statistics/export", admin, routes.ExportStatistics)
		f.Post("/statistics/email", admin, csrf.Validate, routes.EmailStatistics)

		f.Get("/users", admin, routes.ListUsers)
		f.Post("/users", admin, csrf.Validate, routes.CreateUser)
		f.Post("/users/{id}", admin, csrf.Validate, routes.UpdateUser)
		f.Post("/users/{id}/status", admin, csrf.Validate, routes.SetUserStatus)
		f.Post("/users/{id}/delete", admin, csrf.Validate, routes.DeleteUser)
		f.Get("/doctors", clinical, routes.ListDoctors)
	}, routes.RequireAPIAuth)
}
