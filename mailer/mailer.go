/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wneessen/go-mail"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// DryRun logs messages instead of delivering them.
	DryRun bool
}

// sender delivers a composed message.
type sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// Mailer composes and delivers medical center emails.
type Mailer struct {
	from   string
	sender sender
}

// Attachment is a file attached to a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// New validates the configuration and returns a Mailer.
func New(config Config) (*Mailer, error) {
	from := strings.TrimSpace(config.From)
	if from == "" {
		return nil, ErrSenderNotConfigured
	}

	if config.DryRun {
		logger.Info("Mail dry-run mode enabled, messages will not be sent")
		return &Mailer{from: from, sender: dryRunSender{}}, nil
	}

	if strings.TrimSpace(config.Host) == "" {
		return nil, ErrHostNotConfigured
	}

	port := config.Port
	if port == 0 {
		port = 587
	}

	return &Mailer{
		from: from,
		sender: &smtpSender{
			host:     config.Host,
			port:     port,
			username: config.Username,
			password: config.Password,
		},
	}, nil
}

type smtpSender struct {
	host     string
	port     int
	username string
	password string
}

func (s *smtpSender) Send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}

type dryRunSender struct{}

func (dryRunSender) Send(_ context.Context, msg *mail.Msg) error {
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}

	logger.Info("Dry run, message not sent",
		"to", strings.Join(msg.GetToString(), ","),
		"bytes", buf.Len())

	return nil
}

// send builds an HTML message and hands it to the configured sender.
func (m *Mailer) send(ctx context.Context, to, subject, body string, attachments ...Attachment) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, body)

	for _, a := range attachments {
		var opts []mail.FileOption
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data), opts...); err != nil {
			return fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	logger.Info("Sent email", "to", to, "subject", subject, "attachments", len(attachments))

	return nil
}

func renderBody(w io.Writer, name string, data interface{}) error {
	if err := bodies.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
