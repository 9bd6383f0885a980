package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	mail "gopkg.in/mail.v2"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const subjectPrefix = "NSA ProTrack Report: "

// Message is an email with in-memory attachments
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []*File
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// NewReportMessage composes the delivery email for a scheduled report.
func NewReportMessage(cfg *domain.ReportConfig, files []*File) *Message {
	description := cfg.Description
	if description == "" {
		description = "N/A"
	}

	var recipients []string
	if cfg.Schedule != nil {
		recipients = cfg.Schedule.Recipients
	}

	return &Message{
		To:          recipients,
		Subject:     subjectPrefix + cfg.Name,
		Body:        fmt.Sprintf("Please find attached the scheduled report \"%s\".\n\nDescription: %s", cfg.Name, description),
		Attachments: files,
	}
}

// SMTPConfig holds the outgoing mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Secure selects implicit TLS (usually port 465); otherwise STARTTLS is used when offered.
	Secure  bool
	Timeout time.Duration
}

// SMTPMailer delivers messages through an SMTP relay
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg}
}

// Send opens a connection, delivers msg, and closes the connection. The SMTP
// exchange runs in its own goroutine so that Send returns as soon as ctx is
// done; the abandoned exchange is still bounded by Timeout.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message %q has no recipients", msg.Subject)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.SSL = m.cfg.Secure
	if m.cfg.Timeout > 0 {
		d.Timeout = m.cfg.Timeout
	}

	em := m.build(msg)
	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(em)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send %q to %s: %w", msg.Subject, strings.Join(msg.To, ", "), err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send %q to %s: %w", msg.Subject, strings.Join(msg.To, ", "), ctx.Err())
	}
}

func (m *SMTPMailer) build(msg *Message) *mail.Message {
	em := mail.NewMessage()
	em.SetHeader("From", m.cfg.From)
	em.SetHeader("To", msg.To...)
	em.SetHeader("Subject", msg.Subject)
	em.SetBody("text/plain", msg.Body)

	for _, f := range msg.Attachments {
		data := f.Data
		em.Attach(f.Name,
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			mail.SetHeader(map[string][]string{"Content-Type": {f.ContentType}}),
		)
	}

	return em
}
