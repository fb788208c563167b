package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		user:     cfg.User,
		password: cfg.Password,
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

// Configured reports whether an SMTP host is set.
func (m *Mailer) Configured() bool { return m.host != "" }

// SendInvoice mails an invoice receipt; pdfPath is attached when non-empty.
func (m *Mailer) SendInvoice(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
