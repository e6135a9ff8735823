package infra

import (
	"fmt"
	"net/smtp"

	"github.com/apenap/sis.ret-alpha/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with attachments.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPUser
	if cfg.Domain != "" {
		from = fmt.Sprintf("facturacion@%s", cfg.Domain)
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     from,
	}
}

// SendComprobante mails the CFDI to the customer, attaching the XML and the
// PDF when their paths are non-empty.
func (m *Mailer) SendComprobante(to, subject, body string, adjuntos ...string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	for _, adjunto := range adjuntos {
		if adjunto == "" {
			continue
		}
		if _, err := e.AttachFile(adjunto); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", adjunto, err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
