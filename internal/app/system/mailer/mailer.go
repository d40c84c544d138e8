// Package mailer sends transactional email over SMTP. Decision notices for
// applications (approved, rejected, reopened) are built from the templates
// in this package and sent best-effort: a mail failure never fails the
// review action that triggered it.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Config holds SMTP settings. With an empty Host the mailer is disabled and
// Send becomes a logged no-op, which is the normal mode in tests and local
// dev without Mailpit running.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string // e.g. noreply@trovehub.io
	FromName string // e.g. TroveHub
}

// Email is a single outbound message. TextBody is required; HTMLBody is
// optional and sent as the preferred alternative when present.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends email through a single SMTP endpoint.
type Mailer struct {
	cfg Config
	log *zap.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a Mailer. logger must not be nil.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger, send: smtp.SendMail}
}

// Enabled reports whether the mailer has an SMTP host configured.
func (m *Mailer) Enabled() bool { return m.cfg.Host != "" }

// Send delivers the email. When the mailer is disabled the message is
// logged and dropped.
func (m *Mailer) Send(e Email) error {
	if !m.Enabled() {
		m.log.Info("mailer disabled, dropping email",
			zap.String("to", e.To),
			zap.String("subject", e.Subject))
		return nil
	}
	if e.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	msg := m.buildMessage(e)
	if err := m.send(addr, auth, m.cfg.From, []string{e.To}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", e.To, err)
	}

	m.log.Info("email sent",
		zap.String("to", e.To),
		zap.String("subject", e.Subject))
	return nil
}

// buildMessage assembles an RFC 5322 message. With both bodies present it
// emits multipart/alternative with text first, HTML last.
func (m *Mailer) buildMessage(e Email) []byte {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if e.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(e.TextBody)
		return []byte(b.String())
	}

	const boundary = "trovehub-alt-boundary"
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(e.TextBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(e.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
