package utils

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/ledgerly/ledgerly-backend/config"
)

// SMTPMailer sends transactional mail over SMTP with STARTTLS. When the
// host is not configured it logs the message instead of sending, which
// keeps local development working without a mail server.
type SMTPMailer struct {
	cfg *config.Config
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendResetLink mails the password reset link built from FRONTEND_URL.
func (m *SMTPMailer) SendResetLink(to, token string) error {
	link := fmt.Sprintf("%s/new-password?token=%s", strings.TrimSuffix(m.cfg.FrontendURL, "/"), token)
	subject := "Reset your Ledgerly password"
	body := fmt.Sprintf(
		"Hello,\r\n\r\nA password reset was requested for your account. "+
			"Open the link below within 15 minutes to choose a new password:\r\n\r\n%s\r\n\r\n"+
			"If you did not request this, you can ignore this email.\r\n",
		link,
	)
	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	if m.cfg.SMTPHost == "" || m.cfg.SMTPUsername == "" || m.cfg.SMTPPassword == "" {
		log.Printf("smtp not configured, skipping mail to %s: %s", to, subject)
		return nil
	}

	from := m.cfg.SMTPFromEmail
	if from == "" {
		from = m.cfg.SMTPUsername
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
		return fmt.Errorf("start tls: %w", err)
	}

	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	fromHeader := from
	if m.cfg.SMTPFromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.cfg.SMTPFromName, from)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		fromHeader, to, subject, body)

	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}
