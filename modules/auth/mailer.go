package auth

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Mailer delivers account emails: verification codes and reset tokens.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// LoadSMTPConfig reads SMTP settings from the environment. A missing host
// means no mail server is configured.
func LoadSMTPConfig() SMTPConfig {
	cfg := SMTPConfig{
		Host:     os.Getenv("PLANORA_SMTP_HOST"),
		Port:     os.Getenv("PLANORA_SMTP_PORT"),
		Username: os.Getenv("PLANORA_SMTP_USERNAME"),
		Password: os.Getenv("PLANORA_SMTP_PASSWORD"),
		From:     os.Getenv("PLANORA_SMTP_FROM"),
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = "Planora <no-reply@planora.local>"
	}
	return cfg
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// mailer that only logs. The log fallback keeps registration usable in
// development without a mail server.
func NewMailer(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		return &logMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

// smtpMailer sends mail through a plain-auth SMTP relay.
type smtpMailer struct {
	cfg SMTPConfig
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// logMailer logs instead of sending. Codes end up in the server log.
type logMailer struct{}

func (m *logMailer) Send(to, subject, body string) error {
	log.Printf("[auth] Mail (no SMTP configured) to=%s subject=%q body=%q", to, subject, body)
	return nil
}
