package delivery

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPConfig carries the connection settings for [SMTPMailer]. Username may
// be empty for unauthenticated relays.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// SMTPMailer delivers codes over email. The destination passed to Deliver is
// used as the recipient address verbatim.
type SMTPMailer struct {
	config SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: cfg}
}

// Deliver sends a single plain-text message carrying the code.
func (m *SMTPMailer) Deliver(_ context.Context, destination, code, purpose string) error {
	subject := fmt.Sprintf("Your %s code", purpose)
	body := FormatMessage(code, purpose)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.config.From, destination, subject, body)
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	return smtp.SendMail(addr, auth, m.config.From, []string{destination}, []byte(msg))
}
