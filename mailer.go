package main

import (
	"context"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	config SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	var msg strings.Builder
	msg.WriteString("From: " + m.config.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body + "\r\n")
	return smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg.String()))
}

// logMailer writes messages to the log. It is used when no SMTP account
// is configured.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("mail", "to", to, "subject", subject, "body", body)
	return nil
}

func newMailer(c SMTPConfig, logger *slog.Logger) Mailer {
	if c.User == "" || c.Password == "" {
		logger.Warn("SMTP is not configured, verification mails go to the log")
		return &logMailer{logger: logger}
	}
	return &SMTPMailer{config: c}
}
