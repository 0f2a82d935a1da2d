// Package mail delivers transactional email.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	appConfig "github.com/hacktopia/platform/internal/config"
)

// Sender delivers a plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP sender when a host is configured and a logging sender otherwise.
func New(cfg appConfig.MailConfig, logger *zap.SugaredLogger) Sender {
	if !cfg.Enabled() {
		logger.Warnw("SMTP_HOST not set, outgoing mail will only be logged")
		return &LogSender{logger: logger}
	}
	return &SMTPSender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	cfg    appConfig.MailConfig
	logger *zap.SugaredLogger
	send   sendFunc
}

// Send delivers the message, giving up when ctx is done.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	msg := buildMessage(s.cfg.From, to, subject, body)

	done := make(chan error, 1)
	go func() {
		done <- s.send(addr, auth, s.cfg.From, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Errorw("mail delivery failed", "to", to, "subject", subject, "error", err)
			return fmt.Errorf("send mail: %w", err)
		}
		s.logger.Infow("mail sent", "to", to, "subject", subject)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogSender writes messages to the log instead of delivering them. Used in development.
type LogSender struct {
	logger *zap.SugaredLogger
}

// NewLogSender creates a logging sender.
func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Infow("mail not sent (no SMTP configured)", "to", to, "subject", subject, "body", body)
	return nil
}
