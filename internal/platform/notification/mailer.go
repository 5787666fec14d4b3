// Package notification delivers outbound email. Delivery is a best-effort
// side channel: callers log failures and continue.
package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	Host string
	Port int
	From string
}

func (s *SMTPSender) SendEmail(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body))
	return smtp.SendMail(addr, nil, s.From, []string{to}, msg)
}

// LogSender is the development fallback when no SMTP relay is configured:
// it logs the message instead of delivering it.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email not configured, logging instead")
	return nil
}

// MockEmailSender records sent messages for tests.
type MockEmailSender struct {
	mu    sync.Mutex
	calls []EmailCall
	Fail  error
}

type EmailCall struct {
	To      string
	Subject string
	Body    string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Mailer renders and sends the application's transactional messages.
type Mailer struct {
	sender      EmailSender
	frontendURL string
	logger      zerolog.Logger
}

func NewMailer(sender EmailSender, frontendURL string, logger zerolog.Logger) *Mailer {
	return &Mailer{sender: sender, frontendURL: frontendURL, logger: logger}
}

// SendPasswordReset mails a reset link for the given tenant domain and
// token. Failure is logged and returned, but callers treat it as
// non-fatal: the reset token is already persisted.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, tenantDomain, token string) error {
	link := fmt.Sprintf("%s/reset-password?tenant=%s&token=%s",
		m.frontendURL, url.QueryEscape(tenantDomain), url.QueryEscape(token))

	subject := "Password Reset - Hospital Management System"
	body := fmt.Sprintf("You requested a password reset. Use this link: %s", link)

	if err := m.sender.SendEmail(ctx, to, subject, body); err != nil {
		m.logger.Error().Err(err).Str("to", to).Msg("failed to send password reset email")
		return err
	}
	return nil
}
