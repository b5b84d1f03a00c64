package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendSender sends emails via the Resend API. Used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Welcome builds the registration email.
func Welcome(fullName, loginURL string) (subject, body string) {
	subject = "Welcome to MB Events"
	body = fmt.Sprintf(
		`<p>Hi %s,</p><p>Your account is ready. <a href="%s">Sign in</a> and start exploring events.</p>`,
		fullName, loginURL,
	)
	return subject, body
}

// PasswordReset builds the reset email. The raw token travels only here,
// never in an API response.
func PasswordReset(fullName, resetURL string) (subject, body string) {
	subject = "Reset your MB Events password"
	body = fmt.Sprintf(
		`<p>Hi %s,</p><p>Click the link below to reset your password (expires in 15 minutes):</p><p><a href="%s">%s</a></p>`,
		fullName, resetURL, resetURL,
	)
	return subject, body
}
