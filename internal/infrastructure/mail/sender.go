// Package mail delivers password-reset notifications. Delivery is awaited
// inside the request handler: the reset flow rolls its token back when a
// send fails, and that guarantee only holds while sending stays synchronous.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender is the transport behind the reset flow's mailer port.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// Config carries SMTP settings. An empty Host selects the log sender, which
// keeps local development working without a mail relay.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewSender returns an SMTP sender when a host is configured, otherwise a
// sender that only logs the link.
func NewSender(cfg Config, log zerolog.Logger) Sender {
	if cfg.Host == "" {
		log.Warn().Msg("SMTP not configured, reset emails will only be logged")
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg)
}

// LogSender writes the reset link to the log instead of sending it.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	s.log.Info().
		Str("to", to).
		Str("name", name).
		Str("reset_url", resetURL).
		Msg("password reset email (log only)")
	return nil
}
