package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	cfg Config
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	subject := "Reset your UrbanNest password"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"You requested a password reset for your UrbanNest account.\r\n"+
			"Open the link below to choose a new password. It expires in 30 minutes\r\n"+
			"and can be used once.\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you did not request this, you can ignore this email.\r\n",
		sanitizeHeader(name), resetURL,
	)

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + sanitizeHeader(to),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// sanitizeHeader strips CRLF so user-supplied values cannot inject headers.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
