package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/urbannest/auth-api/internal/core/domain"
	"github.com/urbannest/auth-api/internal/core/ports"
)

// Mailer abstracts the email transport. Sending is awaited inside the
// request so a delivery failure can roll the stored token back.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// PasswordResetService drives the per-user recovery lifecycle:
// NoResetPending → ResetPending → (Consumed | Expired | Cancelled).
type PasswordResetService struct {
	users       ports.UserRepository
	mailer      Mailer
	frontendURL string
	tokenTTL    time.Duration
	log         zerolog.Logger
}

func NewPasswordResetService(
	users ports.UserRepository,
	mailer Mailer,
	frontendURL string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *PasswordResetService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &PasswordResetService{
		users:       users,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		tokenTTL:    tokenTTL,
		log:         log,
	}
}

// RequestReset issues a recovery token for email and mails the link. Only
// the token digest is persisted; a second request for the same email simply
// overwrites the first (last-write-wins). When the send fails the stored
// digest is cleared again so no valid token survives that the user can
// never learn.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrValidation
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, digest, err := NewResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().UTC().Add(s.tokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, digest, expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	// Raw token travels as a path segment only; no query-string variant.
	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, raw)

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset email send failed, rolling token back")
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID).Msg("reset token rollback failed")
		}
		return domain.ErrEmailDelivery
	}

	s.log.Info().Str("user_id", user.ID).Time("expires", expires).Msg("password reset requested")
	return nil
}

// ConfirmReset consumes a raw token from the emailed link and sets the new
// password. The store lookup matches digest and expiry together, so wrong
// and expired tokens are indistinguishable; the matched document has its
// token fields cleared in the same update, making the token single-use.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, rawToken, newPassword string) error {
	if newPassword == "" || len(newPassword) < domain.MinPasswordLength {
		return domain.ErrValidation
	}
	if rawToken == "" {
		return domain.ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.ConsumeResetToken(ctx, HashResetToken(rawToken), time.Now().UTC(), string(hash))
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}
