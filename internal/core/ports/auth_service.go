package ports

import (
	"context"

	"github.com/urbannest/auth-api/internal/core/domain"
)

// RegisterInput carries the fields a self-registration may supply.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

// AuthResult pairs a freshly minted bearer token with the authenticated
// principal.
type AuthResult struct {
	Token     string
	Principal domain.Principal
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// CurrentPrincipal re-derives the caller from verified token claims,
	// dispatching to the Admin or User store by principal type without ever
	// trying both.
	CurrentPrincipal(ctx context.Context, principalID string, principalType domain.PrincipalType) (domain.Principal, error)
}

type PasswordResetService interface {
	// RequestReset issues a one-time recovery token for the given email and
	// mails the recovery link. A failed send rolls the stored token back.
	RequestReset(ctx context.Context, email string) error

	// ConfirmReset consumes a raw token from the emailed link exactly once,
	// setting the new password.
	ConfirmReset(ctx context.Context, rawToken, newPassword string) error
}
