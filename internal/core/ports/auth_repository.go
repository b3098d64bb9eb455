package ports

import (
	"context"
	"time"

	"github.com/urbannest/auth-api/internal/core/domain"
)

// AdminRepository persists back-office principals. Admins are provisioned
// out-of-band, so there is no Create here.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	FindByID(ctx context.Context, id string) (*domain.Admin, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// UserRepository persists self-registered principals and their reset-token
// state. Every operation touches a single document.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// SetResetToken overwrites any outstanding token digest and expiry
	// (last-write-wins when two requests race for the same email).
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error

	// ClearResetToken removes the token fields, cancelling a pending reset.
	ClearResetToken(ctx context.Context, id string) error

	// ConsumeResetToken atomically matches a user whose stored digest equals
	// tokenHash and whose expiry is after now, installs newPasswordHash and
	// clears the token fields. Returns domain.ErrInvalidResetToken when no
	// user matches, covering wrong and expired tokens alike.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (*domain.User, error)
}
