package domain

import (
	"errors"
	"time"
)

// PrincipalType names the credential collection a principal belongs to. It
// travels inside the bearer token so the resolver knows which store to query.
type PrincipalType string

const (
	PrincipalAdmin PrincipalType = "admin"
	PrincipalUser  PrincipalType = "user"
)

// Roles a User document may carry. RoleAdmin is never stored: it is the
// derived effective role of Admin principals, materialized at serialization.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleAgent = "agent"
)

// MinPasswordLength is the minimum accepted password length, enforced on
// registration and on password reset alike.
const MinPasswordLength = 6

var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Admin is a back-office principal. Admins have no stored role field; their
// effective role is always RoleAdmin.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Avatar       string
	IsActive     bool
	LastLoginAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is a self-registered principal. The reset-token fields hold the
// digest and expiry of an outstanding recovery token, empty/zero otherwise.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Role              string
	Phone             string
	Avatar            string
	IsActive          bool
	ResetTokenHash    string
	ResetTokenExpires time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Principal is a tagged union over the two credential collections. Exactly
// one of Admin/User is non-nil, selected by Type.
type Principal struct {
	Type  PrincipalType
	Admin *Admin
	User  *User
}

func AdminPrincipal(a *Admin) Principal {
	return Principal{Type: PrincipalAdmin, Admin: a}
}

func UserPrincipal(u *User) Principal {
	return Principal{Type: PrincipalUser, User: u}
}

func (p Principal) ID() string {
	if p.Type == PrincipalAdmin {
		return p.Admin.ID
	}
	return p.User.ID
}

func (p Principal) Name() string {
	if p.Type == PrincipalAdmin {
		return p.Admin.Name
	}
	return p.User.Name
}

func (p Principal) Email() string {
	if p.Type == PrincipalAdmin {
		return p.Admin.Email
	}
	return p.User.Email
}

// Role returns the effective role: always RoleAdmin for Admin principals,
// the stored role for Users.
func (p Principal) Role() string {
	if p.Type == PrincipalAdmin {
		return RoleAdmin
	}
	return p.User.Role
}

func (p Principal) Phone() string {
	if p.Type == PrincipalAdmin {
		return p.Admin.Phone
	}
	return p.User.Phone
}

func (p Principal) Avatar() string {
	if p.Type == PrincipalAdmin {
		return p.Admin.Avatar
	}
	return p.User.Avatar
}

func (p Principal) Active() bool {
	if p.Type == PrincipalAdmin {
		return p.Admin.IsActive
	}
	return p.User.IsActive
}
