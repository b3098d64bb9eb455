package handler

import (
	"time"

	"github.com/urbannest/auth-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=user agent"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// principalResponse is the public projection of a principal. The password
// hash has no field here on purpose, and role is the derived effective role
// ("admin" for Admin principals).
type principalResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  principalResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toPrincipalResponse(p domain.Principal) principalResponse {
	resp := principalResponse{
		ID:       p.ID(),
		Name:     p.Name(),
		Email:    p.Email(),
		Role:     p.Role(),
		Phone:    p.Phone(),
		Avatar:   p.Avatar(),
		IsActive: p.Active(),
	}
	if p.Type == domain.PrincipalAdmin && !p.Admin.LastLoginAt.IsZero() {
		t := p.Admin.LastLoginAt
		resp.LastLoginAt = &t
	}
	return resp
}
