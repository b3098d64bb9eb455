package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/urbannest/auth-api/internal/api/metrics"
	"github.com/urbannest/auth-api/internal/core/domain"
	"github.com/urbannest/auth-api/internal/core/ports"
)

// AuthHandler exposes the authentication and credential-recovery endpoints.
type AuthHandler struct {
	authService  ports.AuthService
	resetService ports.PasswordResetService
}

func NewAuthHandler(authService ports.AuthService, resetService ports.PasswordResetService) *AuthHandler {
	return &AuthHandler{authService: authService, resetService: resetService}
}

// Register creates a new User principal and returns a bearer token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountExists):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "account already exists"})
		case errors.Is(err, domain.ErrValidation):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid input"})
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(res.Principal.Role()).Inc()
	return c.JSON(http.StatusCreated, authResponse{Token: res.Token, User: toPrincipalResponse(res.Principal)})
}

// Login authenticates against the Admin collection first, then the User
// collection, and returns a bearer token. Admin principals come back with
// role normalized to "admin".
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "email and password are required"})
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid", "unknown").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		case errors.Is(err, domain.ErrAccountDeactivated):
			metrics.LoginsTotal.WithLabelValues("deactivated", "unknown").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "account deactivated"})
		case errors.Is(err, domain.ErrTooManyAttempts):
			metrics.LoginsTotal.WithLabelValues("throttled", "unknown").Inc()
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "too many attempts, try again later"})
		case errors.Is(err, domain.ErrValidation):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		}
		metrics.LoginsTotal.WithLabelValues("error", "unknown").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success", string(res.Principal.Type)).Inc()
	return c.JSON(http.StatusOK, authResponse{Token: res.Token, User: toPrincipalResponse(res.Principal)})
}

// Me returns the principal behind the presented bearer token.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  principalResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, ptype, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	principal, err := h.authService.CurrentPrincipal(c.Request().Context(), id, ptype)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "account not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, toPrincipalResponse(principal))
}

// ForgotPassword issues a one-time recovery token and emails the reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "email is required"})
	}

	if err := h.resetService.RequestReset(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			metrics.ResetRequestsTotal.WithLabelValues("not_found").Inc()
			return c.JSON(http.StatusNotFound, errorResponse{Error: "no account with that email"})
		case errors.Is(err, domain.ErrEmailDelivery):
			metrics.ResetRequestsTotal.WithLabelValues("delivery_failed").Inc()
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not send reset email"})
		case errors.Is(err, domain.ErrValidation):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "email is required"})
		}
		metrics.ResetRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.ResetRequestsTotal.WithLabelValues("sent").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "password reset email sent"})
}

// ResetPassword consumes the raw token from the emailed link and sets the
// new password. The token is single-use; wrong and expired tokens yield the
// same error.
//
// @Summary      Complete a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                true  "Raw reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /auth/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	if err := h.resetService.ConfirmReset(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			metrics.ResetConsumptionsTotal.WithLabelValues("rejected").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "password must be at least 6 characters"})
		case errors.Is(err, domain.ErrInvalidResetToken):
			metrics.ResetConsumptionsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid or expired token"})
		}
		metrics.ResetConsumptionsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.ResetConsumptionsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}
