package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/urbannest/auth-api/internal/core/domain"
	"github.com/urbannest/auth-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	currentFn  func(ctx context.Context, id string, ptype domain.PrincipalType) (domain.Principal, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) CurrentPrincipal(ctx context.Context, id string, ptype domain.PrincipalType) (domain.Principal, error) {
	return s.currentFn(ctx, id, ptype)
}

type stubResetService struct {
	requestFn func(ctx context.Context, email string) error
	confirmFn func(ctx context.Context, rawToken, newPassword string) error
}

func (s *stubResetService) RequestReset(ctx context.Context, email string) error {
	return s.requestFn(ctx, email)
}

func (s *stubResetService) ConfirmReset(ctx context.Context, rawToken, newPassword string) error {
	return s.confirmFn(ctx, rawToken, newPassword)
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func testUserPrincipal() domain.Principal {
	return domain.UserPrincipal(&domain.User{
		ID: "u1", Name: "Alice", Email: "alice@example.com", Role: domain.RoleAgent, IsActive: true,
	})
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
			if input.Name != "Alice" || input.Email != "alice@example.com" || input.Role != "agent" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.AuthResult{Token: "token123", Principal: testUserPrincipal()}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"secret1","role":"agent"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" || user["role"] != "agent" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must never be serialized")
	}
}

func TestAuthHandler_Register_AdminRoleRejected(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Eve","email":"eve@example.com","password":"secret1","role":"admin"}`)

	_ = handler.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_Exists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrAccountExists
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Bob","email":"bob@example.com","password":"secret1"}`)

	_ = handler.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"name":"Bob","email":"bob@example.com","password":"five5"}`)

	_ = handler.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthHandler_Login_AdminRoleNormalized(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return &ports.AuthResult{
				Token: "token123",
				Principal: domain.AdminPrincipal(&domain.Admin{
					ID: "a1", Name: "Root", Email: email, IsActive: true,
				}),
			}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"root@example.com","password":"secret1"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["role"] != "admin" {
		t.Fatalf("expected role normalized to admin: %+v", user)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"a@example.com"}`)

	_ = handler.Login(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"a@example.com","password":"bad"}`)

	_ = handler.Login(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Deactivated(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrAccountDeactivated
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"a@example.com","password":"right"}`)

	_ = handler.Login(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrTooManyAttempts
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"a@example.com","password":"x"}`)

	_ = handler.Login(c)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Me
// ---------------------------------------------------------------------------

func TestAuthHandler_Me_Success(t *testing.T) {
	stub := &stubAuthService{
		currentFn: func(ctx context.Context, id string, ptype domain.PrincipalType) (domain.Principal, error) {
			if id != "u1" || ptype != domain.PrincipalUser {
				t.Fatalf("unexpected claims: %s %s", id, ptype)
			}
			return testUserPrincipal(), nil
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodGet, "/auth/me", "")
	c.Set("principal_id", "u1")
	c.Set("principal_type", "user")

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Me_MissingClaims(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubResetService{})

	c, _ := newTestContext(t, http.MethodGet, "/auth/me", "")

	err := handler.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Me_Vanished(t *testing.T) {
	stub := &stubAuthService{
		currentFn: func(ctx context.Context, id string, ptype domain.PrincipalType) (domain.Principal, error) {
			return domain.Principal{}, domain.ErrAccountNotFound
		},
	}
	handler := NewAuthHandler(stub, &stubResetService{})

	c, rec := newTestContext(t, http.MethodGet, "/auth/me", "")
	c.Set("principal_id", "ghost")
	c.Set("principal_type", "user")

	_ = handler.Me(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Forgot / reset password
// ---------------------------------------------------------------------------

func TestAuthHandler_ForgotPassword_Success(t *testing.T) {
	reset := &stubResetService{
		requestFn: func(ctx context.Context, email string) error {
			if email != "bob@example.com" {
				t.Fatalf("unexpected email: %s", email)
			}
			return nil
		},
	}
	handler := NewAuthHandler(&stubAuthService{}, reset)

	c, rec := newTestContext(t, http.MethodPost, "/auth/forgot-password", `{"email":"bob@example.com"}`)

	if err := handler.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword_MissingEmail(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubResetService{
		requestFn: func(ctx context.Context, email string) error {
			t.Fatalf("should not be called")
			return nil
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/auth/forgot-password", `{}`)

	_ = handler.ForgotPassword(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword_UnknownAccount(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubResetService{
		requestFn: func(ctx context.Context, email string) error {
			return domain.ErrAccountNotFound
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/auth/forgot-password", `{"email":"ghost@example.com"}`)

	_ = handler.ForgotPassword(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword_DeliveryFailure(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubResetService{
		requestFn: func(ctx context.Context, email string) error {
			return domain.ErrEmailDelivery
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/auth/forgot-password", `{"email":"bob@example.com"}`)

	_ = handler.ForgotPassword(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword_Success(t *testing.T) {
	reset := &stubResetService{
		confirmFn: func(ctx context.Context, rawToken, newPassword string) error {
			if rawToken != "rawtok" || newPassword != "secret2" {
				t.Fatalf("unexpected args: %s %s", rawToken, newPassword)
			}
			return nil
		},
	}
	handler := NewAuthHandler(&stubAuthService{}, reset)

	c, rec := newTestContext(t, http.MethodPost, "/auth/reset-password/rawtok", `{"password":"secret2"}`)
	c.SetParamNames("token")
	c.SetParamValues("rawtok")

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword_ShortPassword(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubResetService{
		confirmFn: func(ctx context.Context, rawToken, newPassword string) error {
			return domain.ErrValidation
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/auth/reset-password/rawtok", `{"password":"five5"}`)
	c.SetParamNames("token")
	c.SetParamValues("rawtok")

	_ = handler.ResetPassword(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword_InvalidToken(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, &stubResetService{
		confirmFn: func(ctx context.Context, rawToken, newPassword string) error {
			return domain.ErrInvalidResetToken
		},
	})

	c, rec := newTestContext(t, http.MethodPost, "/auth/reset-password/bogus", `{"password":"secret2"}`)
	c.SetParamNames("token")
	c.SetParamValues("bogus")

	_ = handler.ResetPassword(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
