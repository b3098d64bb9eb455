package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/urbannest/auth-api/internal/core/domain"
	"github.com/urbannest/auth-api/internal/core/ports"
)

// LoginLimiter abstracts the brute-force protection store (Redis). A nil
// limiter disables throttling entirely.
type LoginLimiter interface {
	TooManyFailures(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	ClearFailures(ctx context.Context, email string) error
}

// AuthService implements registration, dual-collection login, token
// issuance, and principal resolution.
type AuthService struct {
	admins    ports.AdminRepository
	users     ports.UserRepository
	limiter   LoginLimiter
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	admins ports.AdminRepository,
	users ports.UserRepository,
	limiter LoginLimiter,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		admins:    admins,
		users:     users,
		limiter:   limiter,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Register creates a User principal. Admin principals are provisioned
// out-of-band and the "admin" role is rejected here.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrValidation
	}
	if len(input.Password) < domain.MinPasswordLength {
		return nil, domain.ErrValidation
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAgent {
		return nil, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        input.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	principal := domain.UserPrincipal(created)
	token, err := s.issueToken(principal)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return &ports.AuthResult{Token: token, Principal: principal}, nil
}

// Login authenticates an email/password pair. The Admin collection is
// checked before the User collection; an email present in both always
// resolves to the Admin record. Unknown email and wrong password collapse
// into the same error so responses never reveal which half was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrValidation
	}

	if s.limiter != nil {
		locked, err := s.limiter.TooManyFailures(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login limiter check failed, proceeding")
		} else if locked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.loginAdmin(ctx, admin, password)
	case errors.Is(err, domain.ErrAccountNotFound):
		// fall through to the User collection
	default:
		return nil, fmt.Errorf("admin lookup: %w", err)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	s.clearFailures(ctx, email)

	principal := domain.UserPrincipal(user)
	token, err := s.issueToken(principal)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, Principal: principal}, nil
}

func (s *AuthService) loginAdmin(ctx context.Context, admin *domain.Admin, password string) (*ports.AuthResult, error) {
	if !admin.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, admin.Email)
		return nil, domain.ErrInvalidCredentials
	}

	// Best-effort: a failed timestamp update must not abort the login.
	if err := s.admins.UpdateLastLogin(ctx, admin.ID, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("admin_id", admin.ID).Msg("failed to update last login")
	}

	s.clearFailures(ctx, admin.Email)

	principal := domain.AdminPrincipal(admin)
	token, err := s.issueToken(principal)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, Principal: principal}, nil
}

// CurrentPrincipal resolves verified token claims back to a principal,
// dispatching on the type claim so only one store is queried.
func (s *AuthService) CurrentPrincipal(ctx context.Context, principalID string, principalType domain.PrincipalType) (domain.Principal, error) {
	switch principalType {
	case domain.PrincipalAdmin:
		admin, err := s.admins.FindByID(ctx, principalID)
		if err != nil {
			return domain.Principal{}, err
		}
		return domain.AdminPrincipal(admin), nil
	case domain.PrincipalUser:
		user, err := s.users.FindByID(ctx, principalID)
		if err != nil {
			return domain.Principal{}, err
		}
		return domain.UserPrincipal(user), nil
	default:
		return domain.Principal{}, fmt.Errorf("unknown principal type %q", principalType)
	}
}

// issueToken mints a stateless HS256 bearer token. The typ claim lets the
// resolver dispatch to the right store without re-querying both.
func (s *AuthService) issueToken(p domain.Principal) (string, error) {
	claims := jwt.MapClaims{
		"sub":  p.ID(),
		"typ":  string(p.Type),
		"role": p.Role(),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *AuthService) clearFailures(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.ClearFailures(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear login failures")
	}
}
