package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/urbannest/auth-api/internal/api/handler"
	"github.com/urbannest/auth-api/internal/api/middleware"
	"github.com/urbannest/auth-api/internal/core/service"
	"github.com/urbannest/auth-api/internal/infrastructure/config"
	mongostore "github.com/urbannest/auth-api/internal/infrastructure/db/mongo"
	redisstore "github.com/urbannest/auth-api/internal/infrastructure/db/redis"
	"github.com/urbannest/auth-api/internal/infrastructure/mail"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("urbannest"))

	// --- Dependencies ---
	adminRepo := mongostore.NewAdminRepository(db)
	userRepo := mongostore.NewUserRepository(db)
	limiter := redisstore.NewAttemptLimiter(rdb, cfg.LoginMaxFailures, cfg.LoginFailureWindow)
	mailer := mail.NewSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)

	authService := service.NewAuthService(adminRepo, userRepo, limiter, cfg.JWTSecret, cfg.TokenTTL, log)
	resetService := service.NewPasswordResetService(userRepo, mailer, cfg.FrontendURL, cfg.ResetTokenTTL, log)
	authHandler := handler.NewAuthHandler(authService, resetService)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authMiddleware)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password/:token", authHandler.ResetPassword)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational surface ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
