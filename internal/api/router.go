package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/api/handler"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/api/middleware"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

// Dependencies carries everything the router needs, constructed in main.
type Dependencies struct {
	AuthService       ports.AuthService
	InvitationService ports.InvitationService
	EmailService      ports.EmailService
	Limiter           middleware.Limiter
	Mongo             *mongo.Database
	Redis             *redis.Client
	JWTSecret         string
	CORSOrigins       []string
	InviteBaseURL     string
	Logger            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
	}))
	e.Use(echoprometheus.NewMiddleware("kakhaga"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	invitationHandler := handler.NewInvitationHandler(deps.InvitationService, deps.EmailService, deps.InviteBaseURL, deps.Logger)

	authRequired := middleware.Auth(deps.JWTSecret)
	partnerOnly := middleware.RBAC(domain.RolePartner)
	limited := func(scope string) echo.MiddlewareFunc {
		return middleware.RateLimit(deps.Limiter, scope, deps.Logger)
	}

	// --- API v1 ---
	v1 := e.Group("/api/v1")

	v1.POST("/user", authHandler.Register, limited("register"))
	v1.POST("/user/generate-auth-token", authHandler.Login, limited("login"))
	v1.GET("/user/me", authHandler.Me, authRequired)

	v1.GET("/parent/invite", invitationHandler.List, authRequired, partnerOnly)
	v1.POST("/parent/send-invite", invitationHandler.SendInvite, authRequired, partnerOnly, limited("send-invite"))

	// Parent-facing endpoints are public: possession of the opaque link is
	// the credential.
	v1.GET("/parent/invite/:inviteId/validate", invitationHandler.Validate)
	v1.POST("/parent/invite/:inviteId/accept", invitationHandler.Accept)
	v1.POST("/parent/invite/:inviteId/reject", invitationHandler.Reject)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e
}
