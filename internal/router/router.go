// Package router assembles the echo instance: global middleware first, then
// the route tables for each area of the API.
package router

import (
	"database/sql"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/config"
	"github.com/iliyamo/local-services-api/internal/handler"
	"github.com/iliyamo/local-services-api/internal/metrics"
	"github.com/iliyamo/local-services-api/internal/middleware"
	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
	"github.com/iliyamo/local-services-api/internal/validation"
)

// Deps is everything the HTTP layer needs.  Redis may be nil.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	DB        *sql.DB
	Redis     *redis.Client
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Validator *validation.Validator

	Tokens   *service.TokenService
	Auth     *handler.AuthHandler
	Pros     *handler.ProfessionalHandler
	Bookings *handler.BookingHandler
}

// New returns a configured echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if d.Validator != nil {
		e.Validator = d.Validator
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(d.Metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Config.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.HeaderAdminKey},
	}))
	e.Use(echomw.BodyLimit("8M"))
	var verifier middleware.TokenVerifier
	if d.Tokens != nil {
		verifier = d.Tokens
	}
	e.Use(middleware.RateLimit(d.RateLimit, d.Redis, verifier, d.Log))

	RegisterRoutes(e, d)
	RegisterAuth(e, d.Auth, d.Tokens, d.Log)
	RegisterDirectory(e, d.Pros, middleware.ResponseCache(d.Cache, d.Redis, d.Log))
	RegisterBookings(e, d.Bookings, d.Tokens, d.Log, d.Config.AdminAPIKey)
	return e
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
}

// RegisterAuth registers sign-up, login and session endpoints.  Password
// changes are split per role so a token can only change its own table.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *service.TokenService, log *zap.Logger) {
	e.POST("/register", a.RegisterCustomer)
	e.POST("/register_professionals", a.RegisterProfessional)
	e.POST("/login", a.LoginCustomer)
	e.POST("/login_professional", a.LoginProfessional)

	auth := middleware.JWTAuth(tokens, log)
	e.POST("/change_password", a.ChangePassword, auth, middleware.RequireRole(model.RoleCustomer))
	e.POST("/change_password_professional", a.ChangePassword, auth, middleware.RequireRole(model.RoleProfessional))
	e.POST("/logout", a.Logout, auth)
	e.GET("/me", a.Me, auth)
}

// RegisterDirectory registers the public professional directory.  Reads go
// through the response cache.
func RegisterDirectory(e *echo.Echo, p *handler.ProfessionalHandler, cache echo.MiddlewareFunc) {
	e.GET("/professionals", p.List, cache)
	e.GET("/professionals/:id", p.Get, cache)
	e.POST("/professionals", p.Create)
}
