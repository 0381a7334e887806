package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
)

// TokenVerifier is satisfied by *service.TokenService.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (model.Principal, error)
}

// JWTAuth validates the Bearer token on each request and stores the
// principal in the context under "principal", with its id and role under
// "user_id" and "role".
func JWTAuth(tokens TokenVerifier, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": service.ErrMissingToken.Error()})
			}

			p, err := tokens.Verify(c.Request().Context(), strings.TrimSpace(raw))
			switch {
			case errors.Is(err, service.ErrExpiredToken),
				errors.Is(err, service.ErrRevokedToken),
				errors.Is(err, service.ErrInvalidToken),
				errors.Is(err, service.ErrMissingToken):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			case err != nil:
				log.Error("token verification failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			c.Set(ctxPrincipal, p)
			c.Set(ctxUserID, p.ID)
			c.Set(ctxRole, p.Role)
			return next(c)
		}
	}
}
