package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderAdminKey carries the static key for administrative routes.
const HeaderAdminKey = "X-Admin-Key"

// RequireAdminKey guards administrative routes with a shared key.  An empty
// key disables the routes entirely.
func RequireAdminKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin endpoints disabled"})
			}
			got := c.Request().Header.Get(HeaderAdminKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid admin key"})
			}
			return next(c)
		}
	}
}
