// Package middleware holds the echo middleware shared by all routes:
// authentication, role gates, rate limiting, response caching and request
// logging.
package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-api/internal/model"
)

// Context keys set by JWTAuth.
const (
	ctxUserID    = "user_id"
	ctxRole      = "role"
	ctxPrincipal = "principal"
)

// Principal returns the authenticated caller stored by JWTAuth.
func Principal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(ctxPrincipal).(model.Principal)
	return p, ok
}

// userID returns the caller id as a string, or "anon" before JWTAuth ran.
func userID(c echo.Context) string {
	if id, ok := c.Get(ctxUserID).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
