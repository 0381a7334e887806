// Package handler implements the HTTP endpoints.  Handlers bind and
// validate input, call one service method, and translate its error with
// respondError.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/service"
	"github.com/iliyamo/local-services-api/internal/validation"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// respondError writes the JSON error body for err.  Unexpected errors are
// logged and reported as a bare 500 so storage details never leak.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrSamePassword),
		errors.Is(err, service.ErrPasswordMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrMissingToken),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken),
		errors.Is(err, service.ErrRevokedToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "booking is no longer available"})
	case errors.Is(err, service.ErrNotEligible):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "booking is outside your service type"})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
