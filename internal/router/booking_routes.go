package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/handler"
	"github.com/iliyamo/local-services-api/internal/middleware"
	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
)

// RegisterBookings registers the booking lifecycle.  Customers create and
// list their own bookings, professionals list and act on the bookings of
// their service type, and the admin key guards hard deletes.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, tokens *service.TokenService, log *zap.Logger, adminKey string) {
	auth := middleware.JWTAuth(tokens, log)
	customer := middleware.RequireRole(model.RoleCustomer)
	professional := middleware.RequireRole(model.RoleProfessional)

	e.POST("/bookings", h.Create, auth, customer)
	e.GET("/user_bookings", h.ListMine, auth, customer)

	e.GET("/bookings", h.ListEligible, auth, professional)
	e.POST("/bookings/:id/action", h.Act, auth, professional)

	e.DELETE("/bookings/:id", h.Delete, middleware.RequireAdminKey(adminKey))
}
