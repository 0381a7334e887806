package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/middleware"
	"github.com/iliyamo/local-services-api/internal/service"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Ledger *service.Ledger
	Log    *zap.Logger
}

func NewBookingHandler(l *service.Ledger, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Ledger: l, Log: log}
}

type actionReq struct {
	Action string `json:"action" form:"action"`
}

// Create handles POST /bookings for the authenticated customer.
func (h *BookingHandler) Create(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, h.Log, service.ErrMissingToken)
	}
	var req service.BookingInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Ledger.CreateBooking(ctx, p.ID, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"bookingId": b.ID, "booking": b})
}

// ListEligible handles GET /bookings for the authenticated professional.
func (h *BookingHandler) ListEligible(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, h.Log, service.ErrMissingToken)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Ledger.ListEligibleBookings(ctx, p.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListMine handles GET /user_bookings for the authenticated customer.
func (h *BookingHandler) ListMine(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, h.Log, service.ErrMissingToken)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Ledger.ListForCustomer(ctx, p.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Act handles POST /bookings/:id/action with {"action":"accept"|"reject"}.
func (h *BookingHandler) Act(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, h.Log, service.ErrMissingToken)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req actionReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Ledger.ActOnBooking(ctx, id, p.ID, req.Action)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /bookings/:id on the admin surface.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Ledger.DeleteBooking(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking deleted"})
}
