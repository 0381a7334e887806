package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	m := New("test")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/items/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")))
}

func TestHandlerExposesBookingCounters(t *testing.T) {
	m := New("test")
	m.BookingActions.WithLabelValues("accept", "ok").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `test_booking_actions_total{action="accept",outcome="ok"} 1`))
}

func TestNewIsRepeatable(t *testing.T) {
	assert.NotPanics(t, func() {
		New("a")
		New("a")
	})
}
