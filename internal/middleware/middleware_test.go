package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/config"
	"github.com/iliyamo/local-services-api/internal/model"
	"github.com/iliyamo/local-services-api/internal/service"
)

func newTokens() *service.TokenService {
	return service.NewTokenService("middleware-test-secret", time.Hour, service.NewMemoryRevocationStore())
}

func serve(e *echo.Echo, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(tok string) http.Header {
	return http.Header{echo.HeaderAuthorization: {"Bearer " + tok}}
}

func TestJWTAuthAndRole(t *testing.T) {
	tokens := newTokens()
	e := echo.New()
	g := e.Group("", JWTAuth(tokens, zap.NewNop()))
	g.GET("/me", func(c echo.Context) error {
		p, ok := Principal(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, p.ID)
	})
	g.GET("/pro", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(model.RoleProfessional))

	cust, err := tokens.Issue(11, model.RoleCustomer)
	require.NoError(t, err)

	rec := serve(e, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing token"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/me", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/me", bearer(cust.Token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "11\n", rec.Body.String())

	rec = serve(e, http.MethodGet, "/pro", bearer(cust.Token))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	pro, err := tokens.Issue(12, model.RoleProfessional)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/pro", bearer(pro.Token))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminKey(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.DELETE("/on", ok, RequireAdminKey("s3cret"))
	e.DELETE("/off", ok, RequireAdminKey(""))

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodDelete, "/on", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodDelete, "/on", http.Header{HeaderAdminKey: {"nope"}}).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodDelete, "/on", http.Header{HeaderAdminKey: {"s3cret"}}).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodDelete, "/off", http.Header{HeaderAdminKey: {""}}).Code)
}

func TestRedisMiddlewaresPassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(config.RateLimitConfig{Enabled: true}, nil, nil, zap.NewNop()))
	e.Use(ResponseCache(config.CacheConfig{Enabled: true}, nil, zap.NewNop()))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "x") })

	rec := serve(e, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/bookings")
	c.Set(ctxUserID, uint64(5))

	cases := map[string]string{
		"ip":            "rl:ip:10.0.0.1",
		"user":          "rl:user:5",
		"ip_user":       "rl:ip:10.0.0.1:user:5",
		"ip_user_route": "rl:ip:10.0.0.1:user:5:route:GET /bookings",
	}
	for strategy, want := range cases {
		assert.Equal(t, want, rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c, nil), strategy)
	}
}

func TestRateKeyReadsBearerSubject(t *testing.T) {
	tokens := newTokens()
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	e := echo.New()

	keyFor := func(header string) string {
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		return rateKey(cfg, e.NewContext(req, httptest.NewRecorder()), tokens)
	}

	a, err := tokens.Issue(5, model.RoleCustomer)
	require.NoError(t, err)
	b, err := tokens.Issue(6, model.RoleProfessional)
	require.NoError(t, err)

	assert.Equal(t, "rl:user:5", keyFor("Bearer "+a.Token))
	assert.Equal(t, "rl:user:6", keyFor("Bearer "+b.Token))
	assert.Equal(t, "rl:user:anon", keyFor(""))
	assert.Equal(t, "rl:user:anon", keyFor("Bearer forged.token.value"))
}

func TestCaptureWriterDropsOversizedBodies(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.overflow)
	assert.Zero(t, cw.buf.Len())
	assert.Equal(t, "abcdef", rec.Body.String())
}
