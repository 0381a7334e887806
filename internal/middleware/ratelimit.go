package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/local-services-api/internal/config"
)

// tokenBucket refills refill_tokens every interval_ms up to capacity and
// takes one token per call.  Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
  tokens = math.min(capacity, tokens + intervals * refill_tokens)
  last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

// RateLimit applies a per-client token bucket stored in Redis.  Requests
// pass through when the script fails.  It runs ahead of JWTAuth, so the
// user-keyed strategies resolve the caller from the bearer token through
// tokens; a missing or unverifiable token counts as "anon".
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, tokens TokenVerifier, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c, tokens)
			res, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] != 1 {
				secs := int(math.Ceil(float64(res[2]) / 1000))
				h.Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func rateKey(cfg config.RateLimitConfig, c echo.Context, tokens TokenVerifier) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "user":
		parts = append(parts, "user", callerID(c, tokens))
	case "ip_user":
		parts = append(parts, "ip", ip, "user", callerID(c, tokens))
	case "ip_user_route":
		parts = append(parts, "ip", ip, "user", callerID(c, tokens), "route", c.Request().Method+" "+c.Path())
	default:
		parts = append(parts, "ip", ip)
	}
	return strings.Join(parts, ":")
}

// callerID prefers the id JWTAuth stored and otherwise verifies the bearer
// token.
func callerID(c echo.Context, tokens TokenVerifier) string {
	if id := userID(c); id != "anon" || tokens == nil {
		return id
	}
	raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "anon"
	}
	p, err := tokens.Verify(c.Request().Context(), strings.TrimSpace(raw))
	if err != nil || p.ID == 0 {
		return "anon"
	}
	return strconv.FormatUint(p.ID, 10)
}
