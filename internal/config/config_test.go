package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "services")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 60, cfg.AccessTTLMin)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.False(t, cfg.EventsEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadReportsAllMissing(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequired(t)

	t.Setenv("JWT_SECRET", "short")
	_, err := Load()
	assert.Error(t, err)

	setRequired(t)
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "abc")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("ACCESS_TOKEN_TTL_MIN", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RABBITMQ_URL", "amqp://mq:5672/")
	t.Setenv("EVENTS_ENABLED", "yes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "amqp://mq:5672/", cfg.AMQPURL)
	assert.True(t, cfg.EventsEnabled)
}

func TestRateLimitClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 50*time.Second, cfg.TTL)
}

func TestRedisHostPortOverridesAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "ignored:1")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

	client, err := NewRedisClient(RedisConfig{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
