package config

// Redis backs the rate limiter, the directory response cache and the token
// revocation set.  All three degrade gracefully when no client is available.

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes how to reach Redis.
//
//	REDIS_ENABLED  – "false" skips Redis entirely (default true)
//	REDIS_ADDR     – host:port (REDIS_HOST + REDIS_PORT take precedence)
//	REDIS_PASSWORD – optional password
//	REDIS_DB       – database number (default 0)
//	REDIS_TLS      – enable TLS
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// LoadRedisConfig reads RedisConfig from the environment.
func LoadRedisConfig() RedisConfig {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	return RedisConfig{
		Enabled:  envBool("REDIS_ENABLED", true),
		Addr:     addr,
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
}

// NewRedisClient connects to Redis and pings it with a short timeout.  A
// disabled config yields (nil, nil); callers treat a nil client as "no Redis".
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
