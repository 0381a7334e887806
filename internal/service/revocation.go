package service

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationStore keeps revoked token ids in Redis so every replica
// sees a logout.
type RedisRevocationStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisRevocationStore returns a store writing keys under prefix.
func NewRedisRevocationStore(rdb *redis.Client, prefix string) *RedisRevocationStore {
	if prefix == "" {
		prefix = "revoked:"
	}
	return &RedisRevocationStore{rdb: rdb, prefix: prefix}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, s.prefix+tokenID, 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.rdb.Get(ctx, s.prefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryRevocationStore is the single-process fallback used when Redis is
// not configured.
type MemoryRevocationStore struct {
	c *cache.Cache
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{c: cache.New(time.Hour, 10*time.Minute)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	s.c.Set(tokenID, struct{}{}, ttl)
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := s.c.Get(tokenID)
	return ok, nil
}
