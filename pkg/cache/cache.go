package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Store is a byte-oriented key/value cache with per-entry TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern removes keys matching a trailing-* prefix pattern.
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}
