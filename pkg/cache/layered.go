package cache

import (
	"context"
	"time"
)

// LayeredCache reads through an in-process L1 to a shared L2 (Redis) and
// writes through both.
type LayeredCache struct {
	l1    *MemoryCache
	l2    Store
	l1TTL time.Duration
}

func NewLayeredCache(l2 Store, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{MemoryMaxSize: 1000, MemoryTTL: time.Minute}
	for _, opt := range opts {
		opt(cfg)
	}
	return &LayeredCache{
		l1:    NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		l2:    l2,
		l1TTL: cfg.MemoryTTL,
	}
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := lc.l1.Get(ctx, key); err == nil {
		return b, nil
	}
	b, err := lc.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = lc.l1.Set(ctx, key, b, lc.l1TTL)
	return b, nil
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := lc.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return lc.l1.Set(ctx, key, value, l1TTL)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = lc.l1.DeleteByPattern(ctx, pattern)
	return lc.l2.DeleteByPattern(ctx, pattern)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}
