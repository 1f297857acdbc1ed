package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	expireAt time.Time
	access   time.Time
}

// MemoryCache implements Store in process with LRU eviction and a
// background expiry sweep.
type MemoryCache struct {
	mu      sync.Mutex
	data    map[string]*memoryItem
	maxSize int
	now     func() time.Time
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
		Clock:           time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data:    make(map[string]*memoryItem),
		maxSize: cfg.MaxSize,
		now:     cfg.Clock,
		ticker:  time.NewTicker(cfg.CleanupInterval),
		done:    make(chan struct{}),
	}
	go mc.cleanupExpired()
	return mc
}

func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, ok := mc.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	now := mc.now()
	if now.After(item.expireAt) {
		delete(mc.data, key)
		return nil, ErrCacheMiss
	}
	item.access = now
	return item.value, nil
}

// Set stores value. A non-positive ttl keeps the entry for a week.
func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.data[key]; !exists && len(mc.data) >= mc.maxSize {
		mc.evictLRU()
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := mc.now()
	mc.data[key] = &memoryItem{value: value, expireAt: now.Add(ttl), access: now}
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.data, key)
	}
	return nil
}

func (mc *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for key := range mc.data {
		if strings.HasPrefix(key, prefix) {
			delete(mc.data, key)
		}
	}
	return nil
}

// Len reports the number of live and not yet swept entries.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.data)
}

// evictLRU drops the least recently read entry. Caller holds mu.
func (mc *MemoryCache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for key, item := range mc.data {
		if oldestKey == "" || item.access.Before(oldest) {
			oldestKey, oldest = key, item.access
		}
	}
	if oldestKey != "" {
		delete(mc.data, oldestKey)
	}
}

func (mc *MemoryCache) cleanupExpired() {
	for {
		select {
		case <-mc.ticker.C:
			mc.mu.Lock()
			now := mc.now()
			for key, item := range mc.data {
				if now.After(item.expireAt) {
					delete(mc.data, key)
				}
			}
			mc.mu.Unlock()
		case <-mc.done:
			return
		}
	}
}

// Close stops the cleanup goroutine.
func (mc *MemoryCache) Close() error {
	mc.once.Do(func() {
		mc.ticker.Stop()
		close(mc.done)
	})
	return nil
}
