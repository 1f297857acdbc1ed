package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultMemoTTL = 10 * time.Minute

// Observer is told about memo lookups, keyed by function name.
type Observer interface {
	CacheHit(fn string)
	CacheMiss(fn string)
}

// Memo memoizes function results in a Store. Entries carry their insertion
// time and are treated as absent once older than the TTL or after Clear.
// Concurrent misses on one key share a single computation.
type Memo struct {
	store     Store
	ttl       time.Duration
	namespace string
	now       func() time.Time
	observer  Observer
	group     singleflight.Group
}

type MemoOption func(*Memo)

func WithMemoTTL(ttl time.Duration) MemoOption {
	return func(m *Memo) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithMemoNamespace(ns string) MemoOption {
	return func(m *Memo) { m.namespace = ns }
}

func WithMemoClock(now func() time.Time) MemoOption {
	return func(m *Memo) { m.now = now }
}

func WithMemoObserver(o Observer) MemoOption {
	return func(m *Memo) { m.observer = o }
}

func NewMemo(store Store, opts ...MemoOption) *Memo {
	m := &Memo{
		store:     store,
		ttl:       DefaultMemoTTL,
		namespace: "memo",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type memoEntry struct {
	StoredAt time.Time       `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

// TTL is the maximum age of a served entry.
func (m *Memo) TTL() time.Duration { return m.ttl }

// Clear drops every entry of this memo.
func (m *Memo) Clear(ctx context.Context) error {
	return m.store.DeleteByPattern(ctx, BuildPattern(m.namespace+":"))
}

func (m *Memo) key(fn, args string) string {
	return m.namespace + ":" + fn + ":" + args
}

func (m *Memo) lookup(ctx context.Context, key string) (json.RawMessage, bool) {
	b, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var e memoEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, false
	}
	if m.now().Sub(e.StoredAt) > m.ttl {
		return nil, false
	}
	return e.Value, true
}

func (m *Memo) hit(fn string) {
	if m.observer != nil {
		m.observer.CacheHit(fn)
	}
}

func (m *Memo) miss(fn string) {
	if m.observer != nil {
		m.observer.CacheMiss(fn)
	}
}

// Do returns the memoized result of fn for args, computing it on a miss.
// The boolean reports whether the value came from the cache. Errors are
// never cached.
func Do[T any](ctx context.Context, m *Memo, fn, args string, compute func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	key := m.key(fn, args)

	if raw, ok := m.lookup(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			m.hit(fn)
			return v, true, nil
		}
	}
	m.miss(fn)

	// The flight outlives any single caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	res, err, _ := m.group.Do(key, func() (interface{}, error) {
		v, err := compute(flightCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		entry, err := json.Marshal(memoEntry{StoredAt: m.now(), Value: raw})
		if err != nil {
			return nil, err
		}
		// A failing store only costs a recomputation later.
		_ = m.store.Set(flightCtx, key, entry, m.ttl)
		return v, nil
	})
	if err != nil {
		return zero, false, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, false, errors.New("cache: memo type mismatch")
	}
	return v, false, nil
}
