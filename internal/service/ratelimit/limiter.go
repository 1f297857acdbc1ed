package ratelimit

import (
	"sync"
	"time"

	xhttp "Halcon/pkg/http"

	"github.com/labstack/echo/v4"
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter keeps one token bucket per key, typically a client IP.
type Limiter struct {
	mu  sync.Mutex
	m   map[string]*bucket
	now func() time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket), now: time.Now} }

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Prune forgets buckets idle for longer than idle; they would be full anyway.
func (l *Limiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	n := 0
	for k, b := range l.m {
		if b.last.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

// Middleware rejects requests over the per-client budget with 429.
func Middleware(l *Limiter, capacity, refillPerSec float64) echo.MiddlewareFunc {
	retryAfter := time.Second
	if refillPerSec > 0 {
		retryAfter = time.Duration(int(1/refillPerSec)+1) * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.Allow(c.RealIP(), capacity, refillPerSec) {
				return next(c)
			}
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded").WithRetryAfter(retryAfter))
		}
	}
}
