package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BucketRefills(t *testing.T) {
	l := New()
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a", 2, 1))
	assert.True(t, l.Allow("a", 2, 1))
	assert.False(t, l.Allow("a", 2, 1))
	assert.True(t, l.Allow("b", 2, 1), "buckets are per key")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("a", 2, 1))
	assert.False(t, l.Allow("a", 2, 1))
}

func TestLimiter_Prune(t *testing.T) {
	l := New()
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	l.Allow("old", 1, 1)
	now = now.Add(time.Hour)
	l.Allow("new", 1, 1)

	assert.Equal(t, 1, l.Prune(10*time.Minute))
	assert.Len(t, l.m, 1)
}

func TestMiddleware_Returns429(t *testing.T) {
	e := echo.New()
	e.Use(Middleware(New(), 1, 0.5))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "3", second.Header().Get("Retry-After"))
}
