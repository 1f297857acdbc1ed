package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Halcon/pkg/cache"
	"Halcon/pkg/config"
)

func TestApp_CloseWithOptionalBackendsDisabled(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	store := cache.NewMemoryCache()
	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), time.Minute))

	app := New(cfg, nil, Components{Cache: store})
	assert.NoError(t, app.Close())
	assert.Nil(t, app.Backfiller())
	assert.Same(t, cfg, app.Config())
}

func TestApp_RunWithoutServer(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	assert.Error(t, New(cfg, nil, Components{}).Run())
}
