package app_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripplanner/internal/app"
	"github.com/neexbeast/tripplanner/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InMemoryCache(t *testing.T) {
	a, err := app.New(context.Background(), config.Config{}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Redis)
	assert.NotNil(t, a.Composer)
	assert.NotNil(t, a.Geocoder)
	assert.NotNil(t, a.Attractions)
	assert.Positive(t, a.Catalog.Len())
}

func TestNew_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	a, err := app.New(context.Background(), config.Config{RedisURL: "redis://" + mr.Addr()}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, a.Redis)
	require.NoError(t, a.Redis.Ping(context.Background()).Err())
	require.NoError(t, a.Close())
}

func TestNew_BadRedisURL(t *testing.T) {
	_, err := app.New(context.Background(), config.Config{RedisURL: "not-a-url"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestNew_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	yaml := "destinations:\n  - name: Gdańsk\n    country: Poland\n    currency: PLN\n    cost_multiplier: 1.0\n    cost_tier: low\n    tags: [sea]\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	a, err := app.New(context.Background(), config.Config{CatalogPath: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Catalog.Len())
}

func TestNew_MissingCatalogFile(t *testing.T) {
	_, err := app.New(context.Background(), config.Config{CatalogPath: filepath.Join(t.TempDir(), "absent.yaml")}, nil)
	require.Error(t, err)
}
