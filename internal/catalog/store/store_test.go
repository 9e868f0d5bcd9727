package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture/internal/catalog/models"
	"furniture/internal/platform/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("in-memory", func(t *testing.T) {
		b, err := Open(ctx, config.Storage{Strategy: "in-memory"})
		require.NoError(t, err)
		assert.Equal(t, models.StorageInMemory, b.Strategy)
		assert.NoError(t, b.Close())
	})

	t.Run("sqlite file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.db")
		b, err := Open(ctx, config.Storage{Strategy: "SQLite", SQLitePath: path})
		require.NoError(t, err)
		assert.Equal(t, models.StorageSQLite, b.Strategy)
		assert.NotNil(t, b.Products)
		assert.NotNil(t, b.Parts)
		assert.NotNil(t, b.Registry)
		assert.NoError(t, b.Close())
		assert.FileExists(t, path)
	})

	t.Run("redis without url", func(t *testing.T) {
		_, err := Open(ctx, config.Storage{Strategy: "redis"})
		assert.Error(t, err)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := Open(ctx, config.Storage{Strategy: "mongo"})
		assert.ErrorContains(t, err, "mongo")
	})
}
