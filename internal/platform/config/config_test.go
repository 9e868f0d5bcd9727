package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults to sqlite", func(t *testing.T) {
		cfg, err := fromLookup(envLookup(nil))
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Storage.Strategy)
		assert.Equal(t, "catalog.db", cfg.Storage.SQLitePath)
		assert.Equal(t, Parts{}, cfg.Parts)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	})

	t.Run("reads overrides", func(t *testing.T) {
		cfg, err := fromLookup(envLookup(map[string]string{
			"CATALOG_STORAGE":       " Redis ",
			"REDIS_URL":             "redis://localhost:6379/0",
			"REDIS_POOL_SIZE":       "4",
			"PARTS_DISOWNMENT_CODE": "DIS",
			"PARTS_MAX_ATTEMPTS":    "3",
			"LOG_LEVEL":             "debug",
		}))
		require.NoError(t, err)
		assert.Equal(t, "redis", cfg.Storage.Strategy)
		assert.Equal(t, 4, cfg.Storage.Redis.PoolSize)
		assert.Equal(t, Parts{DisownmentCode: "DIS", MaxAttempts: 3}, cfg.Parts)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	})

	t.Run("rejects bad values", func(t *testing.T) {
		_, err := fromLookup(envLookup(map[string]string{
			"REDIS_POOL_SIZE":    "lots",
			"PARTS_MAX_ATTEMPTS": "many",
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_POOL_SIZE")
		assert.Contains(t, err.Error(), "PARTS_MAX_ATTEMPTS")

		_, err = fromLookup(envLookup(map[string]string{"PARTS_MAX_ATTEMPTS": "-1"}))
		assert.ErrorContains(t, err, "negative")
	})

	t.Run("strategies need their connection settings", func(t *testing.T) {
		_, err := fromLookup(envLookup(map[string]string{"CATALOG_STORAGE": "postgres"}))
		assert.ErrorContains(t, err, "DATABASE_URL")

		_, err = fromLookup(envLookup(map[string]string{"CATALOG_STORAGE": "redis"}))
		assert.ErrorContains(t, err, "REDIS_URL")

		cfg, err := fromLookup(envLookup(map[string]string{"CATALOG_STORAGE": "memory"}))
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Storage.Strategy)
	})

	t.Run("strategy names are passed through for the store to parse", func(t *testing.T) {
		cfg, err := fromLookup(envLookup(map[string]string{"CATALOG_STORAGE": "mongo"}))
		require.NoError(t, err)
		assert.Equal(t, "mongo", cfg.Storage.Strategy)
	})
}
