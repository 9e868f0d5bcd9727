package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture/internal/platform/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("empty URL means redis is not configured", func(t *testing.T) {
		client, err := New(ctx, config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("malformed URL is rejected before dialing", func(t *testing.T) {
		_, err := New(ctx, config.RedisConfig{URL: "http://localhost:6379"})
		assert.ErrorContains(t, err, "parse redis URL")
	})
}
