//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"furniture/internal/catalog/store/postgres"
	"furniture/internal/catalog/store/storetest"
	"furniture/pkg/testutil/containers"
)

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store, err := postgres.FromDB(ctx, pg.DB)
	require.NoError(t, err)

	suite.Run(t, &storetest.StoreSuite{
		Fresh: func() storetest.Stores {
			require.NoError(t, pg.TruncateTables(ctx,
				"part_attachments", "parts", "products", "part_id_reservations"))
			return storetest.Stores{
				Products: store.Products(),
				Parts:    store.Parts(),
				Registry: store.Registry(),
			}
		},
	})
}

func TestOpen_Migrates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.NewPostgresContainer(t)

	store, err := postgres.Open(context.Background(), pg.URL)
	require.NoError(t, err)
	defer store.Close()

	// Migrations are idempotent.
	require.NoError(t, store.Migrate(context.Background()))
}
