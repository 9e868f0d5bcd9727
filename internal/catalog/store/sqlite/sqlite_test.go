package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"furniture/internal/catalog/store/sqlite"
	"furniture/internal/catalog/store/storetest"
)

func TestSQLiteStoreSuite(t *testing.T) {
	dir := t.TempDir()
	n := 0
	suite.Run(t, &storetest.StoreSuite{
		Fresh: func() storetest.Stores {
			n++
			s, err := sqlite.Open(context.Background(), filepath.Join(dir, fmt.Sprintf("catalog-%d.db", n)))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return storetest.Stores{
				Products: s.Products(),
				Parts:    s.Parts(),
				Registry: s.Registry(),
			}
		},
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "")
	require.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	first, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Registry().Reserve(ctx, "disowned", "XXab1"))
	require.NoError(t, first.Close())

	second, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	require.Error(t, second.Registry().Reserve(ctx, "disowned", "XXab1"))
}
