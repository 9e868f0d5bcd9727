// Package store opens the catalog backend selected by a StorageStrategy.
package store

import (
	"context"
	"fmt"

	"furniture/internal/catalog/models"
	"furniture/internal/catalog/store/memory"
	"furniture/internal/catalog/store/postgres"
	catalogredis "furniture/internal/catalog/store/redis"
	"furniture/internal/catalog/store/sqlite"
	"furniture/internal/partid"
	"furniture/internal/platform/config"
	platformredis "furniture/internal/platform/redis"
	id "furniture/pkg/domain"
)

// Stores are interface-driven so the factories work unchanged across the
// in-memory, SQLite, PostgreSQL and Redis strategies.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error)
}

type PartStore interface {
	Create(ctx context.Context, part *models.Part) error
	FindByName(ctx context.Context, name string) (*models.Part, error)
	AddAttachment(ctx context.Context, name string, attachment models.Attachment) error
	ListByProduct(ctx context.Context, productID id.ProductID) ([]*models.Part, error)
}

type Registry interface {
	partid.Registry
	Release(ctx context.Context, scope partid.Scope, partID id.PartID) error
}

// Backend bundles the stores of one strategy.
type Backend struct {
	Strategy models.StorageStrategy
	Products ProductStore
	Parts    PartStore
	Registry Registry
	close    func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewInMemory returns a fresh in-memory backend.
func NewInMemory() *Backend {
	return &Backend{
		Strategy: models.StorageInMemory,
		Products: memory.NewProductStore(),
		Parts:    memory.NewPartStore(),
		Registry: memory.NewRegistry(),
	}
}

// Open connects to the backend described by cfg.
func Open(ctx context.Context, cfg config.Storage) (*Backend, error) {
	strategy, err := models.ParseStorageStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	switch strategy {
	case models.StorageInMemory:
		return NewInMemory(), nil
	case models.StorageSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Strategy: strategy,
			Products: s.Products(),
			Parts:    s.Parts(),
			Registry: s.Registry(),
			close:    s.Close,
		}, nil
	case models.StoragePostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Strategy: strategy,
			Products: s.Products(),
			Parts:    s.Parts(),
			Registry: s.Registry(),
			close:    s.Close,
		}, nil
	case models.StorageRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("redis storage requires a redis url")
		}
		s := catalogredis.New(client.Client)
		return &Backend{
			Strategy: strategy,
			Products: s.Products(),
			Parts:    s.Parts(),
			Registry: s.Registry(),
			close:    client.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage strategy: %q", strategy)
	}
}
