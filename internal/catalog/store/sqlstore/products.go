package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"furniture/internal/catalog/models"
	id "furniture/pkg/domain"
	"furniture/pkg/platform/sentinel"
	"furniture/pkg/platform/tx"
)

// ProductStore persists products.
type ProductStore struct {
	store *Store
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	_, err := tx.Conn(ctx, s.store.db).ExecContext(ctx,
		s.store.q(`INSERT INTO products (id, name, created_at) VALUES (?, ?, ?)`),
		product.ID.String(), product.Name, product.CreatedAt.UTC())
	if err != nil {
		if s.store.isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *ProductStore) FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	var (
		rawID     string
		name      string
		createdAt time.Time
	)
	err := tx.Conn(ctx, s.store.db).QueryRowContext(ctx,
		s.store.q(`SELECT id, name, created_at FROM products WHERE id = ?`),
		productID.String()).Scan(&rawID, &name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	parsed, err := id.ParseProductID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored product id %q: %w", rawID, err)
	}
	return &models.Product{ID: parsed, Name: name, CreatedAt: createdAt}, nil
}
