package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"furniture/internal/catalog/store/sqlstore"
)

const uniqueViolation = pq.ErrorCode("23505")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parts (
		name        TEXT PRIMARY KEY,
		disowned_id TEXT,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS part_attachments (
		seq         BIGSERIAL PRIMARY KEY,
		part_name   TEXT NOT NULL REFERENCES parts(name),
		product_id  UUID NOT NULL REFERENCES products(id),
		part_id     TEXT NOT NULL,
		attached_at TIMESTAMPTZ NOT NULL,
		UNIQUE (part_name, product_id),
		UNIQUE (product_id, part_id)
	)`,
	`CREATE TABLE IF NOT EXISTS part_id_reservations (
		scope       TEXT NOT NULL,
		part_id     TEXT NOT NULL,
		reserved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (scope, part_id)
	)`,
}

// Dialect is the PostgreSQL flavour of the catalog schema.
var Dialect = sqlstore.Dialect{
	Name:              "postgres",
	Schema:            schema,
	Positional:        true,
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Open connects to PostgreSQL at url and migrates the catalog schema.
func Open(ctx context.Context, url string) (*sqlstore.Store, error) {
	if url == "" {
		return nil, errors.New("database url is required")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return FromDB(ctx, db)
}

// FromDB wraps an existing connection pool and migrates the schema.
func FromDB(ctx context.Context, db *sql.DB) (*sqlstore.Store, error) {
	store := sqlstore.New(db, Dialect)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
