package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"furniture/internal/catalog/store/sqlstore"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parts (
		name        TEXT PRIMARY KEY,
		disowned_id TEXT,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS part_attachments (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		part_name   TEXT NOT NULL REFERENCES parts(name),
		product_id  TEXT NOT NULL REFERENCES products(id),
		part_id     TEXT NOT NULL,
		attached_at TIMESTAMP NOT NULL,
		UNIQUE (part_name, product_id),
		UNIQUE (product_id, part_id)
	)`,
	`CREATE TABLE IF NOT EXISTS part_id_reservations (
		scope       TEXT NOT NULL,
		part_id     TEXT NOT NULL,
		reserved_at TIMESTAMP NOT NULL,
		PRIMARY KEY (scope, part_id)
	)`,
}

// Dialect is the SQLite flavour of the catalog schema.
var Dialect = sqlstore.Dialect{
	Name:              "sqlite",
	Schema:            schema,
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
func Open(ctx context.Context, path string) (*sqlstore.Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	store := sqlstore.New(db, Dialect)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
