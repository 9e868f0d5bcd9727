// Package sqlstore implements the catalog stores on database/sql. The SQLite
// and PostgreSQL strategies share it and differ only in their Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	Name   string
	Schema []string
	// Positional rewrites "?" placeholders into the backend's style.
	Positional bool
	// IsUniqueViolation reports whether err is a unique/primary key violation.
	IsUniqueViolation func(err error) bool
}

// Store owns the connection and hands out the per-entity stores.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Migrate creates the catalog tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s schema: %w", s.dialect.Name, err)
		}
	}
	return nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Products() *ProductStore {
	return &ProductStore{store: s}
}

func (s *Store) Parts() *PartStore {
	return &PartStore{store: s}
}

func (s *Store) Registry() *Registry {
	return &Registry{store: s}
}

// q rewrites a query written with "?" placeholders for the dialect.
func (s *Store) q(query string) string {
	if !s.dialect.Positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) isUniqueViolation(err error) bool {
	return s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err)
}
