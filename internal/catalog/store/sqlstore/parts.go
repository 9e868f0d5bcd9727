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

// PartStore persists parts and their product attachments.
type PartStore struct {
	store *Store
}

func (s *PartStore) Create(ctx context.Context, part *models.Part) error {
	return tx.Run(ctx, s.store.db, func(ctx context.Context) error {
		disowned := sql.NullString{String: part.DisownedID.String(), Valid: part.DisownedID != ""}
		_, err := tx.Conn(ctx, s.store.db).ExecContext(ctx,
			s.store.q(`INSERT INTO parts (name, disowned_id, created_at) VALUES (?, ?, ?)`),
			part.Name, disowned, part.CreatedAt.UTC())
		if err != nil {
			if s.store.isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("create part: %w", err)
		}
		for _, a := range part.Attachments {
			if err := s.insertAttachment(ctx, part.Name, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PartStore) AddAttachment(ctx context.Context, name string, attachment models.Attachment) error {
	return tx.Run(ctx, s.store.db, func(ctx context.Context) error {
		var exists int
		err := tx.Conn(ctx, s.store.db).QueryRowContext(ctx,
			s.store.q(`SELECT 1 FROM parts WHERE name = ?`), name).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("check part: %w", err)
		}
		return s.insertAttachment(ctx, name, attachment)
	})
}

func (s *PartStore) insertAttachment(ctx context.Context, name string, a models.Attachment) error {
	_, err := tx.Conn(ctx, s.store.db).ExecContext(ctx,
		s.store.q(`INSERT INTO part_attachments (part_name, product_id, part_id, attached_at) VALUES (?, ?, ?, ?)`),
		name, a.ProductID.String(), a.PartID.String(), a.AttachedAt.UTC())
	if err != nil {
		if s.store.isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("attach part: %w", err)
	}
	return nil
}

func (s *PartStore) FindByName(ctx context.Context, name string) (*models.Part, error) {
	var (
		partName  string
		disowned  sql.NullString
		createdAt time.Time
	)
	err := tx.Conn(ctx, s.store.db).QueryRowContext(ctx,
		s.store.q(`SELECT name, disowned_id, created_at FROM parts WHERE name = ?`),
		name).Scan(&partName, &disowned, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find part by name: %w", err)
	}
	part := &models.Part{Name: partName, DisownedID: id.PartID(disowned.String), CreatedAt: createdAt}

	attachments, err := s.attachments(ctx, partName)
	if err != nil {
		return nil, err
	}
	part.Attachments = attachments
	return part, nil
}

func (s *PartStore) attachments(ctx context.Context, name string) ([]models.Attachment, error) {
	rows, err := tx.Conn(ctx, s.store.db).QueryContext(ctx,
		s.store.q(`SELECT product_id, part_id, attached_at FROM part_attachments WHERE part_name = ? ORDER BY seq`),
		name)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []models.Attachment
	for rows.Next() {
		var (
			rawProductID string
			partID       string
			attachedAt   time.Time
		)
		if err := rows.Scan(&rawProductID, &partID, &attachedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		productID, err := id.ParseProductID(rawProductID)
		if err != nil {
			return nil, fmt.Errorf("stored product id %q: %w", rawProductID, err)
		}
		out = append(out, models.Attachment{ProductID: productID, PartID: id.PartID(partID), AttachedAt: attachedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return out, nil
}

// ListByProduct returns the parts attached to productID in attach order.
func (s *PartStore) ListByProduct(ctx context.Context, productID id.ProductID) ([]*models.Part, error) {
	names, err := s.attachedNames(ctx, productID)
	if err != nil {
		return nil, err
	}
	parts := make([]*models.Part, 0, len(names))
	for _, name := range names {
		part, err := s.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (s *PartStore) attachedNames(ctx context.Context, productID id.ProductID) ([]string, error) {
	rows, err := tx.Conn(ctx, s.store.db).QueryContext(ctx,
		s.store.q(`SELECT part_name FROM part_attachments WHERE product_id = ? ORDER BY seq`),
		productID.String())
	if err != nil {
		return nil, fmt.Errorf("list parts by product: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan part name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate part names: %w", err)
	}
	return names, nil
}
