package sqlstore

import (
	"context"
	"fmt"
	"time"

	"furniture/internal/partid"
	id "furniture/pkg/domain"
	"furniture/pkg/platform/sentinel"
	"furniture/pkg/platform/tx"
)

// Registry reserves part ids in the part_id_reservations table. The primary
// key on (scope, part_id) makes reservation atomic.
type Registry struct {
	store *Store
}

func (r *Registry) Reserve(ctx context.Context, scope partid.Scope, partID id.PartID) error {
	res, err := tx.Conn(ctx, r.store.db).ExecContext(ctx,
		r.store.q(`INSERT INTO part_id_reservations (scope, part_id, reserved_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`),
		string(scope), partID.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reserve part id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve part id rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (r *Registry) Release(ctx context.Context, scope partid.Scope, partID id.PartID) error {
	_, err := tx.Conn(ctx, r.store.db).ExecContext(ctx,
		r.store.q(`DELETE FROM part_id_reservations WHERE scope = ? AND part_id = ?`),
		string(scope), partID.String())
	if err != nil {
		return fmt.Errorf("release part id: %w", err)
	}
	return nil
}
