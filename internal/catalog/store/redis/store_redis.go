package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"furniture/internal/catalog/models"
	"furniture/internal/partid"
	id "furniture/pkg/domain"
	"furniture/pkg/platform/sentinel"
)

// Key layout:
//
//	<prefix>product:<id>            JSON product
//	<prefix>product:<id>:parts      list of attached part names, attach order
//	<prefix>part:<name>             JSON part
//	<prefix>partid:<scope>:<id>     reservation marker
const defaultPrefix = "catalog:"

// maxWatchRetries bounds optimistic retries when a watched part key changes.
const maxWatchRetries = 8

// Store keeps catalog data in Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
}

type Option func(*Store)

// WithPrefix namespaces every key, letting several catalogs share one database.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

func (s *Store) productKey(productID id.ProductID) string {
	return s.prefix + "product:" + productID.String()
}

func (s *Store) productPartsKey(productID id.ProductID) string {
	return s.productKey(productID) + ":parts"
}

func (s *Store) partKey(name string) string {
	return s.prefix + "part:" + name
}

func (s *Store) reservationKey(scope partid.Scope, partID id.PartID) string {
	return s.prefix + "partid:" + string(scope) + ":" + partID.String()
}

type ProductStore struct {
	store *Store
}

func (p *ProductStore) Create(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	ok, err := p.store.client.SetNX(ctx, p.store.productKey(product.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (p *ProductStore) FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	data, err := p.store.client.Get(ctx, p.store.productKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &product, nil
}

type PartStore struct {
	store *Store
}

// Create writes the part and its product indexes in one MULTI under WATCH, so
// a failed write leaves neither behind.
func (p *PartStore) Create(ctx context.Context, part *models.Part) error {
	data, err := json.Marshal(part)
	if err != nil {
		return fmt.Errorf("marshal part: %w", err)
	}
	key := p.store.partKey(part.Name)
	create := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return sentinel.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			for _, a := range part.Attachments {
				pipe.RPush(ctx, p.store.productPartsKey(a.ProductID), part.Name)
			}
			return nil
		})
		return err
	}
	return p.watch(ctx, key, create, "create part")
}

func (p *PartStore) FindByName(ctx context.Context, name string) (*models.Part, error) {
	return p.get(ctx, p.store.client, name)
}

func (p *PartStore) get(ctx context.Context, c redis.Cmdable, name string) (*models.Part, error) {
	data, err := c.Get(ctx, p.store.partKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find part by name: %w", err)
	}
	var part models.Part
	if err := json.Unmarshal(data, &part); err != nil {
		return nil, fmt.Errorf("unmarshal part: %w", err)
	}
	return &part, nil
}

// AddAttachment appends an attachment under WATCH so concurrent attaches to
// the same part cannot overwrite each other.
func (p *PartStore) AddAttachment(ctx context.Context, name string, attachment models.Attachment) error {
	key := p.store.partKey(name)
	attach := func(tx *redis.Tx) error {
		part, err := p.get(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, attached := part.AttachmentFor(attachment.ProductID); attached {
			return sentinel.ErrConflict
		}
		if err := part.Attach(attachment); err != nil {
			return err
		}
		data, err := json.Marshal(part)
		if err != nil {
			return fmt.Errorf("marshal part: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.RPush(ctx, p.store.productPartsKey(attachment.ProductID), name)
			return nil
		})
		return err
	}

	return p.watch(ctx, key, attach, "attach part")
}

// watch runs fn under WATCH on key, retrying when the key changed underneath.
// Sentinel errors pass through unwrapped.
func (p *PartStore) watch(ctx context.Context, key string, fn func(*redis.Tx) error, op string) error {
	for range maxWatchRetries {
		err := p.store.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) && !errors.Is(err, sentinel.ErrConflict) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return err
	}
	return fmt.Errorf("%s: %w", op, sentinel.ErrUnavailable)
}

// ListByProduct returns the parts attached to productID in attach order.
func (p *PartStore) ListByProduct(ctx context.Context, productID id.ProductID) ([]*models.Part, error) {
	names, err := p.store.client.LRange(ctx, p.store.productPartsKey(productID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list parts by product: %w", err)
	}
	parts := make([]*models.Part, 0, len(names))
	for _, name := range names {
		part, err := p.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// Registry reserves part ids with SETNX, which is atomic per key.
type Registry struct {
	store *Store
}

func (r *Registry) Reserve(ctx context.Context, scope partid.Scope, partID id.PartID) error {
	ok, err := r.store.client.SetNX(ctx, r.store.reservationKey(scope, partID), 1, 0).Result()
	if err != nil {
		return fmt.Errorf("reserve part id: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (r *Registry) Release(ctx context.Context, scope partid.Scope, partID id.PartID) error {
	if err := r.store.client.Del(ctx, r.store.reservationKey(scope, partID)).Err(); err != nil {
		return fmt.Errorf("release part id: %w", err)
	}
	return nil
}
