package memory

import (
	"context"
	"sync"

	"furniture/internal/catalog/models"
	"furniture/internal/partid"
	id "furniture/pkg/domain"
	"furniture/pkg/platform/sentinel"
)

// In-memory stores back the StorageInMemory strategy. They favor clarity over
// performance and are meant for development and tests.

type ProductStore struct {
	mu       sync.RWMutex
	products map[id.ProductID]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[id.ProductID]models.Product)}
}

func (s *ProductStore) Create(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; ok {
		return sentinel.ErrConflict
	}
	s.products[product.ID] = *product
	return nil
}

func (s *ProductStore) FindByID(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if product, ok := s.products[productID]; ok {
		return &product, nil
	}
	return nil, sentinel.ErrNotFound
}

type PartStore struct {
	mu        sync.RWMutex
	parts     map[string]*models.Part
	byProduct map[id.ProductID][]string
}

func NewPartStore() *PartStore {
	return &PartStore{
		parts:     make(map[string]*models.Part),
		byProduct: make(map[id.ProductID][]string),
	}
}

func (s *PartStore) Create(_ context.Context, part *models.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[part.Name]; ok {
		return sentinel.ErrConflict
	}
	s.parts[part.Name] = part.Clone()
	for _, a := range part.Attachments {
		s.byProduct[a.ProductID] = append(s.byProduct[a.ProductID], part.Name)
	}
	return nil
}

func (s *PartStore) FindByName(_ context.Context, name string) (*models.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if part, ok := s.parts[name]; ok {
		return part.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *PartStore) AddAttachment(_ context.Context, name string, attachment models.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	part, ok := s.parts[name]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, attached := part.AttachmentFor(attachment.ProductID); attached {
		return sentinel.ErrConflict
	}
	updated := part.Clone()
	if err := updated.Attach(attachment); err != nil {
		return err
	}
	s.parts[name] = updated
	s.byProduct[attachment.ProductID] = append(s.byProduct[attachment.ProductID], name)
	return nil
}

// ListByProduct returns the parts attached to productID in attach order.
func (s *PartStore) ListByProduct(_ context.Context, productID id.ProductID) ([]*models.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := s.byProduct[productID]
	parts := make([]*models.Part, 0, len(names))
	for _, name := range names {
		parts = append(parts, s.parts[name].Clone())
	}
	return parts, nil
}

// Registry tracks reserved part ids per scope.
type Registry struct {
	mu       sync.Mutex
	reserved map[partid.Scope]map[id.PartID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{reserved: make(map[partid.Scope]map[id.PartID]struct{})}
}

func (r *Registry) Reserve(_ context.Context, scope partid.Scope, partID id.PartID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.reserved[scope]
	if !ok {
		ids = make(map[id.PartID]struct{})
		r.reserved[scope] = ids
	}
	if _, taken := ids[partID]; taken {
		return sentinel.ErrConflict
	}
	ids[partID] = struct{}{}
	return nil
}

func (r *Registry) Release(_ context.Context, scope partid.Scope, partID id.PartID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reserved[scope], partID)
	return nil
}
