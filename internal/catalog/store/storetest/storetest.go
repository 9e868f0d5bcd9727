// Package storetest holds the behaviour every catalog storage strategy must
// share. Strategy packages run StoreSuite against their own backend.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"furniture/internal/catalog/models"
	"furniture/internal/partid"
	id "furniture/pkg/domain"
	"furniture/pkg/platform/sentinel"
)

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
	Reserve(ctx context.Context, scope partid.Scope, partID id.PartID) error
	Release(ctx context.Context, scope partid.Scope, partID id.PartID) error
}

// Stores is what a strategy hands to the suite for each test.
type Stores struct {
	Products ProductStore
	Parts    PartStore
	Registry Registry
}

// StoreSuite exercises a backend. Fresh must return empty stores.
type StoreSuite struct {
	suite.Suite
	Fresh func() Stores

	ctx    context.Context
	stores Stores
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = s.Fresh()
}

func (s *StoreSuite) newProduct(name string) *models.Product {
	p, err := models.NewProduct(id.NewProductID(), name, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.stores.Products.Create(s.ctx, p))
	return p
}

func (s *StoreSuite) TestProducts() {
	s.Run("creates and finds product by ID", func() {
		p := s.newProduct("Product One")
		found, err := s.stores.Products.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
		s.Equal("Product One", found.Name)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.stores.Products.FindByID(s.ctx, id.NewProductID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		p := s.newProduct("Product Two")
		s.ErrorIs(s.stores.Products.Create(s.ctx, p), sentinel.ErrConflict)
	})
}

func (s *StoreSuite) TestParts() {
	one := s.newProduct("Product One")
	two := s.newProduct("Product Two")

	s.Run("round-trips a disowned part", func() {
		part, err := models.NewDisownedPart("Screw", "XXab1", time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.stores.Parts.Create(s.ctx, part))

		found, err := s.stores.Parts.FindByName(s.ctx, "Screw")
		s.Require().NoError(err)
		s.Equal(id.PartID("XXab1"), found.DisownedID)
		s.True(found.IsDisowned())
	})

	s.Run("rejects duplicate names", func() {
		part, err := models.NewDisownedPart("Screw", "XXzz9", time.Now())
		s.Require().NoError(err)
		s.ErrorIs(s.stores.Parts.Create(s.ctx, part), sentinel.ErrConflict)
	})

	s.Run("round-trips an attached part", func() {
		part, err := models.NewAttachedPart("Leg", []models.Attachment{
			{ProductID: one.ID, PartID: "legA1", AttachedAt: time.Now()},
			{ProductID: two.ID, PartID: "legB2", AttachedAt: time.Now()},
		}, time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.stores.Parts.Create(s.ctx, part))

		found, err := s.stores.Parts.FindByName(s.ctx, "Leg")
		s.Require().NoError(err)
		s.Empty(found.DisownedID)
		s.Require().Len(found.Attachments, 2)
		s.Equal(id.PartID("legA1"), found.ID())
		partID, ok := found.IDFor(two.ID)
		s.True(ok)
		s.Equal(id.PartID("legB2"), partID)
	})

	s.Run("attaches an existing part", func() {
		s.Require().NoError(s.stores.Parts.AddAttachment(s.ctx, "Screw",
			models.Attachment{ProductID: one.ID, PartID: "scrA1", AttachedAt: time.Now()}))

		found, err := s.stores.Parts.FindByName(s.ctx, "Screw")
		s.Require().NoError(err)
		s.Equal(id.PartID("XXab1"), found.DisownedID)
		s.Equal(id.PartID("scrA1"), found.ID())
	})

	s.Run("attaching twice is a conflict", func() {
		err := s.stores.Parts.AddAttachment(s.ctx, "Screw",
			models.Attachment{ProductID: one.ID, PartID: "othA1", AttachedAt: time.Now()})
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("attaching an unknown part is not found", func() {
		err := s.stores.Parts.AddAttachment(s.ctx, "Missing",
			models.Attachment{ProductID: one.ID, PartID: "misA1", AttachedAt: time.Now()})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("lists parts per product in attach order", func() {
		listed, err := s.stores.Parts.ListByProduct(s.ctx, one.ID)
		s.Require().NoError(err)
		s.Require().Len(listed, 2)
		s.Equal("Leg", listed[0].Name)
		s.Equal("Screw", listed[1].Name)

		listed, err = s.stores.Parts.ListByProduct(s.ctx, two.ID)
		s.Require().NoError(err)
		s.Require().Len(listed, 1)
		s.Equal("Leg", listed[0].Name)

		listed, err = s.stores.Parts.ListByProduct(s.ctx, id.NewProductID())
		s.Require().NoError(err)
		s.Empty(listed)
	})

	s.Run("unknown part is not found", func() {
		_, err := s.stores.Parts.FindByName(s.ctx, "Missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreSuite) TestRegistry() {
	scope := partid.ProductScope(id.NewProductID().String())

	s.Run("reserve is exclusive per scope", func() {
		s.Require().NoError(s.stores.Registry.Reserve(s.ctx, scope, "abce1"))
		s.ErrorIs(s.stores.Registry.Reserve(s.ctx, scope, "abce1"), sentinel.ErrConflict)
		s.NoError(s.stores.Registry.Reserve(s.ctx, partid.ProductScope(id.NewProductID().String()), "abce1"))
	})

	s.Run("release frees the id", func() {
		s.Require().NoError(s.stores.Registry.Release(s.ctx, scope, "abce1"))
		s.NoError(s.stores.Registry.Reserve(s.ctx, scope, "abce1"))
	})

	s.Run("concurrent reservations have one winner", func() {
		const goroutines = 20
		var wg sync.WaitGroup
		var wins atomic.Int32
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if s.stores.Registry.Reserve(s.ctx, scope, "racee") == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}
