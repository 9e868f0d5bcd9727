package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"furniture/internal/catalog/models"
	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
	"furniture/pkg/platform/sentinel"
)

// PartAttacher attaches an existing part to a product; *PartsFactory satisfies it.
type PartAttacher interface {
	Attach(ctx context.Context, partName string, productID id.ProductID) (*models.Part, error)
}

// ProductFactory creates products and manages the parts attached to them.
type ProductFactory struct {
	deps
	products ProductStore
	parts    PartStore
	attacher PartAttacher
}

func NewProductFactory(products ProductStore, parts PartStore, attacher PartAttacher, opts ...Option) *ProductFactory {
	return &ProductFactory{
		deps:     newDeps(opts),
		products: products,
		parts:    parts,
		attacher: attacher,
	}
}

// Create assigns a new ProductID and stores the product.
func (f *ProductFactory) Create(ctx context.Context, name string) (product *models.Product, err error) {
	ctx, span := tracer.Start(ctx, "ProductFactory.Create")
	defer func() { endSpan(span, err) }()

	product, err = models.NewProduct(id.NewProductID(), name, f.now())
	if err != nil {
		return nil, asInvalidArgument(err, "invalid product")
	}
	if err := f.products.Create(ctx, product); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "product id already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
	}
	span.SetAttributes(attribute.String("product.id", product.ID.String()))
	f.log(ctx, slog.LevelInfo, "product created", "product_id", product.ID.String(), "product_name", product.Name)
	if f.metrics != nil {
		f.metrics.IncrementProductCreated()
	}
	return product, nil
}

// Get loads a product.
func (f *ProductFactory) Get(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	product, err := f.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	return product, nil
}

// AddPart attaches the named part to the product, generating the part's id
// for this product. Adding a part that is already attached is a no-op.
func (f *ProductFactory) AddPart(ctx context.Context, productID id.ProductID, partName string) (part *models.Part, err error) {
	ctx, span := tracer.Start(ctx, "ProductFactory.AddPart", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
		attribute.String("part.name", partName),
	))
	defer func() { endSpan(span, err) }()

	return f.attacher.Attach(ctx, partName, productID)
}

// GetPart returns the named part as seen from the product: its name and the
// id it was assigned for this product.
func (f *ProductFactory) GetPart(ctx context.Context, productID id.ProductID, partName string) (*models.PartView, error) {
	if _, err := f.Get(ctx, productID); err != nil {
		return nil, err
	}
	name, err := models.ValidatePartName(partName)
	if err != nil {
		return nil, asInvalidArgument(err, "invalid part name")
	}
	part, err := f.parts.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "part not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load part")
	}
	view, ok := part.ViewFor(productID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "part is not attached to product")
	}
	return view, nil
}

// ListParts returns every part attached to the product in attach order.
func (f *ProductFactory) ListParts(ctx context.Context, productID id.ProductID) ([]*models.PartView, error) {
	if _, err := f.Get(ctx, productID); err != nil {
		return nil, err
	}
	parts, err := f.parts.ListByProduct(ctx, productID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list parts")
	}
	views := make([]*models.PartView, 0, len(parts))
	for _, part := range parts {
		if view, ok := part.ViewFor(productID); ok {
			views = append(views, view)
		}
	}
	return views, nil
}
