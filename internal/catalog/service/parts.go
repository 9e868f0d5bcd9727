package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"furniture/internal/catalog/models"
	"furniture/internal/partid"
	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
	"furniture/pkg/platform/sentinel"
)

// PartsFactory creates parts and assigns their ids.
type PartsFactory struct {
	deps
	parts    PartStore
	products ProductStore
	ids      IDGenerator
}

func NewPartsFactory(parts PartStore, products ProductStore, ids IDGenerator, opts ...Option) *PartsFactory {
	return &PartsFactory{
		deps:     newDeps(opts),
		parts:    parts,
		products: products,
		ids:      ids,
	}
}

// Rules exposes the ruleset ids are generated under, including the
// disownment code.
func (f *PartsFactory) Rules() partid.Ruleset {
	return f.ids.Rules()
}

// reservation is an id generated for a part that is not stored yet.
type reservation struct {
	scope  partid.Scope
	partID id.PartID
}

// Create stores a new part. Without products the part is disowned and its id
// starts with the disownment code; otherwise it gets one id per product, each
// ending with that product's id suffix.
func (f *PartsFactory) Create(ctx context.Context, name string, productIDs ...id.ProductID) (part *models.Part, err error) {
	ctx, span := tracer.Start(ctx, "PartsFactory.Create", trace.WithAttributes(
		attribute.String("part.name", name),
		attribute.Int("part.products", len(productIDs)),
	))
	defer func() { endSpan(span, err) }()

	name, err = models.ValidatePartName(name)
	if err != nil {
		return nil, asInvalidArgument(err, "invalid part name")
	}
	if err := distinct(productIDs); err != nil {
		return nil, err
	}
	if err := f.requireProducts(ctx, productIDs); err != nil {
		return nil, err
	}
	if _, err := f.parts.FindByName(ctx, name); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "part name must be unique")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check part name")
	}

	now := f.now()
	var reserved []reservation
	defer func() {
		if err != nil {
			f.release(ctx, reserved)
		}
	}()

	if len(productIDs) == 0 {
		partID, err := f.ids.Generate(ctx, name, nil)
		if err != nil {
			return nil, err
		}
		reserved = append(reserved, reservation{scope: partid.Disowned, partID: partID})
		part, err = models.NewDisownedPart(name, partID, now)
		if err != nil {
			return nil, err
		}
	} else {
		attachments := make([]models.Attachment, 0, len(productIDs))
		assigned := make([]id.PartID, 0, len(productIDs))
		for _, productID := range productIDs {
			partID, err := f.ids.Generate(ctx, name, productID, assigned...)
			if err != nil {
				return nil, err
			}
			assigned = append(assigned, partID)
			reserved = append(reserved, reservation{scope: partid.ProductScope(productID.String()), partID: partID})
			attachments = append(attachments, models.Attachment{ProductID: productID, PartID: partID, AttachedAt: now})
		}
		part, err = models.NewAttachedPart(name, attachments, now)
		if err != nil {
			return nil, err
		}
	}

	if err := f.parts.Create(ctx, part); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "part name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create part")
	}

	f.log(ctx, slog.LevelInfo, "part created",
		"part_name", part.Name, "part_id", part.ID().String(), "products", len(part.Attachments))
	if f.metrics != nil {
		f.metrics.IncrementPartCreated()
		for range part.Attachments {
			f.metrics.IncrementPartAttached()
		}
	}
	return part, nil
}

// Get loads a part by name.
func (f *PartsFactory) Get(ctx context.Context, name string) (*models.Part, error) {
	part, err := f.parts.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "part not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load part")
	}
	return part, nil
}

// Attach attaches an existing part to a product under a newly generated id.
// Attaching to a product the part already belongs to returns the part as is.
func (f *PartsFactory) Attach(ctx context.Context, partName string, productID id.ProductID) (part *models.Part, err error) {
	ctx, span := tracer.Start(ctx, "PartsFactory.Attach", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
		attribute.String("part.name", partName),
	))
	defer func() { endSpan(span, err) }()

	name, err := models.ValidatePartName(partName)
	if err != nil {
		return nil, asInvalidArgument(err, "invalid part name")
	}
	if err := f.requireProducts(ctx, []id.ProductID{productID}); err != nil {
		return nil, err
	}
	part, err = f.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, ok := part.AttachmentFor(productID); ok {
		return part, nil
	}

	partID, err := f.ids.Generate(ctx, part.Name, productID, part.IDs()...)
	if err != nil {
		return nil, err
	}
	attachment := models.Attachment{ProductID: productID, PartID: partID, AttachedAt: f.now()}
	res := []reservation{{scope: partid.ProductScope(productID.String()), partID: partID}}

	if err := f.parts.AddAttachment(ctx, part.Name, attachment); err != nil {
		f.release(ctx, res)
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			// Attached concurrently; the first attachment wins.
			return f.Get(ctx, part.Name)
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "part not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach part")
		}
	}
	if err := part.Attach(attachment); err != nil {
		return nil, err
	}

	f.log(ctx, slog.LevelInfo, "part attached",
		"part_name", part.Name, "product_id", productID.String(), "part_id", partID.String())
	if f.metrics != nil {
		f.metrics.IncrementPartAttached()
	}
	return part, nil
}

// requireProducts checks that every product exists, loading them concurrently.
func (f *PartsFactory) requireProducts(ctx context.Context, productIDs []id.ProductID) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, productID := range productIDs {
		g.Go(func() error {
			if productID.IsNil() {
				return dErrors.New(dErrors.CodeInvalidArgument, "product id cannot be nil")
			}
			if _, err := f.products.FindByID(gctx, productID); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.Newf(dErrors.CodeNotFound, "product %s not found", productID)
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
			}
			return nil
		})
	}
	return g.Wait()
}

func (f *PartsFactory) release(ctx context.Context, reserved []reservation) {
	if f.releaser == nil {
		return
	}
	for _, r := range reserved {
		if err := f.releaser.Release(context.WithoutCancel(ctx), r.scope, r.partID); err != nil {
			f.log(ctx, slog.LevelWarn, "failed to release part id",
				"scope", string(r.scope), "part_id", r.partID.String(), "error", err)
		}
	}
}

func distinct(productIDs []id.ProductID) error {
	seen := make(map[id.ProductID]struct{}, len(productIDs))
	for _, productID := range productIDs {
		if _, dup := seen[productID]; dup {
			return dErrors.Newf(dErrors.CodeInvalidArgument, "product %s listed more than once", productID)
		}
		seen[productID] = struct{}{}
	}
	return nil
}
