package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"furniture/internal/catalog/metrics"
	"furniture/internal/catalog/models"
	"furniture/internal/partid"
	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
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

// IDGenerator assigns part ids; *partid.Generator satisfies it.
type IDGenerator interface {
	Generate(ctx context.Context, name string, parent fmt.Stringer, exclude ...id.PartID) (id.PartID, error)
	Rules() partid.Ruleset
}

// Releaser gives back a reserved part id when the part that needed it could
// not be stored.
type Releaser interface {
	Release(ctx context.Context, scope partid.Scope, partID id.PartID) error
}

var tracer = otel.Tracer("furniture/internal/catalog/service")

// deps holds the optional collaborators shared by both factories.
type deps struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	releaser Releaser
	clock    func() time.Time
}

type Option func(d *deps)

func WithLogger(logger *slog.Logger) Option {
	return func(d *deps) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) {
		d.metrics = m
	}
}

// WithReleaser lets the parts factory free reservations of parts it failed to store.
func WithReleaser(r Releaser) Option {
	return func(d *deps) {
		d.releaser = r
	}
}

// WithClock sets the time source used for CreatedAt/AttachedAt.
func WithClock(clock func() time.Time) Option {
	return func(d *deps) {
		if clock != nil {
			d.clock = clock
		}
	}
}

func newDeps(opts []Option) deps {
	d := deps{clock: time.Now}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d *deps) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.Log(ctx, level, msg, args...)
}

func (d *deps) now() time.Time {
	return d.clock().UTC()
}

// asInvalidArgument converts a model invariant violation into a caller error.
func asInvalidArgument(err error, msg string) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.Wrap(err, dErrors.CodeInvalidArgument, msg)
	}
	return err
}

// endSpan records err on span before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
