// Package catalog wires the product and parts factories to a storage backend.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"furniture/internal/catalog/metrics"
	"furniture/internal/catalog/service"
	"furniture/internal/catalog/store"
	"furniture/internal/partid"
	"furniture/internal/platform/config"
)

// ProductFactory creates products and attaches parts to them.
type ProductFactory = service.ProductFactory

// PartsFactory creates parts and exposes the id ruleset.
type PartsFactory = service.PartsFactory

// Catalog is a ready-to-use set of factories over one backend.
type Catalog struct {
	Products *ProductFactory
	Parts    *PartsFactory
	backend  *store.Backend
}

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	source  partid.Source
}

type Option func(o *options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSource replaces the random source of the part id generator.
func WithSource(source partid.Source) Option {
	return func(o *options) {
		o.source = source
	}
}

// New builds the factories over an open backend. The catalog takes ownership
// of the backend and closes it on Close.
func New(backend *store.Backend, rules partid.Ruleset, opts ...Option) (*Catalog, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	generator, err := partid.New(rules, backend.Registry,
		partid.WithSource(o.source),
		partid.WithLogger(o.logger),
		partid.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}

	svcOpts := []service.Option{
		service.WithLogger(o.logger),
		service.WithMetrics(o.metrics),
		service.WithReleaser(backend.Registry),
	}
	parts := service.NewPartsFactory(backend.Parts, backend.Products, generator, svcOpts...)
	products := service.NewProductFactory(backend.Products, backend.Parts, parts, svcOpts...)
	return &Catalog{Products: products, Parts: parts, backend: backend}, nil
}

// Open connects to the configured storage strategy and builds the catalog.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules := Ruleset(cfg.Parts)
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("parts ruleset: %w", err)
	}
	backend, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	c, err := New(backend, rules, opts...)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return c, nil
}

// Ruleset applies the configured overrides to the default ruleset.
func Ruleset(p config.Parts) partid.Ruleset {
	rules := partid.DefaultRuleset()
	if p.DisownmentCode != "" {
		rules.DisownmentCode = p.DisownmentCode
	}
	if p.MaxAttempts != 0 {
		rules.MaxAttempts = p.MaxAttempts
	}
	return rules
}

// Strategy reports which storage strategy backs the catalog.
func (c *Catalog) Strategy() string {
	return string(c.backend.Strategy)
}

func (c *Catalog) Close() error {
	return c.backend.Close()
}
