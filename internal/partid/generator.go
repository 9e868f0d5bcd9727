// Package partid generates part identifiers.
//
// A part id is five characters from [A-Za-z0-9]. Ids of parts attached to a
// product end with the last two characters of that product's id; ids of parts
// without a product start with the ruleset's disownment code. The remaining
// characters are random, and every candidate is reserved in a Registry so ids
// stay unique within their product (or within the disowned namespace).
package partid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"furniture/internal/catalog/metrics"
	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
	"furniture/pkg/platform/sentinel"
)

// Generator assigns part ids.
type Generator struct {
	rules    Ruleset
	registry Registry
	source   Source
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(g *Generator)

func WithSource(source Source) Option {
	return func(g *Generator) {
		if source != nil {
			g.source = source
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// New constructs a Generator. The ruleset is validated up front.
func New(rules Ruleset, registry Registry, opts ...Option) (*Generator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "registry is required")
	}
	g := &Generator{
		rules:    rules,
		registry: registry,
		source:   CryptoSource,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Rules returns the ruleset the generator applies.
func (g *Generator) Rules() Ruleset {
	return g.rules
}

// Generate produces and reserves a part id for name. A nil parent marks the
// part as disowned; otherwise parent.String() is the owning product's id.
// Candidates listed in exclude are skipped, so a part attached to several
// products never holds the same id twice even when the products share a
// suffix.
func (g *Generator) Generate(ctx context.Context, name string, parent fmt.Stringer, exclude ...id.PartID) (id.PartID, error) {
	start := time.Now()
	if strings.TrimSpace(name) == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "part name is required")
	}

	var (
		scope          = Disowned
		kind           = metrics.KindDisowned
		prefix, suffix string
	)
	if parent == nil {
		prefix = g.rules.DisownmentCode
	} else {
		productID := parent.String()
		if len(productID) < g.rules.SuffixLength {
			return "", dErrors.Newf(dErrors.CodeInvalidArgument,
				"product id must be at least %d characters", g.rules.SuffixLength)
		}
		suffix = productID[len(productID)-g.rules.SuffixLength:]
		if !id.IsAlphanumeric(suffix) {
			return "", dErrors.New(dErrors.CodeInvalidArgument, "product id must end with alphanumeric characters")
		}
		scope = ProductScope(productID)
		kind = metrics.KindAttached
	}

	free := g.rules.Length - len(prefix) - len(suffix)
	for attempt := 1; attempt <= g.rules.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		middle, err := g.source(free)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to draw part id characters")
		}
		candidate, err := id.ParsePartID(prefix + middle + suffix)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "source produced an invalid part id")
		}
		if slices.Contains(exclude, candidate) {
			g.incrementCollision(kind)
			continue
		}

		err = g.registry.Reserve(ctx, scope, candidate)
		if err == nil {
			g.observeGenerated(kind, start)
			g.log(ctx, slog.LevelDebug, "part id generated",
				"part_name", name, "part_id", candidate.String(), "scope", string(scope), "attempt", attempt)
			return candidate, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve part id")
		}
		g.incrementCollision(kind)
	}

	g.incrementExhausted(kind)
	g.log(ctx, slog.LevelWarn, "part id generation exhausted",
		"part_name", name, "scope", string(scope), "attempts", g.rules.MaxAttempts)
	return "", dErrors.Newf(dErrors.CodeCollisionExhausted,
		"no free part id in %s after %d attempts", scope, g.rules.MaxAttempts)
}

func (g *Generator) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Log(ctx, level, msg, args...)
}

func (g *Generator) observeGenerated(kind string, start time.Time) {
	if g.metrics != nil {
		g.metrics.ObservePartIDGenerated(kind, start)
	}
}

func (g *Generator) incrementCollision(kind string) {
	if g.metrics != nil {
		g.metrics.IncrementPartIDCollision(kind)
	}
}

func (g *Generator) incrementExhausted(kind string) {
	if g.metrics != nil {
		g.metrics.IncrementPartIDExhausted(kind)
	}
}
