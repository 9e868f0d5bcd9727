package partid

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"furniture/internal/catalog/metrics"
	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
	"furniture/pkg/platform/sentinel"
)

var partIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{5}$`)

type fakeRegistry struct {
	mu       sync.Mutex
	reserved map[Scope]map[id.PartID]struct{}
	err      error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{reserved: make(map[Scope]map[id.PartID]struct{})}
}

func (r *fakeRegistry) Reserve(_ context.Context, scope Scope, partID id.PartID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
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

type productRef string

func (p productRef) String() string { return string(p) }

// sequenceSource returns the given values in order, then repeats the last one.
func sequenceSource(values ...string) Source {
	var mu sync.Mutex
	i := 0
	return func(n int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		v := values[min(i, len(values)-1)]
		i++
		if len(v) != n {
			return "", fmt.Errorf("want %d chars, have %q", n, v)
		}
		return v, nil
	}
}

type GeneratorSuite struct {
	suite.Suite
	ctx      context.Context
	registry *fakeRegistry
	metrics  *metrics.Metrics
	gen      *Generator
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) SetupTest() {
	s.ctx = context.Background()
	s.registry = newFakeRegistry()
	s.metrics = metrics.New(prometheus.NewRegistry())
	gen, err := New(DefaultRuleset(), s.registry, WithMetrics(s.metrics))
	s.Require().NoError(err)
	s.gen = gen
}

func (s *GeneratorSuite) TestShape() {
	s.Run("attached ids are five alphanumerics ending in the product suffix", func() {
		product := id.NewProductID()
		for range 50 {
			partID, err := s.gen.Generate(s.ctx, "Test Part", product)
			s.Require().NoError(err)
			s.Regexp(partIDPattern, partID.String())
			s.Equal(product.String()[len(product.String())-2:], partID.String()[3:])
		}
	})

	s.Run("disowned ids start with the disownment code", func() {
		for range 50 {
			partID, err := s.gen.Generate(s.ctx, "Test Part", nil)
			s.Require().NoError(err)
			s.Regexp(partIDPattern, partID.String())
			s.True(len(partID) == 5)
			s.Equal(DefaultDisownmentCode, partID.String()[:2])
		}
	})

	s.Run("product with uppercase suffix", func() {
		partID, err := s.gen.Generate(s.ctx, "Test Part", productRef("PRODUCT-E1"))
		s.Require().NoError(err)
		s.Len(partID.String(), 5)
		s.Equal("E1", partID.String()[3:])
	})

	s.Run("two character product id is enough", func() {
		partID, err := s.gen.Generate(s.ctx, "Test Part", productRef("E1"))
		s.Require().NoError(err)
		s.Equal("E1", partID.String()[3:])
	})
}

func (s *GeneratorSuite) TestSameNameDifferentProducts() {
	gen, err := New(DefaultRuleset(), s.registry, WithSource(sequenceSource("abc")))
	s.Require().NoError(err)

	one, err := gen.Generate(s.ctx, "Test Part", productRef("product-one-a1"))
	s.Require().NoError(err)
	two, err := gen.Generate(s.ctx, "Test Part", productRef("product-two-b2"))
	s.Require().NoError(err)

	s.Equal(id.PartID("abca1"), one)
	s.Equal(id.PartID("abcb2"), two)
	s.NotEqual(one, two)
}

func (s *GeneratorSuite) TestUniquenessWithinScope() {
	s.Run("retries until a free id is found", func() {
		gen, err := New(DefaultRuleset(), s.registry,
			WithSource(sequenceSource("aaa", "aaa", "bbb")), WithMetrics(s.metrics))
		s.Require().NoError(err)
		product := productRef("shared-e1")

		first, err := gen.Generate(s.ctx, "Leg", product)
		s.Require().NoError(err)
		second, err := gen.Generate(s.ctx, "Seat", product)
		s.Require().NoError(err)

		s.Equal(id.PartID("aaae1"), first)
		s.Equal(id.PartID("bbbe1"), second)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.PartIDCollisions.WithLabelValues(metrics.KindAttached)))
	})

	s.Run("ids the part already holds are skipped for products sharing a suffix", func() {
		m := metrics.New(prometheus.NewRegistry())
		gen, err := New(DefaultRuleset(), newFakeRegistry(),
			WithSource(sequenceSource("zzz", "zzz", "yyy")), WithMetrics(m))
		s.Require().NoError(err)

		first, err := gen.Generate(s.ctx, "Leg", productRef("one-e1"))
		s.Require().NoError(err)
		second, err := gen.Generate(s.ctx, "Leg", productRef("two-e1"), first)
		s.Require().NoError(err)

		s.Equal(id.PartID("zzze1"), first)
		s.Equal(id.PartID("yyye1"), second)
		s.NotEqual(first, second)
		s.Equal(1.0, testutil.ToFloat64(m.PartIDCollisions.WithLabelValues(metrics.KindAttached)))
	})

	s.Run("excluded candidates count towards exhaustion", func() {
		rules := DefaultRuleset()
		rules.MaxAttempts = 2
		gen, err := New(rules, newFakeRegistry(), WithSource(sequenceSource("zzz")))
		s.Require().NoError(err)

		_, err = gen.Generate(s.ctx, "Leg", productRef("two-e1"), id.PartID("zzze1"))
		s.True(dErrors.HasCode(err, dErrors.CodeCollisionExhausted))
	})

	s.Run("many disowned ids stay distinct", func() {
		seen := make(map[id.PartID]struct{})
		for i := range 500 {
			partID, err := s.gen.Generate(s.ctx, fmt.Sprintf("part-%d", i), nil)
			s.Require().NoError(err)
			_, dup := seen[partID]
			s.False(dup)
			seen[partID] = struct{}{}
		}
	})
}

func (s *GeneratorSuite) TestCollisionExhausted() {
	rules := DefaultRuleset()
	rules.MaxAttempts = 3
	gen, err := New(rules, s.registry, WithSource(sequenceSource("q1z")), WithMetrics(s.metrics))
	s.Require().NoError(err)

	_, err = gen.Generate(s.ctx, "Leg", nil)
	s.Require().NoError(err)

	_, err = gen.Generate(s.ctx, "Seat", nil)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeCollisionExhausted))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.PartIDCollisions.WithLabelValues(metrics.KindDisowned)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PartIDExhausted.WithLabelValues(metrics.KindDisowned)))
}

func (s *GeneratorSuite) TestInvalidArguments() {
	tests := []struct {
		name   string
		part   string
		parent fmt.Stringer
	}{
		{"empty name", "", nil},
		{"blank name", "   ", productRef("product-e1")},
		{"product id too short", "Test Part", productRef("E")},
		{"empty product id", "Test Part", productRef("")},
		{"non alphanumeric suffix", "Test Part", productRef("product-")},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.gen.Generate(s.ctx, tt.part, tt.parent)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		})
	}
	s.Empty(s.registry.reserved)
}

func (s *GeneratorSuite) TestFailures() {
	s.Run("registry errors surface as internal", func() {
		s.registry.err = errors.New("connection reset")
		defer func() { s.registry.err = nil }()

		_, err := s.gen.Generate(s.ctx, "Test Part", nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("source errors surface as internal", func() {
		gen, err := New(DefaultRuleset(), s.registry, WithSource(func(int) (string, error) {
			return "", errors.New("entropy unavailable")
		}))
		s.Require().NoError(err)
		_, err = gen.Generate(s.ctx, "Test Part", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("non alphanumeric source output is rejected", func() {
		gen, err := New(DefaultRuleset(), s.registry, WithSource(sequenceSource("a-b")))
		s.Require().NoError(err)
		_, err = gen.Generate(s.ctx, "Test Part", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("cancelled context stops generation", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		_, err := s.gen.Generate(ctx, "Test Part", nil)
		s.ErrorIs(err, context.Canceled)
	})
}

func (s *GeneratorSuite) TestMetrics() {
	_, err := s.gen.Generate(s.ctx, "Test Part", nil)
	s.Require().NoError(err)
	_, err = s.gen.Generate(s.ctx, "Test Part", id.NewProductID())
	s.Require().NoError(err)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.PartIDsGenerated.WithLabelValues(metrics.KindDisowned)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PartIDsGenerated.WithLabelValues(metrics.KindAttached)))
}
