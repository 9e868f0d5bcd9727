package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
)

func TestNewProduct(t *testing.T) {
	now := time.Now()

	t.Run("trims and keeps the name", func(t *testing.T) {
		p, err := NewProduct(id.NewProductID(), "  Product One ", now)
		require.NoError(t, err)
		assert.Equal(t, "Product One", p.Name)
		assert.Equal(t, now, p.CreatedAt)
	})

	t.Run("rejects empty and oversized names", func(t *testing.T) {
		_, err := NewProduct(id.NewProductID(), " ", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewProduct(id.NewProductID(), strings.Repeat("a", 129), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects nil id", func(t *testing.T) {
		_, err := NewProduct(id.ProductID{}, "Product", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestPart_Identity(t *testing.T) {
	now := time.Now()
	productOne := id.NewProductID()
	productTwo := id.NewProductID()

	t.Run("disowned part exposes its disowned id", func(t *testing.T) {
		p, err := NewDisownedPart("Test Part", "XXab1", now)
		require.NoError(t, err)
		assert.True(t, p.IsDisowned())
		assert.Equal(t, id.PartID("XXab1"), p.ID())
		_, ok := p.IDFor(productOne)
		assert.False(t, ok)
	})

	t.Run("first attachment becomes the primary id", func(t *testing.T) {
		p, err := NewDisownedPart("Test Part", "XXab1", now)
		require.NoError(t, err)
		require.NoError(t, p.Attach(Attachment{ProductID: productOne, PartID: "abcE1", AttachedAt: now}))

		assert.False(t, p.IsDisowned())
		assert.Equal(t, id.PartID("abcE1"), p.ID())
		assert.Equal(t, id.PartID("XXab1"), p.DisownedID)
	})

	t.Run("each product keeps its own id", func(t *testing.T) {
		p, err := NewAttachedPart("Test Part", []Attachment{
			{ProductID: productOne, PartID: "abcE1"},
			{ProductID: productTwo, PartID: "xyzF2"},
		}, now)
		require.NoError(t, err)

		one, ok := p.IDFor(productOne)
		require.True(t, ok)
		two, ok := p.IDFor(productTwo)
		require.True(t, ok)
		assert.NotEqual(t, one, two)

		view, ok := p.ViewFor(productTwo)
		require.True(t, ok)
		assert.Equal(t, &PartView{Name: "Test Part", ID: "xyzF2", ProductID: productTwo}, view)
	})

	t.Run("attaching twice to one product is rejected", func(t *testing.T) {
		_, err := NewAttachedPart("Test Part", []Attachment{
			{ProductID: productOne, PartID: "abcE1"},
			{ProductID: productOne, PartID: "defE1"},
		}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("constructors enforce their invariants", func(t *testing.T) {
		_, err := NewDisownedPart("Test Part", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewAttachedPart("Test Part", nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewDisownedPart("", "XXab1", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("a part never holds the same id twice", func(t *testing.T) {
		_, err := NewAttachedPart("Test Part", []Attachment{
			{ProductID: productOne, PartID: "abcE1"},
			{ProductID: productTwo, PartID: "abcE1"},
		}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		p, err := NewDisownedPart("Test Part", "XXab1", now)
		require.NoError(t, err)
		err = p.Attach(Attachment{ProductID: productOne, PartID: "XXab1"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Equal(t, []id.PartID{"XXab1"}, p.IDs())
	})

	t.Run("clone does not share attachments", func(t *testing.T) {
		p, err := NewAttachedPart("Test Part", []Attachment{{ProductID: productOne, PartID: "abcE1"}}, now)
		require.NoError(t, err)
		c := p.Clone()
		require.NoError(t, c.Attach(Attachment{ProductID: productTwo, PartID: "xyzF2"}))
		assert.Len(t, p.Attachments, 1)
		assert.Len(t, c.Attachments, 2)
	})
}

func TestParseStorageStrategy(t *testing.T) {
	for in, want := range map[string]StorageStrategy{
		"memory":    StorageInMemory,
		"InMemory":  StorageInMemory,
		"in-memory": StorageInMemory,
		" sqlite ":  StorageSQLite,
		"postgres":  StoragePostgres,
		"REDIS":     StorageRedis,
	} {
		got, err := ParseStorageStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseStorageStrategy("mongo")
	assert.Error(t, err)
}
