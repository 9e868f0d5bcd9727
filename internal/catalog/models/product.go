package models

import (
	"strings"
	"time"

	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
)

const maxNameLength = 128

// Product is an assembly that can own parts.
//
// Invariants:
//   - ID is a non-nil ProductID, immutable after construction
//   - Name is non-empty and at most 128 characters
type Product struct {
	ID        id.ProductID `json:"id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewProduct(productID id.ProductID, name string, now time.Time) (*Product, error) {
	name, err := normalizeName("product", name)
	if err != nil {
		return nil, err
	}
	if productID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "product id cannot be nil")
	}
	return &Product{
		ID:        productID,
		Name:      name,
		CreatedAt: now,
	}, nil
}

func normalizeName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, kind+" name cannot be empty")
	}
	if len(name) > maxNameLength {
		return "", dErrors.New(dErrors.CodeInvariantViolation, kind+" name must be 128 characters or less")
	}
	return name, nil
}
