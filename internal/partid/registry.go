package partid

import (
	"context"

	id "furniture/pkg/domain"
)

// Scope is the namespace a part id must be unique within.
type Scope string

// Disowned is the scope of parts that have no parent product.
const Disowned Scope = "disowned"

// ProductScope returns the scope of parts attached to the given product.
func ProductScope(productID string) Scope {
	return Scope("product:" + productID)
}

// Registry reserves part ids. Reserve must be atomic: exactly one caller wins
// a given (scope, id) pair, every other caller gets sentinel.ErrConflict.
type Registry interface {
	Reserve(ctx context.Context, scope Scope, partID id.PartID) error
}
