package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "furniture/pkg/domain-errors"
)

// PartIDLength is the fixed length of every PartID.
const PartIDLength = 5

// ProductID identifies a product. Its string form is the canonical UUID text.
type ProductID uuid.UUID

// NewProductID returns a fresh random ProductID.
func NewProductID() ProductID {
	return ProductID(uuid.New())
}

func (id ProductID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText encodes the id as UUID text so JSON and logs carry the canonical form.
func (id ProductID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ProductID) UnmarshalText(b []byte) error {
	parsed, err := ParseProductID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ProductID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// ParseProductID parses a product identifier at a trust boundary.
// Empty, malformed and nil UUIDs are rejected.
func ParseProductID(s string) (ProductID, error) {
	if strings.TrimSpace(s) == "" {
		return ProductID{}, dErrors.New(dErrors.CodeInvalidArgument, "product id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ProductID{}, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "invalid product id")
	}
	if parsed == uuid.Nil {
		return ProductID{}, dErrors.New(dErrors.CodeInvalidArgument, "product id cannot be nil")
	}
	return ProductID(parsed), nil
}

// PartID is the 5-character alphanumeric identifier assigned to a part within
// one product attachment (or within the disowned namespace).
type PartID string

func (id PartID) String() string {
	return string(id)
}

// ParsePartID validates s as a PartID.
func ParsePartID(s string) (PartID, error) {
	if len(s) != PartIDLength {
		return "", dErrors.Newf(dErrors.CodeInvalidArgument, "part id must be %d characters", PartIDLength)
	}
	if !IsAlphanumeric(s) {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "part id must be alphanumeric")
	}
	return PartID(s), nil
}

// IsAlphanumeric reports whether s is non-empty and drawn only from [A-Za-z0-9].
func IsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
