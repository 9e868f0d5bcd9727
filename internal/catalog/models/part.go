package models

import (
	"slices"
	"time"

	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
)

// Part is a component belonging to zero, one or many products.
//
// Identity is per (part, product) pairing: each attachment carries its own
// PartID, so a part attached to two products has two different ids. A part
// created without any product carries a DisownedID instead.
//
// Invariants:
//   - Name is non-empty, at most 128 characters, and unique in the catalog
//   - A part has a DisownedID or at least one attachment
//   - Each product appears at most once in Attachments
//   - No two of the part's ids are equal
//   - Assigned ids never change
type Part struct {
	Name        string       `json:"name"`
	DisownedID  id.PartID    `json:"disowned_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Attachment binds a part to a product under the id generated for that pair.
type Attachment struct {
	ProductID  id.ProductID `json:"product_id"`
	PartID     id.PartID    `json:"part_id"`
	AttachedAt time.Time    `json:"attached_at"`
}

// PartView is a part as seen from one product.
type PartView struct {
	Name      string       `json:"name"`
	ID        id.PartID    `json:"id"`
	ProductID id.ProductID `json:"product_id"`
}

// NewDisownedPart constructs a part that has no parent product.
func NewDisownedPart(name string, partID id.PartID, now time.Time) (*Part, error) {
	name, err := normalizeName("part", name)
	if err != nil {
		return nil, err
	}
	if partID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "disowned part needs an id")
	}
	return &Part{Name: name, DisownedID: partID, CreatedAt: now}, nil
}

// NewAttachedPart constructs a part owned by the given attachments.
func NewAttachedPart(name string, attachments []Attachment, now time.Time) (*Part, error) {
	name, err := normalizeName("part", name)
	if err != nil {
		return nil, err
	}
	if len(attachments) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "attached part needs at least one attachment")
	}
	p := &Part{Name: name, CreatedAt: now}
	for _, a := range attachments {
		if err := p.Attach(a); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ValidatePartName applies the part name rules without constructing a part.
func ValidatePartName(name string) (string, error) {
	return normalizeName("part", name)
}

// ID returns the part's primary id: the id of its first attachment, or its
// disowned id when it has none.
func (p *Part) ID() id.PartID {
	if len(p.Attachments) > 0 {
		return p.Attachments[0].PartID
	}
	return p.DisownedID
}

// IDFor returns the id assigned to the part for productID.
func (p *Part) IDFor(productID id.ProductID) (id.PartID, bool) {
	if a, ok := p.AttachmentFor(productID); ok {
		return a.PartID, true
	}
	return "", false
}

// IDs returns every id the part holds: its disowned id, if any, followed by
// its attachment ids.
func (p *Part) IDs() []id.PartID {
	ids := make([]id.PartID, 0, len(p.Attachments)+1)
	if p.DisownedID != "" {
		ids = append(ids, p.DisownedID)
	}
	for _, a := range p.Attachments {
		ids = append(ids, a.PartID)
	}
	return ids
}

func (p *Part) AttachmentFor(productID id.ProductID) (Attachment, bool) {
	for _, a := range p.Attachments {
		if a.ProductID == productID {
			return a, true
		}
	}
	return Attachment{}, false
}

func (p *Part) IsDisowned() bool {
	return len(p.Attachments) == 0
}

// Attach records a new attachment. Re-attaching to the same product is an
// invariant violation; callers check AttachmentFor first.
func (p *Part) Attach(a Attachment) error {
	if a.PartID == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "attachment needs a part id")
	}
	if _, ok := p.AttachmentFor(a.ProductID); ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "part is already attached to product")
	}
	if slices.Contains(p.IDs(), a.PartID) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "part already holds id %s", a.PartID)
	}
	p.Attachments = append(p.Attachments, a)
	return nil
}

// ViewFor returns the part as seen from productID.
func (p *Part) ViewFor(productID id.ProductID) (*PartView, bool) {
	partID, ok := p.IDFor(productID)
	if !ok {
		return nil, false
	}
	return &PartView{Name: p.Name, ID: partID, ProductID: productID}, true
}

// Clone returns a deep copy so stores never share attachment slices.
func (p *Part) Clone() *Part {
	c := *p
	c.Attachments = append([]Attachment(nil), p.Attachments...)
	return &c
}
