package partid

import (
	id "furniture/pkg/domain"
	dErrors "furniture/pkg/domain-errors"
)

const (
	// DefaultDisownmentCode prefixes ids of parts that have no parent product.
	DefaultDisownmentCode = "XX"
	// DefaultMaxAttempts bounds how many candidates are tried per generation.
	DefaultMaxAttempts = 16
	// SuffixLength is how many trailing characters of the product id a part id carries.
	SuffixLength = 2
)

// Ruleset holds the parameters of part id generation.
//
// Invariants:
//   - Length is id.PartIDLength
//   - DisownmentCode is alphanumeric and leaves room for at least two
//     generated characters
//   - SuffixLength leaves room for at least one generated character
//   - MaxAttempts is positive
type Ruleset struct {
	DisownmentCode string
	Length         int
	SuffixLength   int
	MaxAttempts    int
}

// DefaultRuleset returns the ruleset used when nothing is configured.
func DefaultRuleset() Ruleset {
	return Ruleset{
		DisownmentCode: DefaultDisownmentCode,
		Length:         id.PartIDLength,
		SuffixLength:   SuffixLength,
		MaxAttempts:    DefaultMaxAttempts,
	}
}

// Validate checks the ruleset invariants.
func (r Ruleset) Validate() error {
	if r.Length != id.PartIDLength {
		return dErrors.Newf(dErrors.CodeInvalidArgument, "part id length must be %d", id.PartIDLength)
	}
	if r.SuffixLength < 1 || r.SuffixLength >= r.Length {
		return dErrors.Newf(dErrors.CodeInvalidArgument, "suffix length must be between 1 and %d", r.Length-1)
	}
	if !id.IsAlphanumeric(r.DisownmentCode) {
		return dErrors.New(dErrors.CodeInvalidArgument, "disownment code must be non-empty and alphanumeric")
	}
	if len(r.DisownmentCode) > r.Length-2 {
		return dErrors.Newf(dErrors.CodeInvalidArgument, "disownment code must be at most %d characters", r.Length-2)
	}
	if r.MaxAttempts < 1 {
		return dErrors.New(dErrors.CodeInvalidArgument, "max attempts must be positive")
	}
	return nil
}
