package partid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "furniture/pkg/domain-errors"
)

func TestRuleset_Validate(t *testing.T) {
	t.Run("default ruleset is valid", func(t *testing.T) {
		require.NoError(t, DefaultRuleset().Validate())
	})

	tests := []struct {
		name   string
		mutate func(r *Ruleset)
	}{
		{"empty disownment code", func(r *Ruleset) { r.DisownmentCode = "" }},
		{"non alphanumeric disownment code", func(r *Ruleset) { r.DisownmentCode = "X-" }},
		{"disownment code too long", func(r *Ruleset) { r.DisownmentCode = "XXXX" }},
		{"wrong length", func(r *Ruleset) { r.Length = 6 }},
		{"suffix fills the id", func(r *Ruleset) { r.SuffixLength = 5 }},
		{"no suffix", func(r *Ruleset) { r.SuffixLength = 0 }},
		{"no attempts", func(r *Ruleset) { r.MaxAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRuleset()
			tt.mutate(&rules)
			err := rules.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		})
	}

	t.Run("three character code is allowed", func(t *testing.T) {
		rules := DefaultRuleset()
		rules.DisownmentCode = "DIS"
		assert.NoError(t, rules.Validate())
	})
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	rules := DefaultRuleset()
	rules.MaxAttempts = -1
	_, err := New(rules, newFakeRegistry())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))

	_, err = New(DefaultRuleset(), nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
}

func TestCryptoSource(t *testing.T) {
	for _, n := range []int{0, 1, 3, 64} {
		s, err := CryptoSource(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		for i := 0; i < len(s); i++ {
			assert.Contains(t, Alphabet, string(s[i]))
		}
	}
}
