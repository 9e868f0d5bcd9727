package testutil

import (
	"regexp"
	"strings"
	"testing"
)

var partIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{5}$`)

// AssertAttachedPartID checks that partID is a well-formed id ending with the
// last two characters of productID.
func AssertAttachedPartID(t *testing.T, partID, productID string) {
	t.Helper()
	if !partIDPattern.MatchString(partID) {
		t.Errorf("part id %q is not five alphanumerics", partID)
	}
	if len(productID) < 2 || !strings.HasSuffix(partID, productID[len(productID)-2:]) {
		t.Errorf("part id %q does not end with the suffix of product %q", partID, productID)
	}
}

// AssertDisownedPartID checks that partID is a well-formed id starting with code.
func AssertDisownedPartID(t *testing.T, partID, code string) {
	t.Helper()
	if !partIDPattern.MatchString(partID) {
		t.Errorf("part id %q is not five alphanumerics", partID)
	}
	if !strings.HasPrefix(partID, code) {
		t.Errorf("part id %q does not start with disownment code %q", partID, code)
	}
}
