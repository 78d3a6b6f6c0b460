package sim

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalName returns the form under which a coordinate name is stored:
// NFC-normalised with surrounding whitespace removed. Names that differ
// only in Unicode composition refer to the same coordinate.
func CanonicalName(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
