package monitor

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a raw track title for equality comparison.
// NFKC folds Unicode compatibility variants (fullwidth forms, ligatures)
// so the same track reported by different backends compares equal; case
// is folded and whitespace runs collapse to single spaces. Idempotent,
// empty input yields empty output.
func Normalize(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
