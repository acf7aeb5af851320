package taxonomy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize replaces invalid UTF-8 and applies NFKC so full-width and
// compatibility forms compare equal to their plain counterparts. Case is kept.
func Normalize(s string) string {
	return norm.NFKC.String(strings.ToValidUTF8(s, "\uFFFD"))
}

// Fold normalizes s and lower-cases it. Literal predicates and free text are
// both folded before substring comparison.
func Fold(s string) string {
	return strings.ToLower(Normalize(s))
}
