package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lower-cases title and folds accents to ASCII. Letters, digits
// and underscores are kept, punctuation and other non-ASCII characters
// are dropped, and each run of spaces and hyphens becomes one hyphen.
// Leading and trailing hyphens and underscores are trimmed.
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		switch {
		case r >= unicode.MaxASCII:
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return strings.Trim(b.String(), "-_")
}
