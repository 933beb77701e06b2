package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Anything that is not a word character, whitespace or a hyphen
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	// Runs of whitespace and hyphens collapse into a single hyphen
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts a title into the URL-safe slug used as a book's
// secondary key.
// "Dune" -> "dune".
// "The  Lord of the Rings!" -> "the-lord-of-the-rings".
// "Café Society" -> "cafe-society".
func Slugify(s string) string {
	// Decompose accented characters so the base letter survives the ASCII filter
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSeparators.ReplaceAllString(s, "-")

	return strings.Trim(s, "-_")
}
