// Package normalize cleans user- and import-supplied text before it is stored.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)

	// Opening tags that mark a bio as HTML rather than plain text or markdown.
	htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)
)

// Slugify converts a string to a URL-safe slug.
// "Amara Okafor" -> "amara-okafor".
// "Chloé Lin" -> "chloe-lin".
// "Food/Travel" -> "food-travel".
func Slugify(s string) string {
	// Decompose accented characters so the base letter survives.
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Text removes NUL and control characters, collapses runs of whitespace to a
// single space, and trims the result.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 || (unicode.IsControl(r) && !unicode.IsSpace(r)) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// PlaceName cleans a country, state, city or niche name. Names typed entirely
// in one case are title-cased; mixed-case names ("McAllen") are kept.
func PlaceName(s string) string {
	s = Text(s)
	if s == "" {
		return ""
	}
	if s == strings.ToLower(s) || s == strings.ToUpper(s) {
		return cases.Title(language.Und).String(s)
	}
	return s
}

// Email lowercases and trims an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Currency returns an upper-case ISO 4217 code.
func Currency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// BioMarkdown converts an HTML bio to markdown. Text without HTML is only
// trimmed, and input the converter rejects is returned trimmed but unchanged.
func BioMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
