package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds slugs in runes.
const MaxSlugLength = 60

// Slugify lowercases value, folds accents to ASCII and joins the remaining
// ASCII letter and digit runs with single dashes. Input with no ASCII
// letters or digits yields "".
func Slugify(value string) string {
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, value)
	if err != nil {
		folded = value
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	pendingDash := false
	truncated := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			dash := pendingDash && b.Len() > 0
			need := 1
			if dash {
				need++
			}
			if b.Len()+need > MaxSlugLength {
				truncated = true
				break
			}
			if dash {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	slug := b.String()
	// Cut back to the last whole word when the limit fell inside one.
	if truncated && !pendingDash {
		if i := strings.LastIndexByte(slug, '-'); i > 0 {
			slug = slug[:i]
		}
	}
	return strings.Trim(slug, "-")
}

// TitleCase capitalizes each word, e.g. for status labels.
func TitleCase(value string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(value, "_", " "))
}

// ClipRunes returns at most limit runes of value. A non-positive limit
// returns value unchanged.
func ClipRunes(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	count := 0
	for i := range value {
		if count == limit {
			return value[:i]
		}
		count++
	}
	return value
}
