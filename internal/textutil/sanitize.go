package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes an uploaded file name safe to keep in the inbox and
// archive metadata. Path separators, colons and asterisks become dashes;
// quotes, wildcards, redirection characters and control runes are dropped.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*':
			return '-'
		case '?', '"', '<', '>', '|':
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}
