// Package xmltext sanitizes arbitrary byte slices into text that is legal
// inside an XML 1.0 document: valid UTF-8, restricted to the XML 1.0 legal
// code point ranges.
package xmltext

import (
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// legal reports whether r is in the XML 1.0 Char production:
// #x9 | #xA | #xD | [#x20-#xD7FF] | [#xE000-#xFFFD] | [#x10000-#x10FFFF]
func legal(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// sanitizer removes any rune outside the XML 1.0 legal set.
var sanitizer = runes.Remove(runes.Predicate(func(r rune) bool { return !legal(r) }))

// Sanitize returns s with every illegal-for-XML code point removed. If s is
// not valid UTF-8, its invalid byte sequences are first dropped rather than
// replaced with U+FFFD, so the result never introduces characters that were
// not present in the input.
func Sanitize(s string) string {
	if utf8.ValidString(s) {
		out, _, err := transform.String(sanitizer, s)
		if err != nil {
			return ""
		}
		return out
	}
	return sanitizeInvalidUTF8(s)
}

// SanitizeBytes is the []byte-oriented equivalent of Sanitize, used by
// streaming readers that hold cell text as raw decoder output.
func SanitizeBytes(b []byte) string {
	return Sanitize(string(b))
}

func sanitizeInvalidUTF8(s string) string {
	out, _, err := transform.String(sanitizer, dropInvalidRunes(s))
	if err != nil {
		return ""
	}
	return out
}

// dropInvalidRunes walks s rune-by-rune, skipping any byte sequence that
// does not decode cleanly.
func dropInvalidRunes(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			i++
			continue
		}
		buf = append(buf, s[i:i+size]...)
		i += size
	}
	return string(buf)
}
