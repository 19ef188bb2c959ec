package parse

import (
	"strings"
	"unicode"
)

// DeriveName guesses a human-readable display name for a spool from its raw
// QR payload. The payload is usually a URL or short link; the last path
// segment is taken, separators become spaces, and each word is title-cased.
// "fs://spool/abc-123" becomes "Abc 123".
func DeriveName(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	if len(words) == 0 {
		return "Unknown Spool"
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
