// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// keptPunct is the punctuation that survives normalization so sentence
// boundaries stay visible to n-gram consumers.
const keptPunct = ".,!?;:()-"

// SanitizeText drops control characters other than tab, newline and carriage
// return, then trims surrounding whitespace. Line structure is preserved for
// section extraction.
func SanitizeText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s))
}

// Normalize prepares text for comparison: NFC composition, every rune outside
// word characters, whitespace and keptPunct replaced by a space, whitespace
// runs collapsed, ends trimmed, lower-cased. Empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case isWordRune(r):
			b.WriteRune(r)
		case strings.ContainsRune(keptPunct, r):
			b.WriteRune(r)
		default:
			// whitespace and everything else
			b.WriteByte(' ')
		}
	}
	// a Caser carries state, so one per call
	return cases.Lower(language.Und).String(strings.Join(strings.Fields(b.String()), " "))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Tokens returns the distinct whitespace tokens of the normalized text in
// first-occurrence order, with leading and trailing punctuation trimmed.
func Tokens(s string) []string {
	fields := strings.Fields(Normalize(s))
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, keptPunct)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// TruncateRunes returns at most n runes of s. n <= 0 disables truncation.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// IsBlank reports whether s holds nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
