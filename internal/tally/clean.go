package tally

import (
	"regexp"
	"strings"
)

var (
	// Control bytes Tally likes to leave in its exports. Tab, newline and
	// carriage return are deliberately not matched.
	controlBytes = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// Namespace declarations, prefixed and default.
	nsPrefixDecl  = regexp.MustCompile(`xmlns:[^=\s]+="[^"]*"`)
	nsDefaultDecl = regexp.MustCompile(`xmlns="[^"]*"`)

	// Namespace prefixes on element tags. Only tags are matched so that
	// text content like "http://example.com" stays untouched.
	tagPrefix = regexp.MustCompile(`(</?)[A-Za-z][A-Za-z0-9._-]*:`)
)

// Clean repairs the known defects in Tally XML exports so that the result can
// be handed to an XML decoder: NUL and other control bytes are removed, bare
// ampersands are escaped, and namespace declarations and element tag prefixes
// are stripped.
//
// Cleaning is idempotent: ampersands that are already part of an entity
// reference are left alone.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = controlBytes.ReplaceAllString(text, "")
	text = escapeBareAmpersands(text)
	text = nsPrefixDecl.ReplaceAllString(text, "")
	text = tagPrefix.ReplaceAllString(text, "$1")
	text = nsDefaultDecl.ReplaceAllString(text, "")

	return text
}

// escapeBareAmpersands replaces every "&" that does not start a recognized
// entity reference with "&amp;".
func escapeBareAmpersands(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			b.WriteByte(s[i])
			continue
		}

		if n := entityLen(s[i:]); n > 0 {
			b.WriteString(s[i : i+n])
			i += n - 1
			continue
		}

		b.WriteString("&amp;")
	}

	return b.String()
}

// entityLen returns the length of the entity reference at the start of s,
// including the leading "&" and trailing ";", or 0 if there is none. s always
// starts with "&".
func entityLen(s string) int {
	end := strings.IndexByte(s, ';')

	// Entity references are short, a ";" further away belongs to something else
	if end < 2 || end > 10 {
		return 0
	}

	body := s[1:end]
	switch body {
	case "amp", "lt", "gt", "apos", "quot":
		return end + 1
	}

	// Character references: &#38; and &#x26;
	if body[0] != '#' {
		return 0
	}

	digits := body[1:]
	hex := false
	if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
		hex = true
		digits = digits[1:]
	}

	if len(digits) == 0 {
		return 0
	}

	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case hex && (r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'):
		default:
			return 0
		}
	}

	return end + 1
}
