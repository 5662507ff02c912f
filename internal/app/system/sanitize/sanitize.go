// Package sanitize cleans user-supplied strings before they are persisted.
//
// All free text coming from the admin panel goes through Sanitize or
// SanitizeObject: markup is stripped, surrounding whitespace trimmed, and the
// result capped at a maximum length.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/validate"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultMaxLen caps a single sanitized field.
	DefaultMaxLen = 1000
	// DefaultObjectMaxLen caps each string field of a sanitized record.
	DefaultObjectMaxLen = 2000

	// maxStripPasses bounds re-stripping of entity-encoded markup such as
	// "&lt;script&gt;", which only becomes a tag after unescaping. Each
	// pass peels one level of encoding.
	maxStripPasses = 8
)

// strict allows no elements at all; element content of script/style is dropped.
var strict = bluemonday.StrictPolicy()

// StripTags removes anything that looks like a markup tag and returns the
// remaining text unescaped. Input still changing after maxStripPasses is
// returned in its sanitized, escaped form so no unescape is left unchecked.
func StripTags(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		out := html.UnescapeString(strict.Sanitize(s))
		if out == s {
			return s
		}
		s = out
	}
	return strict.Sanitize(s)
}

// Sanitize strips tags, trims whitespace, then truncates to maxLen runes.
// A maxLen <= 0 uses DefaultMaxLen.
func Sanitize(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return truncate(strings.TrimSpace(StripTags(s)), maxLen)
}

// Value sanitizes v if it is a string; any other type yields "".
func Value(v any, maxLen int) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Sanitize(s, maxLen)
}

// SanitizeObject returns a copy of obj with every top-level string field
// sanitized. Non-string values (numbers, bools, nested maps and slices) are
// copied through untouched. A maxLen <= 0 uses DefaultObjectMaxLen.
func SanitizeObject(obj map[string]any, maxLen int) map[string]any {
	if maxLen <= 0 {
		maxLen = DefaultObjectMaxLen
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = Sanitize(s, maxLen)
			continue
		}
		out[k] = v
	}
	return out
}

// EmailValid is a shape check (local@domain.tld), not RFC validation.
func EmailValid(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, " <>") || strings.Count(email, "@") != 1 {
		return false
	}
	domain := email[strings.IndexByte(email, '@')+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return validate.SimpleEmailValid(email)
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}
