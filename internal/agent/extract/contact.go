// Package extract pulls structured contact fields out of free-form text.
// Everything here is a pure function of its input so the collection flow can
// be tested without any model call.
package extract

import (
	"regexp"
	"strings"
)

// Pattern grammar:
//   - email: RFC-ish local@domain with an alphabetic TLD of length >= 2.
//   - phone: optional leading +, then digits tolerant of separators
//     (space, dash, dot, parens); at least 7 digits total after stripping.
//
// Precedence is first match wins; callers scan turns oldest to newest.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-\s().]{5,}[0-9]`)
	phoneStrip   = regexp.MustCompile(`[^0-9]`)
)

const minPhoneDigits = 7

// placeholders are sentinel values that must never be treated as collected
// contact data. Matching is case-insensitive on the trimmed value.
var placeholders = map[string]bool{
	"":                    true,
	"null":                true,
	"none":                true,
	"n/a":                 true,
	"not provided":        true,
	"unknown":             true,
	"string":              true,
	"user@example.com":    true,
	"example@example.com": true,
}

// IsPlaceholder reports whether v is a sentinel rather than real contact data.
func IsPlaceholder(v string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(v))]
}

// Email returns the first email-shaped, non-placeholder token in text.
func Email(text string) (string, bool) {
	for _, match := range emailPattern.FindAllString(text, -1) {
		if !IsPlaceholder(match) {
			return match, true
		}
	}
	return "", false
}

// Phone returns the first phone-shaped token in text, normalized to digits
// with an optional leading plus (separators stripped).
func Phone(text string) (string, bool) {
	for _, match := range phonePattern.FindAllString(text, -1) {
		normalized := NormalizePhone(match)
		digits := strings.TrimPrefix(normalized, "+")
		if len(digits) < minPhoneDigits {
			continue
		}
		if !IsPlaceholder(normalized) {
			return normalized, true
		}
	}
	return "", false
}

// NormalizePhone strips separators, keeping only digits and a leading plus.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	plus := strings.HasPrefix(raw, "+")
	digits := phoneStrip.ReplaceAllString(raw, "")
	if plus {
		return "+" + digits
	}
	return digits
}

// Sanitize treats placeholder values as absent so sentinel inputs never leak
// into the collected contact fields.
func Sanitize(v string) string {
	if IsPlaceholder(v) {
		return ""
	}
	return strings.TrimSpace(v)
}
