package utils

import (
	"strings"
	"unicode"
)

// HasPrefixIgnoreCase checks if string has prefix case-insensitively
func HasPrefixIgnoreCase(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsRepetitive checks if a string is one character repeated 3+ times ("aaa").
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}
	firstChar := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != firstChar {
			return false
		}
	}
	return true
}

// IsValidQuery reports whether a CLI line is worth sending to the engine.
// Queries made only of digits or of one repeated character are rejected.
func IsValidQuery(s string) bool {
	compact := strings.ReplaceAll(s, " ", "")
	if compact == "" {
		return false
	}
	if IsOnlyNumbers(compact) {
		return false
	}
	return !IsRepetitive(compact)
}

// NormalizeQuery lowercases s and collapses every whitespace run to a single
// space, trimming both ends.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
