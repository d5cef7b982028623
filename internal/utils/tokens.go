package utils

import (
	"strings"
	"unicode"
)

// Token is a whitespace-separated word with its byte offsets in the source.
// Leading and trailing punctuation other than hyphens is not part of the
// token, so a half-typed "check-" survives.
type Token struct {
	Text  string
	Lower string
	Start int
	End   int
}

// Tokenize splits s on whitespace, keeping byte offsets into s.
func Tokenize(s string) []Token {
	var toks []Token
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = appendToken(toks, s, start, i)
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = appendToken(toks, s, start, len(s))
	}
	return toks
}

func appendToken(toks []Token, s string, start, end int) []Token {
	word := s[start:end]
	left := strings.TrimLeftFunc(word, isEdgePunct)
	start += len(word) - len(left)
	text := strings.TrimRightFunc(left, isEdgePunct)
	if !strings.ContainsFunc(text, isWordRune) {
		return toks
	}
	return append(toks, Token{
		Text:  text,
		Lower: strings.ToLower(text),
		Start: start,
		End:   start + len(text),
	})
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isEdgePunct(r rune) bool {
	return r != '-' && !isWordRune(r)
}

// JoinLower joins the lowercased text of toks with single spaces.
func JoinLower(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Lower
	}
	return strings.Join(parts, " ")
}

// TokensBefore returns the tokens of s that end at or before offset.
func TokensBefore(toks []Token, offset int) []Token {
	n := 0
	for n < len(toks) && toks[n].End <= offset {
		n++
	}
	return toks[:n]
}
