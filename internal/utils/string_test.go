package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidQuery(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"book a flight", true},
		{"NDLS to BCT", true},
		{"2 adults", true},
		{"", false},
		{"   ", false},
		{"12345", false},
		{"12 34", false},
		{"aaaa", false},
		{"a a a", false},
		{"aa", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidQuery(tt.input), "Input '%s'", tt.input)
	}
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "flight to delhi", NormalizeQuery("  Flight\tto   DELHI \n"))
	assert.Equal(t, "", NormalizeQuery(" \t "))
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("Mumbai, to  (Delhi)")
	if assert.Len(t, toks, 3) {
		assert.Equal(t, Token{Text: "Mumbai", Lower: "mumbai", Start: 0, End: 6}, toks[0])
		assert.Equal(t, Token{Text: "to", Lower: "to", Start: 8, End: 10}, toks[1])
		assert.Equal(t, Token{Text: "Delhi", Lower: "delhi", Start: 13, End: 18}, toks[2])
	}
	assert.Equal(t, "mumbai to delhi", JoinLower(toks))
	assert.Len(t, TokensBefore(toks, 10), 2)
	assert.Empty(t, Tokenize(" -- "))
}

func TestTokenizeKeepsHyphens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
		desc string
	}{
		{"hotel check-in tomorrow", []string{"hotel", "check-in", "tomorrow"}, "Inner hyphen"},
		{"hotel in Goa check-", []string{"hotel", "in", "goa", "check-"}, "Half typed"},
		{"(check-in),", []string{"check-in"}, "Other punctuation trimmed"},
		{"Goa - Delhi", []string{"goa", "delhi"}, "Lone hyphen dropped"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var got []string
			for _, tok := range Tokenize(tt.in) {
				got = append(got, tok.Lower)
			}
			assert.Equal(t, tt.want, got)
		})
	}
	tok := Tokenize("in Goa check-")[2]
	assert.Equal(t, 7, tok.Start)
	assert.Equal(t, 13, tok.End)
}
