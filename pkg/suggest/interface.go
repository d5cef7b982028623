// Package suggest turns a match result into the list shown under the cursor.
package suggest

import (
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/model"
)

// PlaceSource is the part of the place directory the generator reads
type PlaceSource interface {
	// Search returns places starting with prefix, best first
	Search(prefix string, excluding []string) []lookup.Match

	// Correct maps a misspelled name to the place it most likely meant
	Correct(word string) (string, bool)
}

// ISuggester is implemented by anything that can build suggestions
type ISuggester interface {
	Generate(m model.MatchResult) []model.Suggestion
}
