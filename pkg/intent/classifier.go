// Package intent decides which travel action a query is about.
package intent

import (
	"strings"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/bastiangx/tripserve/pkg/rules"
)

// CodeLookup identifies station and airport codes.
type CodeLookup interface {
	CodeKind(code string) (lookup.CodeKind, bool)
}

// Classification is an accepted intent with the text that decided it.
type Classification struct {
	Intent     model.Intent
	Confidence float64
	Text       string
	Start      int
	End        int
}

// PartialMatch is an unfinished intent phrase such as "book a".
type PartialMatch struct {
	Phrase     string
	Confidence float64
}

// Classifier matches queries against the compiled intent patterns.
type Classifier struct {
	rules *rules.Compiled
	codes CodeLookup
}

// NewClassifier returns a classifier. codes may be nil.
func NewClassifier(r *rules.Compiled, codes CodeLookup) *Classifier {
	return &Classifier{rules: r, codes: codes}
}

// Classify returns the best intent for query. An unfinished phrase such as
// "I want to book a" is never classified. Intents are tried in priority
// order and the first matching pattern of each counts; a later intent only
// wins with a strictly higher confidence. Station and airport codes decide
// the intent when no pattern is accepted.
func (c *Classifier) Classify(query string) (Classification, bool) {
	if strings.TrimSpace(query) == "" {
		return Classification{}, false
	}
	if _, partial := c.Partial(query); partial {
		return Classification{}, false
	}

	var best Classification
	for _, in := range c.rules.Priority() {
		for _, p := range c.rules.Patterns(in) {
			loc := p.Re.FindStringIndex(query)
			if loc == nil {
				continue
			}
			if p.Confidence > best.Confidence {
				best = Classification{
					Intent:     in,
					Confidence: p.Confidence,
					Text:       query[loc[0]:loc[1]],
					Start:      loc[0],
					End:        loc[1],
				}
			}
			break
		}
	}
	if best.Confidence >= c.rules.Threshold() {
		return best, true
	}
	return c.classifyCode(query)
}

func (c *Classifier) classifyCode(query string) (Classification, bool) {
	if c.codes == nil {
		return Classification{}, false
	}
	for _, tok := range utils.Tokenize(query) {
		kind, ok := c.codes.CodeKind(tok.Lower)
		if !ok {
			continue
		}
		in := model.IntentFlight
		if kind == lookup.CodeStation {
			in = model.IntentTrain
		}
		return Classification{
			Intent:     in,
			Confidence: c.rules.CodeConfidence(),
			Text:       tok.Text,
			Start:      tok.Start,
			End:        tok.End,
		}, true
	}
	return Classification{}, false
}

// Partial recognises a query that stops right before naming what to book.
// A query that already contains an intent word is never partial.
func (c *Classifier) Partial(query string) (PartialMatch, bool) {
	toks := utils.Tokenize(query)
	if len(toks) == 0 {
		return PartialMatch{}, false
	}
	for _, t := range toks {
		if c.rules.IsIntentWord(t.Lower) {
			return PartialMatch{}, false
		}
	}

	text := utils.JoinLower(toks)
	pr := c.rules.Partial()
	for _, e := range pr.Endings {
		if text == e || strings.HasSuffix(text, " "+e) {
			return PartialMatch{Phrase: e, Confidence: pr.Confidence}, true
		}
	}
	for _, s := range pr.Starts {
		if text == s || strings.HasPrefix(text, s+" ") {
			return PartialMatch{Phrase: s, Confidence: pr.Confidence}, true
		}
	}
	return PartialMatch{}, false
}
