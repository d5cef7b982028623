package suggest

import (
	"sort"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/bastiangx/tripserve/pkg/rules"
)

const (
	// DefaultLimit caps the selectable suggestions of one response.
	DefaultLimit = 8

	vocabConfidence   = 0.8
	correctedDiscount = 0.9
)

// conflicting lists, per place slot, the slots whose place must not be
// offered again.
var conflicting = map[model.Slot][]model.Kind{
	model.SlotFrom: {model.KindTo},
	model.SlotTo:   {model.KindFrom},
}

// Generator builds suggestions. It is stateless and safe for concurrent use.
type Generator struct {
	rules  *rules.Compiled
	places PlaceSource
	limit  int
}

var _ ISuggester = (*Generator)(nil)

// NewGenerator returns a generator capped at limit selectable entries;
// limit <= 0 means DefaultLimit. places may be nil.
func NewGenerator(r *rules.Compiled, places PlaceSource, limit int) *Generator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Generator{rules: r, places: places, limit: limit}
}

// Limit returns the selectable suggestion cap.
func (g *Generator) Limit() int { return g.limit }

// Generate returns the placeholder for the next slot followed by ranked
// candidates. Without a next slot the list is empty.
func (g *Generator) Generate(m model.MatchResult) []model.Suggestion {
	if m.NextSlot == model.SlotNone {
		return []model.Suggestion{}
	}

	var candidates []model.Suggestion
	if m.NextSlot.IsPlace() {
		candidates = g.placeCandidates(m)
	} else {
		candidates = g.vocabCandidates(m)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > g.limit {
		candidates = candidates[:g.limit]
	}

	out := make([]model.Suggestion, 0, len(candidates)+1)
	out = append(out, model.Suggestion{
		Text:          g.rules.Placeholder(m.NextSlot),
		EntityType:    string(m.NextSlot),
		Confidence:    m.Confidence,
		Selectable:    false,
		IsPlaceholder: true,
	})
	return append(out, candidates...)
}

func (g *Generator) placeCandidates(m model.MatchResult) []model.Suggestion {
	if g.places == nil {
		return nil
	}
	var excluding []string
	for _, k := range conflicting[m.NextSlot] {
		if v := m.Entities.Value(k); v != "" {
			excluding = append(excluding, v)
		}
	}
	// with nothing typed past them, places already in the query are not
	// offered again
	if m.Fragment == "" {
		for _, e := range m.Entities.All(model.KindCities) {
			excluding = append(excluding, e.Value)
		}
	}

	discount := 1.0
	matches := g.places.Search(m.Fragment, excluding)
	if len(matches) == 0 && m.Fragment != "" {
		if fixed, ok := g.places.Correct(m.Fragment); ok {
			matches = g.places.Search(fixed, excluding)
			discount = correctedDiscount
		}
	}
	if len(matches) == 0 {
		matches = g.places.Search("", excluding)
		discount = 1.0
	}

	out := make([]model.Suggestion, 0, min(len(matches), g.limit))
	for _, p := range matches {
		if len(out) == g.limit {
			break
		}
		out = append(out, model.Suggestion{
			Text:       p.Name,
			EntityType: string(m.NextSlot),
			Confidence: p.Confidence * discount,
			Selectable: true,
		})
	}
	return out
}

func (g *Generator) vocabCandidates(m model.MatchResult) []model.Suggestion {
	vocab := g.rules.Vocabulary(m.Intent, m.NextSlot)
	if m.Fragment != "" {
		var hits []string
		for _, v := range vocab {
			if utils.HasPrefixIgnoreCase(v, m.Fragment) {
				hits = append(hits, v)
			}
		}
		if len(hits) > 0 {
			vocab = hits
		}
	}

	out := make([]model.Suggestion, 0, len(vocab))
	for _, v := range vocab {
		out = append(out, model.Suggestion{
			Text:       v,
			EntityType: string(m.NextSlot),
			Confidence: vocabConfidence,
			Selectable: true,
		})
	}
	return out
}
