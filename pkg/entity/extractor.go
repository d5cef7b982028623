/*
Package entity pulls structured values out of a travel query.

Places are found first: runs of up to four words are resolved against the
place directory, longest run first, stopping at keywords. Every place lands
in the cities list and is then bound to a role (from, to or city) by the word
in front of it or by its position. The entity rules run next in declaration
order; each match claims its span so later rules can't reuse the same text.
*/
package entity

import (
	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/bastiangx/tripserve/pkg/rules"
)

const (
	maxPlaceWords   = 4
	maxFragment     = 2
	nameConfidence  = 0.95
	aliasConfidence = 0.90
)

// PlaceResolver resolves a phrase to a canonical place.
type PlaceResolver interface {
	Resolve(phrase string) (lookup.Resolution, bool)
}

// Extractor is stateless and safe for concurrent use.
type Extractor struct {
	rules  *rules.Compiled
	places PlaceResolver
}

// NewExtractor returns an extractor. With a nil resolver no places are found.
func NewExtractor(r *rules.Compiled, places PlaceResolver) *Extractor {
	return &Extractor{rules: r, places: places}
}

type span struct{ start, end int }

type claims []span

func (c claims) overlaps(start, end int) bool {
	for _, s := range c {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

type placeHit struct {
	name       string
	confidence float64
	first      int // token index
	start, end int
}

// Extract returns every entity found in query under intent in.
func (x *Extractor) Extract(query string, in model.Intent) *model.Bag {
	bag := model.NewBag()
	toks := utils.Tokenize(query)
	var claimed claims

	hits := x.findPlaces(query, toks)
	for _, h := range hits {
		bag.Set(model.Entity{Kind: model.KindCities, Value: h.name, Start: h.start, End: h.end, Confidence: h.confidence})
		claimed = append(claimed, span{h.start, h.end})
	}
	x.bindPlaces(in, toks, hits, bag)

	for _, r := range x.rules.EntityRules() {
		if !r.Applies(in) {
			continue
		}
		if r.OnlyIfUnset && bag.Has(r.Kind) {
			continue
		}
		for _, loc := range r.Re.FindAllStringSubmatchIndex(query, -1) {
			if claimed.overlaps(loc[0], loc[1]) {
				continue
			}
			kind := r.Kind
			if kind == model.KindDate {
				kind = x.routeDate(in, toks, loc[0], bag)
			}
			bag.Set(model.Entity{
				Kind:       kind,
				Value:      r.Derive(query, loc),
				Start:      loc[0],
				End:        loc[1],
				Confidence: r.Confidence,
			})
			claimed = append(claimed, span{loc[0], loc[1]})
			if r.OnlyIfUnset {
				break
			}
		}
	}
	return bag
}

func (x *Extractor) findPlaces(query string, toks []utils.Token) []placeHit {
	if x.places == nil {
		return nil
	}
	var hits []placeHit
	for i := 0; i < len(toks); {
		if x.rules.IsBoundary(toks[i].Lower) || utils.IsOnlyNumbers(toks[i].Lower) {
			i++
			continue
		}
		last := -1
		var best lookup.Resolution
		for j := i; j < len(toks) && j < i+maxPlaceWords; j++ {
			if j > i && x.rules.IsBoundary(toks[j].Lower) {
				break
			}
			if r, ok := x.places.Resolve(query[toks[i].Start:toks[j].End]); ok {
				best, last = r, j
			}
		}
		if last < 0 {
			i++
			continue
		}
		conf := nameConfidence
		if best.Alias {
			conf = aliasConfidence
		}
		hits = append(hits, placeHit{
			name:       best.Name,
			confidence: conf,
			first:      i,
			start:      toks[i].Start,
			end:        toks[last].End,
		})
		i = last + 1
	}
	return hits
}

// roleSlot maps the role a preceding word gives a place onto the slot kind
// used by intent in.
func roleSlot(in model.Intent, role model.Kind) model.Kind {
	switch in {
	case model.IntentHotel:
		return model.KindCity
	case model.IntentHoliday:
		if role == model.KindFrom {
			return model.KindFrom
		}
		return model.KindTo
	default:
		if role == model.KindCity {
			return ""
		}
		return role
	}
}

func positionalOrder(in model.Intent) []model.Kind {
	switch in {
	case model.IntentHotel:
		return []model.Kind{model.KindCity}
	case model.IntentHoliday:
		return []model.Kind{model.KindTo, model.KindFrom}
	default:
		return []model.Kind{model.KindFrom, model.KindTo}
	}
}

func (x *Extractor) bindPlaces(in model.Intent, toks []utils.Token, hits []placeHit, bag *model.Bag) {
	unbound := make([]placeHit, 0, len(hits))
	for _, h := range hits {
		var kind model.Kind
		if h.first > 0 {
			if role, ok := x.rules.PlaceRole(toks[h.first-1].Lower); ok {
				kind = roleSlot(in, role)
			}
		}
		if kind == "" {
			unbound = append(unbound, h)
			continue
		}
		if !sameAsOtherEnd(bag, kind, h.name) {
			bag.Set(placeEntity(kind, h))
		}
	}
	for _, h := range unbound {
		for _, kind := range positionalOrder(in) {
			if !bag.Has(kind) {
				if !sameAsOtherEnd(bag, kind, h.name) {
					bag.Set(placeEntity(kind, h))
				}
				break
			}
		}
	}
}

// sameAsOtherEnd reports whether binding name to kind would make a trip
// start and end at the same place. Such a place stays in cities only.
func sameAsOtherEnd(bag *model.Bag, kind model.Kind, name string) bool {
	var other model.Kind
	switch kind {
	case model.KindFrom:
		other = model.KindTo
	case model.KindTo:
		other = model.KindFrom
	default:
		return false
	}
	return bag.Value(other) == name
}

func placeEntity(kind model.Kind, h placeHit) model.Entity {
	return model.Entity{Kind: kind, Value: h.name, Start: h.start, End: h.end, Confidence: h.confidence}
}

// precedingSlot looks up the one or two words right before offset as a slot
// keyword of intent in.
func (x *Extractor) precedingSlot(in model.Intent, toks []utils.Token, offset int) (model.Slot, bool) {
	before := utils.TokensBefore(toks, offset)
	n := len(before)
	if n >= 2 {
		if s, ok := x.rules.KeywordSlot(in, utils.JoinLower(before[n-2:])); ok {
			return s, true
		}
	}
	if n >= 1 {
		return x.rules.KeywordSlot(in, before[n-1].Lower)
	}
	return model.SlotNone, false
}

// routeDate decides which date slot a date expression fills.
func (x *Extractor) routeDate(in model.Intent, toks []utils.Token, offset int, bag *model.Bag) model.Kind {
	kw, hasKW := x.precedingSlot(in, toks, offset)
	switch {
	case x.rules.HasSlot(in, model.SlotCheckin):
		if hasKW && (kw == model.SlotCheckin || kw == model.SlotCheckout) {
			return kw.Kind()
		}
		if bag.Has(model.KindCheckin) {
			return model.KindCheckout
		}
		return model.KindCheckin
	case x.rules.HasSlot(in, model.SlotReturn):
		if hasKW && kw == model.SlotReturn {
			return model.KindReturn
		}
		if bag.Has(model.KindDate) {
			return model.KindReturn
		}
	}
	return model.KindDate
}

// Fragment returns the trailing words of query that nothing recognised,
// lowercased. It is the text the user is most likely still typing.
func (x *Extractor) Fragment(query string, bag *model.Bag) string {
	toks := utils.Tokenize(query)
	first := len(toks)
	for i := len(toks) - 1; i >= 0 && len(toks)-i <= maxFragment; i-- {
		t := toks[i]
		if x.rules.IsBoundary(t.Lower) || utils.IsOnlyNumbers(t.Lower) || bag.Covers(t.Start, t.End) {
			break
		}
		first = i
	}
	if first == len(toks) {
		return ""
	}
	return utils.NormalizeQuery(query[toks[first].Start:toks[len(toks)-1].End])
}
