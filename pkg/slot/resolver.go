/*
Package slot picks the next piece of information to ask for.

Resolution is a fixed sequence and the first step that answers wins:

 1. a slot keyword typed at the very end of the query ("... to", "check-in")
 2. the first unfilled required slot, in declared order
 3. the first unfilled optional slot whose eligibility holds

When several trailing keywords are candidates the slot declared earliest
wins. A keyword overrides the required order on purpose: "book a flight to"
asks for the destination even though the origin is still missing.
*/
package slot

import (
	"strconv"

	"github.com/bastiangx/tripserve/internal/utils"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/bastiangx/tripserve/pkg/rules"
)

// largeParty is the guest count from which a room count is worth asking.
const largeParty = 3

// Resolver is stateless and safe for concurrent use.
type Resolver struct {
	rules *rules.Compiled
}

// NewResolver returns a resolver over r.
func NewResolver(r *rules.Compiled) *Resolver {
	return &Resolver{rules: r}
}

// Resolve returns the next slot for intent in, or false when nothing is
// left to ask. With no intent the next slot is always the intent itself.
func (r *Resolver) Resolve(in model.Intent, bag *model.Bag, raw string) (model.Slot, bool) {
	if in.IsNone() {
		return model.SlotIntent, true
	}

	if s, ok := r.keywordOverride(in, bag, raw); ok {
		return s, true
	}
	for _, spec := range r.rules.Required(in) {
		if !filled(spec, bag) {
			return spec.Slot, true
		}
	}
	for _, spec := range r.rules.Optional(in) {
		if !filled(spec, bag) && eligible(spec.Eligible, bag) {
			return spec.Slot, true
		}
	}
	return model.SlotNone, false
}

// Keywords returns the slots named by the trailing run of keywords in raw,
// right to left. Two-word keywords are tried before single words.
func (r *Resolver) Keywords(in model.Intent, bag *model.Bag, raw string) []model.Slot {
	toks := utils.Tokenize(raw)
	var out []model.Slot
	for i := len(toks) - 1; i >= 0; {
		if i >= 1 && !covered(bag, toks[i-1]) && !covered(bag, toks[i]) {
			if s, ok := r.rules.KeywordSlot(in, toks[i-1].Lower+" "+toks[i].Lower); ok {
				out = append(out, s)
				i -= 2
				continue
			}
		}
		if covered(bag, toks[i]) {
			break
		}
		s, ok := r.rules.KeywordSlot(in, toks[i].Lower)
		if !ok {
			break
		}
		out = append(out, s)
		i--
	}
	return out
}

func (r *Resolver) keywordOverride(in model.Intent, bag *model.Bag, raw string) (model.Slot, bool) {
	best, bestIdx := model.SlotNone, -1
	for _, s := range r.Keywords(in, bag, raw) {
		idx := r.rules.SlotIndex(in, s)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = s, idx
		}
	}
	return best, bestIdx >= 0
}

// covered reports whether an extracted value spans tok. Trip type markers
// such as "returning" don't count, they double as keywords.
func covered(bag *model.Bag, tok utils.Token) bool {
	for _, k := range bag.Kinds() {
		if k == model.KindTripType {
			continue
		}
		for _, e := range bag.All(k) {
			if tok.Start < e.End && tok.End > e.Start {
				return true
			}
		}
	}
	return false
}

func filled(spec rules.SlotSpec, bag *model.Bag) bool {
	for _, k := range spec.Kinds() {
		if bag.Has(k) {
			return true
		}
	}
	return false
}

func eligible(e rules.Eligibility, bag *model.Bag) bool {
	switch e {
	case rules.EligibleAlways, "":
		return true
	case rules.EligibleRoundTrip:
		return bag.Value(model.KindTripType) == "round"
	case rules.EligibleLargeParty:
		n, err := strconv.Atoi(bag.Value(model.KindGuests))
		return err == nil && n >= largeParty
	default:
		return false
	}
}
