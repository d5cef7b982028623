package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bastiangx/tripserve/pkg/model"
)

var numberWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
}

// ErrInvalidRules wraps every validation failure reported by Compile.
var ErrInvalidRules = errors.New("invalid rules")

// CompiledPattern is a ready intent pattern.
type CompiledPattern struct {
	Re         *regexp.Regexp
	Confidence float64
}

// CompiledRule is a ready entity rule.
type CompiledRule struct {
	EntityRule
	Re      *regexp.Regexp
	intents map[model.Intent]bool
}

// Applies reports whether the rule runs for intent in.
func (r *CompiledRule) Applies(in model.Intent) bool {
	if len(r.intents) == 0 {
		return true
	}
	if in.IsNone() {
		in = model.IntentNone
	}
	return r.intents[in]
}

// Derive returns the canonical value for the submatch indices loc.
func (r *CompiledRule) Derive(src string, loc []int) string {
	if r.Value != "" && !strings.Contains(r.Value, "$") {
		return r.Value
	}
	var out string
	if r.Value == "" {
		out = normalizePhrase(src[loc[0]:loc[1]])
	} else {
		out = normalizePhrase(string(r.Re.ExpandString(nil, r.Value, src, loc)))
	}
	if r.Transform == "count" {
		if n, ok := numberWords[out]; ok {
			out = n
		}
		out = strings.TrimLeft(out, "0")
		if out == "" {
			out = "0"
		}
	}
	return out
}

// Compiled is a validated rule set with every expression built.
// It is read-only and safe for concurrent use.
type Compiled struct {
	src         *Rules
	patterns    map[model.Intent][]CompiledPattern
	entities    []*CompiledRule
	keywords    map[model.Intent]map[string]model.Slot
	order       map[model.Intent]map[model.Slot]int
	boundary    map[string]struct{}
	intentWords map[string]struct{}
}

func compileExpr(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)` + expr)
}

// Compile validates r and builds its expressions and indexes.
func (r *Rules) Compile() (*Compiled, error) {
	if r.Threshold <= 0 || r.Threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %.2f out of range", ErrInvalidRules, r.Threshold)
	}
	if len(r.Priority) == 0 {
		return nil, fmt.Errorf("%w: empty intent priority", ErrInvalidRules)
	}

	c := &Compiled{
		src:         r,
		patterns:    make(map[model.Intent][]CompiledPattern),
		keywords:    make(map[model.Intent]map[string]model.Slot),
		order:       make(map[model.Intent]map[model.Slot]int),
		boundary:    make(map[string]struct{}),
		intentWords: make(map[string]struct{}),
	}

	for _, in := range r.Priority {
		ir, ok := r.Intents[in]
		if !ok || ir == nil {
			return nil, fmt.Errorf("%w: intent %q has no rules", ErrInvalidRules, in)
		}
		for i, p := range ir.Patterns {
			if p.Confidence < 0 || p.Confidence > 1 {
				return nil, fmt.Errorf("%w: %s pattern %d confidence %.2f", ErrInvalidRules, in, i, p.Confidence)
			}
			re, err := compileExpr(p.Expr)
			if err != nil {
				return nil, fmt.Errorf("%w: %s pattern %d: %v", ErrInvalidRules, in, i, err)
			}
			c.patterns[in] = append(c.patterns[in], CompiledPattern{Re: re, Confidence: p.Confidence})
		}

		order := make(map[model.Slot]int)
		for _, spec := range append(append([]SlotSpec{}, ir.Required...), ir.Optional...) {
			if _, dup := order[spec.Slot]; dup {
				return nil, fmt.Errorf("%w: %s declares slot %q twice", ErrInvalidRules, in, spec.Slot)
			}
			order[spec.Slot] = len(order)
		}
		c.order[in] = order

		kw := make(map[string]model.Slot)
		for slot := range ir.Keywords {
			if _, ok := order[slot]; !ok {
				return nil, fmt.Errorf("%w: %s keyword slot %q is not a slot of the intent", ErrInvalidRules, in, slot)
			}
		}
		for _, spec := range append(append([]SlotSpec{}, ir.Required...), ir.Optional...) {
			for _, phrase := range ir.Keywords[spec.Slot] {
				key := normalizePhrase(phrase)
				if _, taken := kw[key]; !taken {
					kw[key] = spec.Slot
				}
				for _, w := range strings.Fields(key) {
					c.boundary[w] = struct{}{}
				}
			}
		}
		c.keywords[in] = kw
	}

	// airlines go first so that longer names claim before shorter ones
	airlines := append([]string{}, r.Airlines...)
	sort.SliceStable(airlines, func(i, j int) bool { return len(airlines[i]) > len(airlines[j]) })
	for _, name := range airlines {
		words := strings.Fields(name)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		rule := EntityRule{
			Kind:       model.KindAirline,
			Expr:       `\b` + strings.Join(words, `\s+`) + `\b`,
			Value:      name,
			Confidence: 0.95,
			Intents:    []model.Intent{model.IntentFlight, model.IntentNone},
		}
		cr, err := compileRule(rule)
		if err != nil {
			return nil, err
		}
		c.entities = append(c.entities, cr)
	}
	for _, rule := range r.Entities {
		cr, err := compileRule(rule)
		if err != nil {
			return nil, err
		}
		c.entities = append(c.entities, cr)
	}

	for _, w := range r.Stopwords {
		c.boundary[strings.ToLower(w)] = struct{}{}
	}
	for w := range r.PlaceRoles {
		c.boundary[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range r.Partial.IntentWords {
		c.intentWords[strings.ToLower(w)] = struct{}{}
		c.boundary[strings.ToLower(w)] = struct{}{}
	}
	return c, nil
}

func compileRule(rule EntityRule) (*CompiledRule, error) {
	if rule.Kind == "" {
		return nil, fmt.Errorf("%w: entity rule %q has no kind", ErrInvalidRules, rule.Expr)
	}
	re, err := compileExpr(rule.Expr)
	if err != nil {
		return nil, fmt.Errorf("%w: entity %s: %v", ErrInvalidRules, rule.Kind, err)
	}
	cr := &CompiledRule{EntityRule: rule, Re: re}
	if len(rule.Intents) > 0 {
		cr.intents = make(map[model.Intent]bool, len(rule.Intents))
		for _, in := range rule.Intents {
			cr.intents[in] = true
		}
	}
	return cr, nil
}

// MustDefault compiles the built-in tables and panics if they are broken.
func MustDefault() *Compiled {
	c, err := Default().Compile()
	if err != nil {
		panic(err)
	}
	return c
}

func normalizePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (c *Compiled) Threshold() float64      { return c.src.Threshold }
func (c *Compiled) CodeConfidence() float64 { return c.src.CodeConfidence }
func (c *Compiled) Priority() []model.Intent {
	return c.src.Priority
}

// Patterns returns the ordered patterns of intent in.
func (c *Compiled) Patterns(in model.Intent) []CompiledPattern {
	return c.patterns[in]
}

// EntityRules returns every entity rule in evaluation order.
func (c *Compiled) EntityRules() []*CompiledRule {
	return c.entities
}

// Partial returns the partial-intent tables.
func (c *Compiled) Partial() PartialRules {
	return c.src.Partial
}

// IsIntentWord reports whether w names an intent on its own.
func (c *Compiled) IsIntentWord(w string) bool {
	_, ok := c.intentWords[strings.ToLower(w)]
	return ok
}

// Required returns the required slots of in, in order.
func (c *Compiled) Required(in model.Intent) []SlotSpec {
	if ir := c.src.Intents[in]; ir != nil {
		return ir.Required
	}
	return nil
}

// Optional returns the optional slots of in, in order.
func (c *Compiled) Optional(in model.Intent) []SlotSpec {
	if ir := c.src.Intents[in]; ir != nil {
		return ir.Optional
	}
	return nil
}

// SlotIndex returns the declaration position of s within in, or -1.
func (c *Compiled) SlotIndex(in model.Intent, s model.Slot) int {
	if i, ok := c.order[in][s]; ok {
		return i
	}
	return -1
}

// HasSlot reports whether s is a required or optional slot of in.
func (c *Compiled) HasSlot(in model.Intent, s model.Slot) bool {
	return c.SlotIndex(in, s) >= 0
}

// KeywordSlot maps a typed keyword phrase onto the slot it introduces.
func (c *Compiled) KeywordSlot(in model.Intent, phrase string) (model.Slot, bool) {
	s, ok := c.keywords[in][normalizePhrase(phrase)]
	return s, ok
}

// IsBoundary reports whether w ends a multi-word place name.
func (c *Compiled) IsBoundary(w string) bool {
	_, ok := c.boundary[strings.ToLower(w)]
	return ok
}

// PlaceRole returns the place slot a preceding word binds to.
func (c *Compiled) PlaceRole(w string) (model.Kind, bool) {
	k, ok := c.src.PlaceRoles[strings.ToLower(w)]
	return k, ok
}

// Placeholder returns the ghost text for s.
func (c *Compiled) Placeholder(s model.Slot) string {
	if p, ok := c.src.Placeholders[s]; ok {
		return p
	}
	return string(s)
}

// Vocabulary returns the fixed suggestion list for s under intent in.
// Per-intent lists take precedence over the shared ones.
func (c *Compiled) Vocabulary(in model.Intent, s model.Slot) []string {
	if ir := c.src.Intents[in]; ir != nil {
		if v, ok := ir.Vocab[s]; ok {
			return v
		}
	}
	if s == model.SlotAirline {
		return c.src.Airlines
	}
	return c.src.Vocabulary[s]
}
