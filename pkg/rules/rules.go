/*
Package rules holds the declarative tables that drive the suggestion pipeline.

Intent patterns, partial-intent phrases, per-intent slot orders and keywords,
entity extraction rules, placeholder text and suggestion vocabularies are all
plain ordered data. Default returns the built-in tables; Load overlays a YAML
file on top of them. Compile validates the tables and builds the regular
expressions and lookup maps once, at startup.

A YAML override only needs the parts it changes. Map entries are merged by
key, lists and intent entries are replaced whole:

	threshold: 0.8
	placeholders:
	  to: "going where"
	airlines: [IndiGo, Air India, Vistara]
*/
package rules

import (
	"fmt"
	"os"

	"github.com/bastiangx/tripserve/pkg/model"
	"gopkg.in/yaml.v3"
)

// Pattern pairs a regular expression with the confidence of a match.
type Pattern struct {
	Expr       string  `yaml:"expr"`
	Confidence float64 `yaml:"confidence"`
}

// Eligibility names the predicate that decides whether an optional slot
// should be asked for.
type Eligibility string

const (
	EligibleAlways     Eligibility = "always"
	EligibleRoundTrip  Eligibility = "round_trip"
	EligibleLargeParty Eligibility = "large_party"
	// EligibleNever slots are only reached through a typed keyword.
	EligibleNever Eligibility = "never"
)

// SlotSpec declares one slot of an intent. FilledBy lists the entity kinds
// that count as filling it; empty means the slot's own kind.
type SlotSpec struct {
	Slot     model.Slot   `yaml:"slot"`
	FilledBy []model.Kind `yaml:"filled_by,omitempty"`
	Eligible Eligibility  `yaml:"eligible,omitempty"`
}

// Kinds returns the entity kinds that fill the slot.
func (s SlotSpec) Kinds() []model.Kind {
	if len(s.FilledBy) == 0 {
		return []model.Kind{s.Slot.Kind()}
	}
	return s.FilledBy
}

// IntentRules is everything specific to one intent.
type IntentRules struct {
	Patterns []Pattern               `yaml:"patterns"`
	Required []SlotSpec              `yaml:"required"`
	Optional []SlotSpec              `yaml:"optional"`
	Keywords map[model.Slot][]string `yaml:"keywords"`
	Vocab    map[model.Slot][]string `yaml:"vocabulary,omitempty"`
}

// PartialRules describe unfinished intent phrases such as "I want to book a".
type PartialRules struct {
	Endings     []string `yaml:"endings"`
	Starts      []string `yaml:"starts"`
	IntentWords []string `yaml:"intent_words"`
	Confidence  float64  `yaml:"confidence"`
}

// EntityRule extracts one entity kind. Value is the canonical value; when it
// holds "$1"-style references they are expanded from the match, and when it
// is empty the matched text itself is used. Transform "count" turns number
// words into digits. OnlyIfUnset rules are skipped when the kind is already
// present, so a bare number never counts twice.
type EntityRule struct {
	Kind        model.Kind     `yaml:"kind"`
	Expr        string         `yaml:"expr"`
	Value       string         `yaml:"value,omitempty"`
	Confidence  float64        `yaml:"confidence"`
	Intents     []model.Intent `yaml:"intents,omitempty"`
	Transform   string         `yaml:"transform,omitempty"`
	OnlyIfUnset bool           `yaml:"only_if_unset,omitempty"`
}

// Rules is the full rule set.
type Rules struct {
	Threshold      float64                       `yaml:"threshold"`
	CodeConfidence float64                       `yaml:"code_confidence"`
	Priority       []model.Intent                `yaml:"priority"`
	Intents        map[model.Intent]*IntentRules `yaml:"intents"`
	Partial        PartialRules                  `yaml:"partial"`
	Entities       []EntityRule                  `yaml:"entities"`
	Stopwords      []string                      `yaml:"stopwords"`
	PlaceRoles     map[string]model.Kind         `yaml:"place_roles"`
	Placeholders   map[model.Slot]string         `yaml:"placeholders"`
	Vocabulary     map[model.Slot][]string       `yaml:"vocabulary"`
	Airlines       []string                      `yaml:"airlines"`
}

// Load reads a YAML file over the default tables. An empty path returns the
// defaults unchanged.
func Load(path string) (*Rules, error) {
	r := Default()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return r, nil
}
