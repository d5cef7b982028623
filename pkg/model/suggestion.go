package model

// Suggestion is one entry of the list shown while the user types.
// A placeholder is ghost text describing the next slot and can't be picked.
type Suggestion struct {
	Text          string  `json:"text" msgpack:"text"`
	EntityType    string  `json:"entity_type" msgpack:"entity_type"`
	Confidence    float64 `json:"confidence" msgpack:"confidence"`
	Selectable    bool    `json:"selectable" msgpack:"selectable"`
	IsPlaceholder bool    `json:"is_placeholder" msgpack:"is_placeholder"`
}

// MatchResult is what the rule pipeline concluded about one query.
// Fragment is the trailing text the user is still typing, if it did not
// resolve to anything.
type MatchResult struct {
	Intent     Intent
	Confidence float64
	Entities   *Bag
	NextSlot   Slot
	MatchText  string
	Fragment   string
}
