package model

// Entity is one value pulled out of the query. Start and End are byte offsets
// into the string the extractor was given.
type Entity struct {
	Kind       Kind    `json:"kind" msgpack:"k"`
	Value      string  `json:"value" msgpack:"v"`
	Start      int     `json:"start" msgpack:"s"`
	End        int     `json:"end" msgpack:"e"`
	Confidence float64 `json:"confidence" msgpack:"c"`
}

// Bag holds the entities of a single request, keyed by kind.
// All kinds are singular except KindCities; setting a singular kind again
// replaces the earlier value.
type Bag struct {
	entries map[Kind][]Entity
	order   []Kind
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{entries: make(map[Kind][]Entity)}
}

func multiValued(k Kind) bool {
	return k == KindCities
}

// Set stores e, replacing any earlier value of a singular kind.
func (b *Bag) Set(e Entity) {
	if _, seen := b.entries[e.Kind]; !seen {
		b.order = append(b.order, e.Kind)
	}
	if multiValued(e.Kind) {
		b.entries[e.Kind] = append(b.entries[e.Kind], e)
		return
	}
	b.entries[e.Kind] = []Entity{e}
}

// Has reports whether a value of kind k was extracted.
func (b *Bag) Has(k Kind) bool {
	if b == nil {
		return false
	}
	return len(b.entries[k]) > 0
}

// Get returns the most recent entity of kind k.
func (b *Bag) Get(k Kind) (Entity, bool) {
	if !b.Has(k) {
		return Entity{}, false
	}
	list := b.entries[k]
	return list[len(list)-1], true
}

// Value returns the value of kind k or "".
func (b *Bag) Value(k Kind) string {
	e, _ := b.Get(k)
	return e.Value
}

// All returns every entity of kind k in extraction order.
func (b *Bag) All(k Kind) []Entity {
	if b == nil {
		return nil
	}
	out := make([]Entity, len(b.entries[k]))
	copy(out, b.entries[k])
	return out
}

// Kinds returns the kinds present, in the order they were first set.
func (b *Bag) Kinds() []Kind {
	if b == nil {
		return nil
	}
	out := make([]Kind, len(b.order))
	copy(out, b.order)
	return out
}

// Len counts the kinds present.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Covers reports whether any entity span contains [start, end).
func (b *Bag) Covers(start, end int) bool {
	if b == nil {
		return false
	}
	for _, list := range b.entries {
		for _, e := range list {
			if start >= e.Start && end <= e.End {
				return true
			}
		}
	}
	return false
}

// Values flattens the bag to kind -> values, dropping spans.
func (b *Bag) Values() map[string][]string {
	if b.Len() == 0 {
		return nil
	}
	out := make(map[string][]string, len(b.order))
	for _, k := range b.order {
		for _, e := range b.entries[k] {
			out[string(k)] = append(out[string(k)], e.Value)
		}
	}
	return out
}
