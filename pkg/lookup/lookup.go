/*
Package lookup resolves place names, aliases and station or airport codes.

The Index keeps canonical names and aliases in a patricia trie keyed by their
lowercase form, so prefix search is a single subtree walk. Codes live in a
separate table because they only ever resolve exactly. Results are ordered by
population, then by the order places were declared, which keeps every search
deterministic for a fixed place list.
*/
package lookup

import (
	"math"
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// CodeKind tells what a code identifies.
type CodeKind string

const (
	CodeAirport CodeKind = "airport"
	CodeStation CodeKind = "station"
)

// Code is an airport or railway station code belonging to a place.
type Code struct {
	Code string   `yaml:"code" msgpack:"code"`
	Kind CodeKind `yaml:"kind" msgpack:"kind"`
}

// Place is one canonical location.
type Place struct {
	Name       string   `yaml:"name" msgpack:"name"`
	Population int      `yaml:"population" msgpack:"population"`
	Aliases    []string `yaml:"aliases,omitempty" msgpack:"aliases,omitempty"`
	Codes      []Code   `yaml:"codes,omitempty" msgpack:"codes,omitempty"`
}

// Match is a search hit.
type Match struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Resolution is the result of resolving a typed phrase.
type Resolution struct {
	Name  string
	Alias bool
}

type trieEntry struct {
	idx   int
	alias bool
}

type codeEntry struct {
	idx  int
	kind CodeKind
}

// Index is an in-memory place directory. It is immutable after NewIndex and
// safe for concurrent use. A nil *Index behaves as an empty directory.
type Index struct {
	places    []Place
	trie      *patricia.Trie
	codes     map[string]codeEntry
	maxPop    int
	corrector *corrector
}

// NewIndex builds an index over places. When two places share a name or
// alias the first one declared keeps it.
func NewIndex(places []Place) *Index {
	idx := &Index{
		places: append([]Place(nil), places...),
		trie:   patricia.NewTrie(),
		codes:  make(map[string]codeEntry),
	}
	freq := make(map[string]int)
	for i, p := range idx.places {
		if p.Population > idx.maxPop {
			idx.maxPop = p.Population
		}
		idx.insert(p.Name, trieEntry{idx: i}, freq, p.Population)
		for _, a := range p.Aliases {
			idx.insert(a, trieEntry{idx: i, alias: true}, freq, p.Population)
		}
		for _, c := range p.Codes {
			key := strings.ToLower(strings.TrimSpace(c.Code))
			if key == "" {
				continue
			}
			if _, taken := idx.codes[key]; !taken {
				idx.codes[key] = codeEntry{idx: i, kind: c.Kind}
			}
		}
	}
	idx.corrector = newCorrector(freq)
	return idx
}

// Default returns an index over the built-in place list.
func Default() *Index {
	return NewIndex(DefaultPlaces())
}

func (x *Index) insert(name string, e trieEntry, freq map[string]int, pop int) {
	key := normalize(name)
	if key == "" {
		return
	}
	if x.trie.Insert(patricia.Prefix(key), e) {
		freq[key] = pop
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Len returns the number of places.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.places)
}

// Places returns a copy of the place list.
func (x *Index) Places() []Place {
	if x == nil {
		return nil
	}
	return append([]Place(nil), x.places...)
}

func (x *Index) confidence(i int) float64 {
	if x.maxPop == 0 {
		return 0.55
	}
	c := 0.55 + 0.4*float64(x.places[i].Population)/float64(x.maxPop)
	return math.Round(c*100) / 100
}

// Search returns the places whose name or alias starts with prefix,
// skipping any canonical name listed in excluding. An empty prefix matches
// every place.
func (x *Index) Search(prefix string, excluding []string) []Match {
	if x == nil {
		return nil
	}
	skip := make(map[string]struct{}, len(excluding))
	for _, e := range excluding {
		skip[normalize(e)] = struct{}{}
	}

	seen := make(map[int]struct{})
	var hits []int
	key := normalize(prefix)
	collect := func(_ patricia.Prefix, item patricia.Item) error {
		e := item.(trieEntry)
		if _, dup := seen[e.idx]; dup {
			return nil
		}
		seen[e.idx] = struct{}{}
		if _, excluded := skip[normalize(x.places[e.idx].Name)]; !excluded {
			hits = append(hits, e.idx)
		}
		return nil
	}
	if key == "" {
		_ = x.trie.Visit(collect)
	} else {
		_ = x.trie.VisitSubtree(patricia.Prefix(key), collect)
	}

	sort.Slice(hits, func(i, j int) bool {
		pi, pj := x.places[hits[i]].Population, x.places[hits[j]].Population
		if pi != pj {
			return pi > pj
		}
		return hits[i] < hits[j]
	})
	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = Match{Name: x.places[h].Name, Confidence: x.confidence(h)}
	}
	return out
}

// ResolveAlias maps a code, alias or name onto its canonical name.
func (x *Index) ResolveAlias(code string) (string, bool) {
	r, ok := x.Resolve(code)
	return r.Name, ok
}

// Resolve matches phrase exactly, ignoring case, against names, aliases and
// codes.
func (x *Index) Resolve(phrase string) (Resolution, bool) {
	if x == nil {
		return Resolution{}, false
	}
	key := normalize(phrase)
	if key == "" {
		return Resolution{}, false
	}
	if item := x.trie.Get(patricia.Prefix(key)); item != nil {
		e := item.(trieEntry)
		return Resolution{Name: x.places[e.idx].Name, Alias: e.alias}, true
	}
	if c, ok := x.codes[key]; ok {
		return Resolution{Name: x.places[c.idx].Name, Alias: true}, true
	}
	return Resolution{}, false
}

// CodeKind reports what kind of code s is, if it is one.
func (x *Index) CodeKind(s string) (CodeKind, bool) {
	if x == nil {
		return "", false
	}
	c, ok := x.codes[normalize(s)]
	return c.kind, ok
}

// Correct returns the canonical place a misspelled name most likely meant.
func (x *Index) Correct(word string) (string, bool) {
	if x == nil {
		return "", false
	}
	fixed, ok := x.corrector.SuggestCorrection(word)
	if !ok {
		return "", false
	}
	r, found := x.Resolve(fixed)
	if !found {
		return "", false
	}
	return r.Name, true
}
