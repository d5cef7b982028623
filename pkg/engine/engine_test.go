package engine

import (
	"context"
	"testing"

	"github.com/bastiangx/tripserve/pkg/cache"
	"github.com/bastiangx/tripserve/pkg/lookup"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/bastiangx/tripserve/pkg/rules"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(opts ...Option) *Engine {
	return New(rules.MustDefault(), lookup.Default(), cache.NewMemory(cache.DefaultTTL), opts...)
}

func newUncached() *Engine {
	return New(rules.MustDefault(), lookup.Default(), nil)
}

func handle(e *Engine, query string) model.Response {
	return e.Handle(context.Background(), model.Request{Query: query})
}

func texts(s []model.Suggestion) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v.Selectable {
			out = append(out, v.Text)
		}
	}
	return out
}

func TestScenarios(t *testing.T) {
	e := newUncached()

	testCases := []struct {
		query       string
		intent      model.Intent
		next        model.Slot
		placeholder string
		description string
	}{
		{"book a flight", model.IntentFlight, model.SlotFrom, "from where", "Flight asks for origin"},
		{"book a flight from Mumbai", model.IntentFlight, model.SlotTo, "to where", "Origin known"},
		{"flight from Mumbai to Delhi", model.IntentFlight, model.SlotDate, "on which date", "Route known"},
		{"I want to book a", model.IntentNone, model.SlotIntent, "what would you like to book", "Unfinished phrase"},
		{"Mumbai", model.IntentNone, model.SlotTo, "to where", "Place first"},
		{"Mumbai to Delhi", model.IntentNone, model.SlotIntent, "what would you like to book", "Both ends first"},
		{"to Goa", model.IntentNone, model.SlotFrom, "from where", "Destination first"},
		{"NDLS to BCT", model.IntentTrain, model.SlotDate, "on which date", "Station codes"},
		{"book a flight to", model.IntentFlight, model.SlotTo, "to where", "Trailing keyword beats required order"},
		{"flight from Mumbai to on", model.IntentFlight, model.SlotTo, "to where", "Earliest keyword slot"},
		{"hotel in Goa", model.IntentHotel, model.SlotCheckin, "checking in when", "Hotel"},
		{"train from Pune to Delhi tomorrow", model.IntentTrain, model.SlotClass, "in which class", "Train class"},
		{"plan a holiday to Bali", model.IntentHoliday, model.SlotDate, "on which date", "Holiday"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			resp := handle(e, tc.query)
			assert.Equal(t, model.SourceRuleBased, resp.Source)
			assert.Equal(t, tc.intent, resp.Intent)
			assert.Equal(t, tc.next, resp.NextSlot)
			require.NotEmpty(t, resp.Suggestions)
			assert.True(t, resp.Suggestions[0].IsPlaceholder)
			assert.Equal(t, tc.placeholder, resp.Suggestions[0].Text)
		})
	}
}

func TestScenarioEntities(t *testing.T) {
	e := newUncached()

	resp := handle(e, "book a flight from Mumbai")
	assert.Equal(t, []string{"Mumbai"}, resp.Entities["from"])

	resp = handle(e, "Mumbai")
	assert.Equal(t, []string{"Mumbai"}, resp.Entities["cities"])

	resp = handle(e, "NDLS to BCT")
	assert.Equal(t, []string{"Delhi"}, resp.Entities["from"])
	assert.Equal(t, []string{"Mumbai"}, resp.Entities["to"])

	resp = handle(e, "flight from Mumbai to Delhi tomorrow for 2 passengers")
	assert.Equal(t, []string{"2"}, resp.Entities["passengers"])
	assert.Equal(t, model.SlotClass, resp.NextSlot)
}

func TestUnfinishedPhraseSuggestsIntents(t *testing.T) {
	resp := handle(newUncached(), "I want to book a")
	assert.Equal(t, []string{"flight", "hotel", "train", "holiday"}, texts(resp.Suggestions))
}

func TestEmptyQuery(t *testing.T) {
	e := newEngine()
	for _, q := range []string{"", "   "} {
		resp := handle(e, q)
		assert.Empty(t, resp.Suggestions)
		assert.NotNil(t, resp.Suggestions)
		assert.Equal(t, model.IntentNone, resp.Intent)
		assert.Equal(t, model.SlotNone, resp.NextSlot)
		assert.Equal(t, model.SourceRuleBased, resp.Source)
	}
	assert.Equal(t, 0, e.CacheStats().Entries)
}

func TestFallbackRequired(t *testing.T) {
	e := newEngine()

	for i := 0; i < 2; i++ {
		resp := handle(e, "what is the weather")
		assert.Equal(t, model.SourceFallbackRequired, resp.Source)
		assert.Empty(t, resp.Suggestions)
		assert.Equal(t, model.IntentNone, resp.Intent)
	}
	assert.Equal(t, 0, e.CacheStats().Entries, "unmatched queries are not cached")

	_, ok := e.Match("what is the weather", nil)
	assert.False(t, ok)
}

func TestCacheHit(t *testing.T) {
	e := newEngine()

	first := handle(e, "book a flight from Mumbai")
	require.Equal(t, model.SourceRuleBased, first.Source)

	second := handle(e, "  BOOK a Flight   from mumbai ")
	assert.Equal(t, model.SourceCache, second.Source)
	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, first.Intent, second.Intent)
	assert.Equal(t, first.NextSlot, second.NextSlot)
	assert.Equal(t, first.Entities, second.Entities)

	stats := e.CacheStats()
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)

	e.ClearCache(context.Background())
	assert.Equal(t, model.SourceRuleBased, handle(e, "book a flight from Mumbai").Source)
}

// disabling the cache changes nothing but the source
func TestCacheTransparency(t *testing.T) {
	cached := newEngine()
	plain := newUncached()

	for _, q := range []string{
		"book a flight",
		"Book A Flight From Mumbai",
		"book a flight from mumbai",
		"hotel in Goa check-in tomorrow",
		"FLIGHT from Mumbai to De",
		"flight from mumbai to de",
		"I want to book a",
		"Mumbai",
	} {
		for i := 0; i < 2; i++ {
			a := handle(cached, q)
			b := handle(plain, q)
			assert.Equal(t, b.Suggestions, a.Suggestions, q)
			assert.Equal(t, b.Intent, a.Intent, q)
			assert.Equal(t, b.NextSlot, a.NextSlot, q)
			assert.Equal(t, b.Entities, a.Entities, q)
		}
	}
}

func TestDeterminism(t *testing.T) {
	e := newUncached()
	for _, q := range []string{"Mumbai", "flight from Mumbai to", "hotel in Go", "train from Pune to Delhi tomorrow"} {
		a := handle(e, q)
		b := handle(e, q)
		assert.Equal(t, a.Suggestions, b.Suggestions, q)
		assert.Equal(t, a.NextSlot, b.NextSlot, q)
	}
}

func TestNoSelfSuggestion(t *testing.T) {
	e := newUncached()

	for _, q := range []string{
		"flight from Delhi to",
		"flight from Delhi to D",
		"Delhi",
		"train from NDLS to",
	} {
		resp := handle(e, q)
		require.Equal(t, model.SlotTo, resp.NextSlot, q)
		assert.NotContains(t, texts(resp.Suggestions), "Delhi", q)
	}

	resp := handle(e, "to Mumbai")
	require.Equal(t, model.SlotFrom, resp.NextSlot)
	assert.NotContains(t, texts(resp.Suggestions), "Mumbai")
}

func TestSamePlaceBothEnds(t *testing.T) {
	resp := handle(newUncached(), "flight from Mumbai to Mumbai")
	require.Equal(t, model.SlotTo, resp.NextSlot)
	assert.Equal(t, []string{"Mumbai"}, resp.Entities["from"])
	assert.NotContains(t, resp.Entities, "to")
	assert.NotContains(t, texts(resp.Suggestions), "Mumbai")
}

func TestGuestSuggestions(t *testing.T) {
	resp := handle(newUncached(), "hotel in Goa tomorrow for 3 nights")
	require.Equal(t, model.SlotGuests, resp.NextSlot)
	assert.Contains(t, texts(resp.Suggestions), "family")
	assert.Contains(t, texts(resp.Suggestions), "2")
}

// Without a trailing keyword no required slot before the next one is empty.
func TestSlotOrder(t *testing.T) {
	e := newUncached()

	for _, q := range []string{
		"book a flight",
		"flight to Delhi",
		"flight from Mumbai tomorrow",
		"flight to Delhi for 2 passengers",
		"hotel for 2 guests",
		"hotel in Goa for 3 nights",
		"train on friday in 3AC",
		"holiday for a week",
		"round trip flight from Mumbai to Delhi tomorrow for 2 passengers",
	} {
		m, ok := e.Match(q, nil)
		require.True(t, ok, q)
		require.False(t, m.Intent.IsNone(), q)
		if len(e.resolver.Keywords(m.Intent, m.Entities, q)) > 0 {
			continue
		}
		for _, spec := range e.rules.Required(m.Intent) {
			if spec.Slot == m.NextSlot {
				break
			}
			filled := false
			for _, k := range spec.Kinds() {
				filled = filled || m.Entities.Has(k)
			}
			assert.True(t, filled, "%q: %s is empty before %s", q, spec.Slot, m.NextSlot)
		}
	}
}

func TestCursor(t *testing.T) {
	e := newEngine()

	pos := len([]rune("book a flight"))
	resp := e.Handle(context.Background(), model.Request{
		Query:          "book a flight from Mumbai",
		CursorPosition: &pos,
	})
	assert.Equal(t, model.SlotFrom, resp.NextSlot)

	out := 99
	resp = e.Handle(context.Background(), model.Request{
		Query:          "book a flight from Mumbai",
		CursorPosition: &out,
	})
	assert.Equal(t, model.SlotTo, resp.NextSlot, "out of range cursor means the whole query")
}

func TestContextIntent(t *testing.T) {
	e := newEngine()

	resp := e.Handle(context.Background(), model.Request{
		Query:   "Mumbai",
		Context: map[string]any{"intent": "Hotel"},
	})
	assert.Equal(t, model.IntentHotel, resp.Intent)
	assert.Equal(t, model.SlotCheckin, resp.NextSlot)
	assert.Equal(t, []string{"Mumbai"}, resp.Entities["city"])
	assert.Equal(t, 0.8, resp.Suggestions[0].Confidence)

	// the context is part of the cache key
	resp = handle(e, "Mumbai")
	assert.Equal(t, model.SourceRuleBased, resp.Source)
	assert.Equal(t, model.IntentNone, resp.Intent)

	// an explicit intent in the query wins over the context
	resp = e.Handle(context.Background(), model.Request{
		Query:   "flight from Mumbai",
		Context: map[string]any{"intent": "hotel"},
	})
	assert.Equal(t, model.IntentFlight, resp.Intent)

	// unknown names are ignored
	resp = e.Handle(context.Background(), model.Request{
		Query:   "what is the weather",
		Context: map[string]any{"intent": "cruise"},
	})
	assert.Equal(t, model.SourceFallbackRequired, resp.Source)
}

func TestWithoutPlaces(t *testing.T) {
	e := New(rules.MustDefault(), nil, nil)

	resp := handle(e, "flight from Mumbai")
	assert.Equal(t, model.IntentFlight, resp.Intent)
	assert.Equal(t, model.SlotFrom, resp.NextSlot, "no directory means no recognised place")
	assert.Len(t, resp.Suggestions, 1)

	assert.Equal(t, model.SourceFallbackRequired, handle(e, "Mumbai").Source)
}

func TestOptions(t *testing.T) {
	e := newEngine(WithLimit(3))
	assert.Equal(t, 3, e.Limit())
	assert.Equal(t, lookup.Default().Len(), e.Places().Len())

	resp := handle(e, "book a flight")
	assert.Len(t, resp.Suggestions, 4)
	assert.GreaterOrEqual(t, resp.LatencyMS, 0.0)

	assert.Equal(t, "disabled", newUncached().CacheStats().Backend)
	newUncached().ClearCache(context.Background())
}

func TestStageNames(t *testing.T) {
	assert.Equal(t, "slot_resolved", StageSlotResolved.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestTrace(t *testing.T) {
	assert.Nil(t, newTrace("q"), "no trace below debug level")

	prev := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(prev)

	tr := newTrace("q")
	require.NotNil(t, tr)
	tr.to(StageIntentDetected)
	assert.Equal(t, []Stage{StageNoIntent, StageIntentDetected}, tr.stages)
	tr.log()

	var none *trace
	none.to(StageNoMatch)
	none.log()
}
